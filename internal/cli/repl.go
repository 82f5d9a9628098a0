package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for menu output.
var printlnFn = fmt.Fprintln

// execIface is the command surface the menu loop dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	CheckBalance(ctx context.Context) error
	Deposit(ctx context.Context) error
	Withdraw(ctx context.Context) error
	ChangePIN(ctx context.Context) error
	History(ctx context.Context) error
}

const menu = `
ATM Machine:
1. Check Balance
2. Deposit Cash
3. Withdraw Cash
4. Change PIN
5. Transaction History
6. Exit`

// runREPL shows the menu, reads a choice and dispatches it. Choices are
// the menu numbers or their word aliases:
//
//	1 | balance     check balance
//	2 | deposit     deposit cash
//	3 | withdraw    withdraw cash
//	4 | changepin   change PIN
//	5 | history     transaction history
//	6 | exit | quit leave
//	help            show the menu again
//
// Recoverable command errors are reported and the loop continues. It returns
// nil on exit, io.EOF when input ends, and the context error on cancellation
// or input timeout.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, w io.Writer) error {
	printlnFn(w, menu)
	for {
		line, err := ReadLine(ctx, reader, "Enter your choice: ", w)
		if err != nil {
			return err
		}
		fields := strings.Fields(strings.ToLower(line))
		if len(fields) == 0 {
			continue
		}

		var cmdErr error
		switch fields[0] {
		case "1", "balance":
			cmdErr = a.CheckBalance(ctx)
		case "2", "deposit":
			cmdErr = a.Deposit(ctx)
		case "3", "withdraw":
			cmdErr = a.Withdraw(ctx)
		case "4", "changepin":
			cmdErr = a.ChangePIN(ctx)
		case "5", "history":
			cmdErr = a.History(ctx)
		case "6", "exit", "quit":
			printlnFn(w, "Thank you for using our ATM!")
			return nil
		case "help":
			printlnFn(w, menu)
			continue
		default:
			printError(w, "Invalid choice. Enter a number between 1 and 6.")
			continue
		}

		if cmdErr != nil {
			if !recoverable(cmdErr) {
				return cmdErr
			}
			printError(w, userMessage(cmdErr))
		}
	}
}
