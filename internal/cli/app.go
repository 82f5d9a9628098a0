package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/pinledger/internal/logging"
	"github.com/dmitrijs2005/pinledger/internal/services"
)

type App struct {
	gate         services.SessionGate
	reader       *bufio.Reader
	termFd       int
	out          io.Writer
	inputTimeout time.Duration
	log          logging.Logger
}

// NewApp wires the shell to gate. inputTimeout bounds each prompt inside an
// operation; zero disables it.
func NewApp(gate services.SessionGate, in io.Reader, out io.Writer, inputTimeout time.Duration, log logging.Logger) *App {
	return &App{
		gate:         gate,
		reader:       bufio.NewReader(in),
		termFd:       terminalFd(in),
		out:          out,
		inputTimeout: inputTimeout,
		log:          log.With("component", "cli"),
	}
}

// Run performs first-time PIN setup if needed and then serves the menu
// until the user exits, input ends or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	headerColor.Fprintln(a.out, "Welcome to the ATM")

	if !a.gate.IsInitialized() {
		if err := a.SetupPIN(ctx); err != nil {
			return a.finish(ctx, err)
		}
	}

	return a.finish(ctx, runREPL(ctx, a, a.reader, a.out))
}

// finish turns the error that ended the session into Run's result: normal
// endings (EOF, timeout) are not failures.
func (a *App) finish(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		fmt.Fprintln(a.out)
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		printError(a.out, userMessage(err))
		a.log.Info(ctx, "session ended by input timeout")
		return nil
	default:
		return err
	}
}

// opContext bounds one menu operation's prompts by the input timeout.
func (a *App) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.inputTimeout > 0 {
		return context.WithTimeout(ctx, a.inputTimeout)
	}
	return context.WithCancel(ctx)
}
