package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pinledger/internal/common"
)

// SetupPIN asks for a new PIN and its confirmation until they match and
// the gate has stored it.
func (a *App) SetupPIN(ctx context.Context) error {
	fmt.Fprintln(a.out, "No PIN is set for this account yet.")
	for {
		err := a.withNewPIN(ctx, "Set your new PIN: ", "Confirm your new PIN: ", func(ctx context.Context, newPIN, confirm []byte) error {
			return a.gate.SetInitialCredential(ctx, newPIN, confirm)
		})
		if err == nil {
			printSuccess(a.out, "PIN set successfully!")
			return nil
		}
		if !retryablePINError(err) {
			return err
		}
		printError(a.out, userMessage(err))
	}
}

// readPIN prompts for the current PIN.
func (a *App) readPIN(ctx context.Context) ([]byte, error) {
	return GetPassword(ctx, a.reader, a.termFd, "Enter your PIN: ", a.out)
}

// withNewPIN reads a new PIN and its confirmation, passes both to fn and
// wipes them afterwards.
func (a *App) withNewPIN(ctx context.Context, prompt, confirmPrompt string, fn func(ctx context.Context, newPIN, confirm []byte) error) error {
	opCtx, cancel := a.opContext(ctx)
	defer cancel()

	newPIN, err := GetPassword(opCtx, a.reader, a.termFd, prompt, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPIN)

	confirm, err := GetPassword(opCtx, a.reader, a.termFd, confirmPrompt, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	return fn(ctx, newPIN, confirm)
}

func retryablePINError(err error) bool {
	return errors.Is(err, common.ErrMismatch) ||
		errors.Is(err, common.ErrEmptySecret) ||
		errors.Is(err, common.ErrSecretTooLong)
}

func (a *App) CheckBalance(ctx context.Context) error {
	opCtx, cancel := a.opContext(ctx)
	defer cancel()

	pin, err := a.readPIN(opCtx)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	balance, err := a.gate.CheckBalance(ctx, pin)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Your current balance is: ₹%s\n", balance.StringFixed(2))
	return nil
}

func (a *App) Deposit(ctx context.Context) error {
	opCtx, cancel := a.opContext(ctx)
	defer cancel()

	pin, err := a.readPIN(opCtx)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	line, err := ReadLine(opCtx, a.reader, "Enter amount to deposit: ", a.out)
	if err != nil {
		return err
	}
	amount, err := ParseAmount(line)
	if err != nil {
		return err
	}

	balance, err := a.gate.Deposit(ctx, pin, amount)
	if err != nil {
		return err
	}
	printSuccess(a.out, "₹%s deposited successfully! New balance: ₹%s", amount.StringFixed(2), balance.StringFixed(2))
	return nil
}

func (a *App) Withdraw(ctx context.Context) error {
	opCtx, cancel := a.opContext(ctx)
	defer cancel()

	pin, err := a.readPIN(opCtx)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	line, err := ReadLine(opCtx, a.reader, "Enter amount to withdraw: ", a.out)
	if err != nil {
		return err
	}
	amount, err := ParseAmount(line)
	if err != nil {
		return err
	}

	balance, err := a.gate.Withdraw(ctx, pin, amount)
	if err != nil {
		return err
	}
	printSuccess(a.out, "₹%s withdrawn successfully! New balance: ₹%s", amount.StringFixed(2), balance.StringFixed(2))
	return nil
}

// ChangePIN verifies the current PIN once, then asks for the new one until
// the confirmation matches.
func (a *App) ChangePIN(ctx context.Context) error {
	opCtx, cancel := a.opContext(ctx)
	pin, err := a.readPIN(opCtx)
	cancel()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	if err := a.gate.Authenticate(ctx, pin); err != nil {
		return err
	}

	for {
		err := a.withNewPIN(ctx, "Enter new PIN: ", "Confirm new PIN: ", func(ctx context.Context, newPIN, confirm []byte) error {
			return a.gate.ChangeCredential(ctx, pin, newPIN, confirm)
		})
		if err == nil {
			printSuccess(a.out, "PIN changed successfully!")
			return nil
		}
		if !retryablePINError(err) {
			return err
		}
		printError(a.out, userMessage(err))
	}
}

func (a *App) History(ctx context.Context) error {
	opCtx, cancel := a.opContext(ctx)
	defer cancel()

	pin, err := a.readPIN(opCtx)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	txs, err := a.gate.History(ctx, pin)
	if err != nil {
		return err
	}

	headerColor.Fprintln(a.out, "Transaction History:")
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions yet.")
		return nil
	}
	for _, tx := range txs {
		if tx.At.IsZero() {
			fmt.Fprintf(a.out, " - %s\n", tx)
			continue
		}
		fmt.Fprintf(a.out, " - %s  %s\n", tx.At.Local().Format("2006-01-02 15:04:05"), tx)
	}
	return nil
}
