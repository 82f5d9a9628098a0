package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

func printError(w io.Writer, msg string) {
	errorColor.Fprintln(w, msg)
}

func printSuccess(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, format+"\n", args...)
}

// userMessage maps an operation error to what the customer is told.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrAuth):
		return "Incorrect PIN. Access denied."
	case errors.Is(err, common.ErrMismatch):
		return "PINs do not match. Please try again."
	case errors.Is(err, common.ErrInsufficientFunds):
		return "Insufficient funds."
	case errors.Is(err, common.ErrInvalidAmount):
		return "Invalid amount. Enter a positive number."
	case errors.Is(err, common.ErrParse):
		return "Invalid input. Enter a number."
	case errors.Is(err, common.ErrEmptySecret):
		return "PIN must not be empty."
	case errors.Is(err, common.ErrSecretTooLong):
		return "PIN is too long."
	case errors.Is(err, common.ErrIO):
		return "Storage error: not saved, state unchanged."
	case errors.Is(err, common.ErrNotInitialized):
		return "No PIN has been set yet."
	case errors.Is(err, context.DeadlineExceeded):
		return "Session timed out."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// recoverable reports whether the menu loop may continue after err.
func recoverable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.EOF):
		return false
	default:
		return true
	}
}
