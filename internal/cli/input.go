package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

// test seams for terminal access
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// noTerminal is the terminalFd value for input that is not a terminal.
const noTerminal = -1

// terminalFd returns the descriptor of in when it is an interactive
// terminal, and noTerminal otherwise.
func terminalFd(in io.Reader) int {
	f, ok := in.(*os.File)
	if !ok {
		return noTerminal
	}
	fd := int(f.Fd())
	if !isTerminal(fd) {
		return noTerminal
	}
	return fd
}

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The line is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadLine is GetSimpleText bounded by ctx.
func ReadLine(ctx context.Context, reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	return await(ctx, func() (string, error) {
		return GetSimpleText(reader, prompt, w)
	})
}

// GetPassword prints prompt and reads a secret. When fd is a terminal the
// input is read from it without echo; with noTerminal one line is taken from
// reader, so the shell can be scripted. It returns ctx.Err() if ctx ends first.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(ctx context.Context, reader *bufio.Reader, fd int, prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}

	if fd != noTerminal {
		pw, err := await(ctx, func() ([]byte, error) { return readPassword(fd) })
		fmt.Fprintln(w)
		return pw, err
	}

	return await(ctx, func() ([]byte, error) {
		line, err := reader.ReadBytes('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			common.WipeByteArray(line)
			return nil, err
		}
		secret := bytes.TrimRight(line, "\r\n")
		out := make([]byte, len(secret))
		copy(out, secret)
		common.WipeByteArray(line)
		return out, nil
	})
}

// await runs read in a goroutine and returns its result, or ctx.Err() if ctx
// is done first. An abandoned read keeps its goroutine until input arrives;
// callers end the session in that case.
func await[T any](ctx context.Context, read func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := read()
		ch <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}

// ParseAmount parses a user-typed amount such as "500", "20.50" or "₹20".
// Sign checks are left to the ledger; anything that is not a number yields
// common.ErrParse.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", common.ErrParse, s)
	}
	return d, nil
}
