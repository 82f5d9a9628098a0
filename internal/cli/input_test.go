package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("  hello world \n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name? ", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name? ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	got, err := GetSimpleText(in, "", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(in, "", io.Discard)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadLine_CanceledContext(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ReadLine(ctx, bufio.NewReader(pr), "> ", io.Discard)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetPassword_FromLineWhenNotATerminal(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("1234\r\nrest\n"))
	var out bytes.Buffer

	pw, err := GetPassword(context.Background(), in, noTerminal, "Enter your PIN: ", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("1234"), pw)
	assert.Equal(t, "Enter your PIN: ", out.String())

	next, err := GetSimpleText(in, "", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "rest", next)
}

func TestGetPassword_EOF(t *testing.T) {
	_, err := GetPassword(context.Background(), bufio.NewReader(strings.NewReader("")), noTerminal, "", io.Discard)
	require.ErrorIs(t, err, io.EOF)
}

func withTerminal(t *testing.T, read func(int) ([]byte, error)) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = read
}

func TestTerminalFd(t *testing.T) {
	assert.Equal(t, noTerminal, terminalFd(strings.NewReader("x")))

	f, err := os.CreateTemp(t.TempDir(), "in")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, noTerminal, terminalFd(f))

	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })
	isTerminal = func(int) bool { return true }
	assert.Equal(t, int(f.Fd()), terminalFd(f))
}

func TestGetPassword_Terminal(t *testing.T) {
	withTerminal(t, func(int) ([]byte, error) { return []byte("s3cret"), nil })

	var out bytes.Buffer
	pw, err := GetPassword(context.Background(), bufio.NewReader(strings.NewReader("")), 0, "PIN: ", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Equal(t, "PIN: \n", out.String())
}

func TestGetPassword_TerminalError(t *testing.T) {
	withTerminal(t, func(int) ([]byte, error) { return nil, errors.New("tty gone") })

	_, err := GetPassword(context.Background(), bufio.NewReader(strings.NewReader("")), 0, "PIN: ", io.Discard)
	require.EqualError(t, err, "tty gone")
}

func TestGetPassword_TimeoutWhileBlocked(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	withTerminal(t, func(int) ([]byte, error) {
		<-release
		return nil, io.EOF
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := GetPassword(ctx, bufio.NewReader(strings.NewReader("")), 0, "PIN: ", io.Discard)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"500", "500", false},
		{" 20.50 ", "20.5", false},
		{"₹20", "20", false},
		{"-5", "-5", false},
		{"0", "0", false},
		{"abc", "", true},
		{"", "", true},
		{"1,000", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrParse)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}
