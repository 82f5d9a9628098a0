package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/pinledger/internal/cryptox"
	"github.com/dmitrijs2005/pinledger/internal/logging"
	"github.com/dmitrijs2005/pinledger/internal/models"
	"github.com/dmitrijs2005/pinledger/internal/repositories/snapshot"
	"github.com/dmitrijs2005/pinledger/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestGate(t *testing.T, repo snapshot.Repository) services.SessionGate {
	t.Helper()
	g, err := services.NewSessionGate(context.Background(), repo, cryptox.NewBcryptHasher(bcrypt.MinCost),
		models.DefaultOpeningBalance, logging.Discard())
	require.NoError(t, err)
	return g
}

func script(lines ...string) io.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestApp_FullSession(t *testing.T) {
	repo := snapshot.NewMemoryRepository()
	gate := newTestGate(t, repo)
	var out bytes.Buffer

	in := script(
		"1234", "1235", // mismatched setup
		"1234", "1234",
		"1", "1234",
		"2", "1234", "500",
		"3", "1234", "2000",
		"3", "9999", "10",
		"2", "1234", "abc",
		"2", "1234", "-5",
		"5", "1234",
		"4", "1234", "1111", "2222", "1111", "1111",
		"1", "1111",
		"6",
	)

	app := NewApp(gate, in, &out, 0, logging.Discard())
	require.NoError(t, app.Run(context.Background()))

	s := out.String()
	for _, want := range []string{
		"No PIN is set for this account yet.",
		"PINs do not match. Please try again.",
		"PIN set successfully!",
		"Your current balance is: ₹1000.00",
		"₹500.00 deposited successfully! New balance: ₹1500.00",
		"Insufficient funds.",
		"Incorrect PIN. Access denied.",
		"Invalid input. Enter a number.",
		"Invalid amount. Enter a positive number.",
		"Transaction History:",
		"Checked balance",
		"Deposited: 500.00",
		"PIN changed successfully!",
		"Your current balance is: ₹1500.00",
		"Thank you for using our ATM!",
	} {
		assert.Contains(t, s, want)
	}
	assert.NotContains(t, s, "1111\n")

	stored, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(1500)))
	var kinds []models.TransactionKind
	for _, tx := range stored.Transactions {
		kinds = append(kinds, tx.Kind)
	}
	assert.Equal(t, []models.TransactionKind{
		models.KindCheckBalance,
		models.KindDeposit,
		models.KindChangeCredential,
		models.KindCheckBalance,
	}, kinds)
}

func TestApp_EmptyHistory(t *testing.T) {
	gate := newTestGate(t, snapshot.NewMemoryRepository())
	var out bytes.Buffer

	app := NewApp(gate, script("1234", "1234", "history", "1234", "quit"), &out, 0, logging.Discard())
	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "No transactions yet.")
}

func TestApp_ChangePINWrongCurrentPIN(t *testing.T) {
	gate := newTestGate(t, snapshot.NewMemoryRepository())
	var out bytes.Buffer

	app := NewApp(gate, script("1234", "1234", "4", "0000", "1", "1234", "6"), &out, 0, logging.Discard())
	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "Incorrect PIN. Access denied.")
	assert.Contains(t, out.String(), "Your current balance is: ₹1000.00")
}

func TestApp_ChangePINDoesNotServeHistory(t *testing.T) {
	var logs bytes.Buffer
	repo := snapshot.NewMemoryRepository()
	gate, err := services.NewSessionGate(context.Background(), repo, cryptox.NewBcryptHasher(bcrypt.MinCost),
		models.DefaultOpeningBalance, logging.New("debug", &logs))
	require.NoError(t, err)

	var out bytes.Buffer
	app := NewApp(gate, script("1234", "1234", "4", "1234", "5678", "5678", "6"), &out, 0, logging.Discard())
	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "PIN changed successfully!")
	assert.Contains(t, logs.String(), "op=authenticate")
	assert.NotContains(t, logs.String(), "op=history")
}

func TestApp_PersistFailureIsReported(t *testing.T) {
	repo := snapshot.NewMemoryRepository()
	gate := newTestGate(t, repo)
	require.NoError(t, gate.SetInitialCredential(context.Background(), []byte("1234"), []byte("1234")))
	repo.FailSaves(errors.New("disk full"))

	var out bytes.Buffer
	app := NewApp(gate, script("2", "1234", "5", "6"), &out, 0, logging.Discard())
	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "Storage error: not saved, state unchanged.")
}

func TestApp_EOFEndsQuietly(t *testing.T) {
	gate := newTestGate(t, snapshot.NewMemoryRepository())
	app := NewApp(gate, strings.NewReader(""), io.Discard, 0, logging.Discard())
	require.NoError(t, app.Run(context.Background()))
}

func TestApp_InputTimeoutEndsSession(t *testing.T) {
	repo := snapshot.NewMemoryRepository()
	gate := newTestGate(t, repo)
	require.NoError(t, gate.SetInitialCredential(context.Background(), []byte("1234"), []byte("1234")))

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	go func() { _, _ = pw.Write([]byte("1\n")) }()

	var out syncBuffer
	app := NewApp(gate, pr, &out, 30*time.Millisecond, logging.Discard())
	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "Session timed out.")
	assert.Equal(t, 1, repo.Saves(), "only the initial PIN was written")
}

func TestApp_CancelledContext(t *testing.T) {
	gate := newTestGate(t, snapshot.NewMemoryRepository())
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app := NewApp(gate, pr, io.Discard, 0, logging.Discard())
	require.ErrorIs(t, app.Run(ctx), context.Canceled)
}
