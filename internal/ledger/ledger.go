// Package ledger holds the account balance and its append-only transaction
// log. Every mutator checks its precondition first and only then changes
// state, so a failed operation leaves the balance and the log exactly as
// they were.
//
// A Ledger is not safe for concurrent use and performs no authentication;
// it is driven by services.SessionGate, which authenticates, works on a
// Clone and swaps it in only after the new snapshot has been persisted.
package ledger

import (
	"time"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/dmitrijs2005/pinledger/internal/credential"
	"github.com/dmitrijs2005/pinledger/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger is the in-memory balance plus transaction log.
type Ledger struct {
	balance      decimal.Decimal
	transactions []models.Transaction

	now   func() time.Time
	newID func() uuid.UUID
}

// Option customises a Ledger.
type Option func(*Ledger)

// WithClock overrides the clock used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides how record ids are generated.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(l *Ledger) { l.newID = gen }
}

// New restores a Ledger from a snapshot. The snapshot's credential hash is
// ignored; it belongs to the credential store.
func New(account models.Account, opts ...Option) *Ledger {
	l := &Ledger{
		balance:      account.Balance,
		transactions: account.Clone().Transactions,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.New,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Balance returns the current balance without recording anything.
func (l *Ledger) Balance() decimal.Decimal {
	return l.balance
}

// Transactions returns a copy of the log in insertion order.
func (l *Ledger) Transactions() []models.Transaction {
	out := make([]models.Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// CheckBalance returns the balance. Reading is audited, so it appends a
// check_balance record.
func (l *Ledger) CheckBalance() decimal.Decimal {
	l.record(models.KindCheckBalance, decimal.NullDecimal{})
	return l.balance
}

// Deposit adds amount, which must be positive. There is no upper bound.
func (l *Ledger) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.ErrInvalidAmount
	}
	l.balance = l.balance.Add(amount)
	l.record(models.KindDeposit, decimal.NewNullDecimal(amount))
	return nil
}

// Withdraw removes amount. It succeeds iff 0 < amount <= balance; this is
// the only place the balance can decrease, so it keeps the balance non-negative.
func (l *Ledger) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.ErrInvalidAmount
	}
	if amount.GreaterThan(l.balance) {
		return common.ErrInsufficientFunds
	}
	l.balance = l.balance.Sub(amount)
	l.record(models.KindWithdraw, decimal.NewNullDecimal(amount))
	return nil
}

// ChangeCredential sets a new PIN on store and records the change.
// The record carries no amount and no secret material.
func (l *Ledger) ChangeCredential(store *credential.Store, newSecret, confirmSecret []byte) error {
	if err := store.Set(newSecret, confirmSecret); err != nil {
		return err
	}
	l.record(models.KindChangeCredential, decimal.NullDecimal{})
	return nil
}

// Clone returns an independent copy that shares no mutable state.
func (l *Ledger) Clone() *Ledger {
	cp := *l
	cp.transactions = l.Transactions()
	return &cp
}

// Snapshot assembles the persistable account from the ledger and the
// current credential hash.
func (l *Ledger) Snapshot(credentialHash string) models.Account {
	return models.Account{
		Balance:        l.balance,
		CredentialHash: credentialHash,
		Transactions:   l.Transactions(),
	}
}

func (l *Ledger) record(kind models.TransactionKind, amount decimal.NullDecimal) {
	l.transactions = append(l.transactions, models.Transaction{
		ID:     l.newID(),
		Kind:   kind,
		Amount: amount,
		At:     l.now(),
	})
}
