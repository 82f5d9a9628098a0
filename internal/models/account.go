// Package models defines the account snapshot and its transaction records.
package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultOpeningBalance is the balance of a freshly created account.
var DefaultOpeningBalance = decimal.NewFromInt(1000)

// Account is the complete state of the single ledger account at one point
// in time. Storage backends persist and restore it whole.
type Account struct {
	Balance        decimal.Decimal
	CredentialHash string
	Transactions   []Transaction
}

// NewAccount returns an Uninitialized account holding opening.
func NewAccount(opening decimal.Decimal) Account {
	return Account{Balance: opening}
}

// Initialized reports whether a credential has been set.
func (a Account) Initialized() bool {
	return a.CredentialHash != ""
}

// Clone returns a deep copy; the transaction slice is not shared.
func (a Account) Clone() Account {
	cp := a
	if a.Transactions != nil {
		cp.Transactions = make([]Transaction, len(a.Transactions))
		copy(cp.Transactions, a.Transactions)
	}
	return cp
}

// Equal compares two snapshots field by field, using decimal equality for amounts.
func (a Account) Equal(b Account) bool {
	if !a.Balance.Equal(b.Balance) || a.CredentialHash != b.CredentialHash {
		return false
	}
	if len(a.Transactions) != len(b.Transactions) {
		return false
	}
	for i := range a.Transactions {
		if !a.Transactions[i].Equal(b.Transactions[i]) {
			return false
		}
	}
	return true
}

// ErrInvalidAccount is wrapped by every Validate failure.
var ErrInvalidAccount = errors.New("invalid account snapshot")

// Validate checks the invariants a loaded snapshot must satisfy.
func (a Account) Validate() error {
	if a.Balance.IsNegative() {
		return fmt.Errorf("%w: negative balance %s", ErrInvalidAccount, a.Balance)
	}
	for i, tx := range a.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("%w: transaction %d: %v", ErrInvalidAccount, i, err)
		}
	}
	return nil
}
