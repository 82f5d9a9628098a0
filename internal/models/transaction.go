package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind classifies a transaction record.
type TransactionKind string

const (
	KindCheckBalance     TransactionKind = "check_balance"
	KindDeposit          TransactionKind = "deposit"
	KindWithdraw         TransactionKind = "withdraw"
	KindChangeCredential TransactionKind = "change_credential"
)

// Valid reports whether k is one of the known kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindCheckBalance, KindDeposit, KindWithdraw, KindChangeCredential:
		return true
	}
	return false
}

// HasAmount reports whether records of this kind carry an amount.
func (k TransactionKind) HasAmount() bool {
	return k == KindDeposit || k == KindWithdraw
}

// Transaction is one audited, successfully authorised operation.
// Records are append-only and never modified after creation.
type Transaction struct {
	ID     uuid.UUID           `json:"id"`
	Kind   TransactionKind     `json:"kind"`
	Amount decimal.NullDecimal `json:"amount"`
	At     time.Time           `json:"at"`
}

// Validate checks kind and amount consistency.
func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", t.Kind)
	}
	if t.Kind.HasAmount() {
		if !t.Amount.Valid || !t.Amount.Decimal.IsPositive() {
			return fmt.Errorf("%s requires a positive amount", t.Kind)
		}
		return nil
	}
	if t.Amount.Valid {
		return fmt.Errorf("%s must not carry an amount", t.Kind)
	}
	return nil
}

// Equal compares records using decimal equality and time.Equal.
func (t Transaction) Equal(o Transaction) bool {
	if t.ID != o.ID || t.Kind != o.Kind || !t.At.Equal(o.At) || t.Amount.Valid != o.Amount.Valid {
		return false
	}
	return !t.Amount.Valid || t.Amount.Decimal.Equal(o.Amount.Decimal)
}

// String renders the record the way the history screen shows it.
func (t Transaction) String() string {
	switch t.Kind {
	case KindCheckBalance:
		return "Checked balance"
	case KindDeposit:
		return "Deposited: " + t.Amount.Decimal.StringFixed(2)
	case KindWithdraw:
		return "Withdrew: " + t.Amount.Decimal.StringFixed(2)
	case KindChangeCredential:
		return "Changed PIN"
	default:
		return string(t.Kind)
	}
}

// UnmarshalJSON accepts the structured form and, for data files written by
// the first version of the ATM, the descriptive string form.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseLegacyTransaction(s)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}

	type plain Transaction
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Transaction(p)
	return nil
}

// ParseLegacyTransaction converts a descriptive history line such as
// "Deposited: ₹500.0" into a record. Legacy lines carry no id or time, so a
// new id is assigned and At is left zero.
func ParseLegacyTransaction(s string) (Transaction, error) {
	tx := Transaction{ID: uuid.New()}

	switch {
	case s == "Checked balance":
		tx.Kind = KindCheckBalance
	case s == "Changed PIN":
		tx.Kind = KindChangeCredential
	case strings.HasPrefix(s, "Deposited:"):
		tx.Kind = KindDeposit
	case strings.HasPrefix(s, "Withdrew:"):
		tx.Kind = KindWithdraw
	default:
		return Transaction{}, fmt.Errorf("unrecognised history entry %q", s)
	}

	if tx.Kind.HasAmount() {
		_, raw, _ := strings.Cut(s, ":")
		// drop the currency symbol and spacing in front of the number
		raw = strings.TrimLeftFunc(raw, func(r rune) bool {
			return !unicode.IsDigit(r) && r != '.' && r != '-' && r != '+'
		})
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return Transaction{}, fmt.Errorf("history entry %q: %w", s, err)
		}
		tx.Amount = decimal.NewNullDecimal(amount)
	}

	return tx, tx.Validate()
}
