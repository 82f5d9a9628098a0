// Package services contains the session gate: the only entry point through
// which the shell reads or mutates the account.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/dmitrijs2005/pinledger/internal/credential"
	"github.com/dmitrijs2005/pinledger/internal/cryptox"
	"github.com/dmitrijs2005/pinledger/internal/ledger"
	"github.com/dmitrijs2005/pinledger/internal/logging"
	"github.com/dmitrijs2005/pinledger/internal/models"
	"github.com/dmitrijs2005/pinledger/internal/repositories/snapshot"
	"github.com/shopspring/decimal"
)

// SessionGate authenticates every request with the PIN before touching the
// ledger, and persists the resulting snapshot before acknowledging it.
//
// Contract:
//   - A wrong PIN fails with common.ErrAuth; nothing is recorded or written.
//   - An operation whose precondition fails returns that error; nothing is
//     recorded or written.
//   - A failed write returns an error wrapping common.ErrIO and the
//     in-memory state stays as it was before the call.
//   - Before SetInitialCredential every other operation fails with
//     common.ErrNotInitialized.
//
// Methods are safe for concurrent use. The caller keeps ownership of every
// secret slice and should wipe it afterwards.
type SessionGate interface {
	IsInitialized() bool
	Authenticate(ctx context.Context, secret []byte) error
	SetInitialCredential(ctx context.Context, newSecret, confirmSecret []byte) error
	CheckBalance(ctx context.Context, secret []byte) (decimal.Decimal, error)
	Deposit(ctx context.Context, secret []byte, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, secret []byte, amount decimal.Decimal) (decimal.Decimal, error)
	ChangeCredential(ctx context.Context, secret, newSecret, confirmSecret []byte) error
	History(ctx context.Context, secret []byte) ([]models.Transaction, error)
}

// sessionGate holds the live ledger and credential. Mutations run on clones
// and replace the live pair only after the repository accepted the result.
type sessionGate struct {
	mu     sync.Mutex
	repo   snapshot.Repository
	ledger *ledger.Ledger
	creds  *credential.Store
	log    logging.Logger
}

// NewSessionGate restores the account from repo, or starts an
// Uninitialized one holding opening when repo is empty. A corrupt store is
// returned as an error wrapping common.ErrCorruptState.
func NewSessionGate(
	ctx context.Context,
	repo snapshot.Repository,
	hasher cryptox.Hasher,
	opening decimal.Decimal,
	log logging.Logger,
	opts ...ledger.Option,
) (SessionGate, error) {
	account, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	log = log.With("component", "session_gate")
	if account == nil {
		fresh := models.NewAccount(opening)
		account = &fresh
		log.Info(ctx, "no stored account, starting fresh", "opening_balance", opening.String())
	} else {
		log.Info(ctx, "account restored",
			"initialized", account.Initialized(),
			"transactions", len(account.Transactions))
	}

	return &sessionGate{
		repo:   repo,
		ledger: ledger.New(*account, opts...),
		creds:  credential.NewStore(hasher, account.CredentialHash),
		log:    log,
	}, nil
}

func (g *sessionGate) IsInitialized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.creds.IsSet()
}

func (g *sessionGate) SetInitialCredential(ctx context.Context, newSecret, confirmSecret []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	const op = "set_initial_credential"
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.creds.IsSet() {
		g.log.Warn(ctx, "rejected", "op", op, "reason", "already initialized")
		return common.ErrAlreadyInitialized
	}

	return g.commit(ctx, op, func(_ *ledger.Ledger, c *credential.Store) error {
		return c.Set(newSecret, confirmSecret)
	})
}

func (g *sessionGate) CheckBalance(ctx context.Context, secret []byte) (decimal.Decimal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	const op = "check_balance"
	if err := g.authorize(ctx, op, secret); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := g.commit(ctx, op, func(l *ledger.Ledger, _ *credential.Store) error {
		balance = l.CheckBalance()
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (g *sessionGate) Deposit(ctx context.Context, secret []byte, amount decimal.Decimal) (decimal.Decimal, error) {
	return g.move(ctx, "deposit", secret, func(l *ledger.Ledger) error { return l.Deposit(amount) })
}

func (g *sessionGate) Withdraw(ctx context.Context, secret []byte, amount decimal.Decimal) (decimal.Decimal, error) {
	return g.move(ctx, "withdraw", secret, func(l *ledger.Ledger) error { return l.Withdraw(amount) })
}

func (g *sessionGate) move(ctx context.Context, op string, secret []byte, fn func(l *ledger.Ledger) error) (decimal.Decimal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.authorize(ctx, op, secret); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := g.commit(ctx, op, func(l *ledger.Ledger, _ *credential.Store) error {
		if err := fn(l); err != nil {
			return err
		}
		balance = l.Balance()
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (g *sessionGate) ChangeCredential(ctx context.Context, secret, newSecret, confirmSecret []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	const op = "change_credential"
	if err := g.authorize(ctx, op, secret); err != nil {
		return err
	}

	return g.commit(ctx, op, func(l *ledger.Ledger, c *credential.Store) error {
		return l.ChangeCredential(c, newSecret, confirmSecret)
	})
}

// Authenticate checks secret without touching the ledger. Nothing is
// recorded or written.
func (g *sessionGate) Authenticate(ctx context.Context, secret []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	const op = "authenticate"
	if err := g.authorize(ctx, op, secret); err != nil {
		return err
	}
	g.log.Debug(ctx, "authenticated", "op", op)
	return nil
}

// History is read-only: it neither appends a record nor writes.
func (g *sessionGate) History(ctx context.Context, secret []byte) ([]models.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	const op = "history"
	if err := g.authorize(ctx, op, secret); err != nil {
		return nil, err
	}
	txs := g.ledger.Transactions()
	g.log.Info(ctx, "served", "op", op, "transactions", len(txs))
	return txs, nil
}

func (g *sessionGate) authorize(ctx context.Context, op string, secret []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !g.creds.IsSet() {
		g.log.Warn(ctx, "rejected", "op", op, "reason", "not initialized")
		return common.ErrNotInitialized
	}
	if !g.creds.Verify(secret) {
		g.log.Warn(ctx, "denied", "op", op)
		return common.ErrAuth
	}
	return nil
}

// commit runs fn against staged copies, persists the staged snapshot and,
// only once that succeeded, makes the copies live. Must be called with mu held.
func (g *sessionGate) commit(ctx context.Context, op string, fn func(l *ledger.Ledger, c *credential.Store) error) error {
	stagedLedger := g.ledger.Clone()
	stagedCreds := g.creds.Clone()

	if err := fn(stagedLedger, stagedCreds); err != nil {
		g.log.Info(ctx, "rejected", "op", op, "reason", err.Error())
		return err
	}

	if err := ctx.Err(); err != nil {
		g.log.Info(ctx, "aborted", "op", op, "reason", err.Error())
		return err
	}

	err := g.repo.Save(ctx, stagedLedger.Snapshot(stagedCreds.Hash()))
	if errors.Is(err, common.ErrNotDurable) {
		g.log.Warn(ctx, "persisted without durability confirmation", "op", op, "error", err)
		err = nil
	}
	if err != nil {
		if !errors.Is(err, common.ErrIO) && !errors.Is(err, ctx.Err()) {
			err = fmt.Errorf("%w: %v", common.ErrIO, err)
		}
		g.log.Error(ctx, "persist failed, state unchanged", "op", op, "error", err)
		return err
	}

	g.ledger, g.creds = stagedLedger, stagedCreds
	g.log.Info(ctx, "committed", "op", op, "transactions", len(g.ledger.Transactions()))
	return nil
}
