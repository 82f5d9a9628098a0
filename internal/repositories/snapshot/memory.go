package snapshot

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/dmitrijs2005/pinledger/internal/models"
)

// MemoryRepository keeps a deep copy of the last saved snapshot.
type MemoryRepository struct {
	mu        sync.Mutex
	account   *models.Account
	failSaves error
	saves     int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// NewMemoryRepositoryWith returns a repository pre-loaded with account.
func NewMemoryRepositoryWith(account models.Account) *MemoryRepository {
	cp := account.Clone()
	return &MemoryRepository{account: &cp}
}

// FailSaves makes every following Save fail with err wrapped in
// common.ErrIO. A nil err restores normal behaviour.
func (r *MemoryRepository) FailSaves(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failSaves = err
}

// Saves reports how many Save calls succeeded.
func (r *MemoryRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *MemoryRepository) Load(ctx context.Context) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.account == nil {
		return nil, nil
	}
	cp := r.account.Clone()
	return &cp, nil
}

func (r *MemoryRepository) Save(ctx context.Context, account models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSaves != nil {
		return fmt.Errorf("%w: %v", common.ErrIO, r.failSaves)
	}
	cp := account.Clone()
	r.account = &cp
	r.saves++
	return nil
}

func (r *MemoryRepository) Close() error { return nil }
