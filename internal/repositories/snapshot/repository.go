package snapshot

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/dmitrijs2005/pinledger/internal/config"
	"github.com/dmitrijs2005/pinledger/internal/cryptox"
	"github.com/dmitrijs2005/pinledger/internal/models"
)

// Repository persists the account snapshot.
//
// Load returns nil, nil when nothing has been stored yet and an error
// wrapping common.ErrCorruptState when stored data cannot be trusted.
// Save replaces the stored snapshot; failures wrap common.ErrIO, except
// common.ErrNotDurable, which means the snapshot was written anyway.
type Repository interface {
	Load(ctx context.Context) (*models.Account, error)
	Save(ctx context.Context, account models.Account) error
	Close() error
}

// Open returns the backend selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.StorageDriver {
	case config.DriverFile, "":
		return NewFileRepository(cfg.DataFile), nil
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.DatabaseDSN)
	case config.DriverMemory:
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownStorageDriver, cfg.StorageDriver)
	}
}

// checkLoaded applies the invariants every restored snapshot must satisfy.
func checkLoaded(a *models.Account) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrCorruptState, err)
	}
	if a.CredentialHash != "" && !cryptox.Recognized(a.CredentialHash) {
		return fmt.Errorf("%w: unrecognised credential hash format", common.ErrCorruptState)
	}
	return nil
}
