package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/dmitrijs2005/pinledger/internal/filex"
	"github.com/dmitrijs2005/pinledger/internal/models"
)

// FileRepository stores the account as a single JSON file.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Load(ctx context.Context) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrCorruptState, r.path, err)
	}

	account, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", common.ErrCorruptState, r.path, err)
	}
	if err := checkLoaded(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (r *FileRepository) Save(ctx context.Context, account models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeDocument(account)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", common.ErrIO, err)
	}
	err = filex.WriteFileAtomic(r.path, data, 0o600)
	if errors.Is(err, filex.ErrDirSync) {
		return fmt.Errorf("%w: write %s: %v", common.ErrNotDurable, r.path, err)
	}
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", common.ErrIO, r.path, err)
	}
	return nil
}

func (r *FileRepository) Close() error { return nil }
