package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/dmitrijs2005/pinledger/internal/dbx"
	"github.com/dmitrijs2005/pinledger/internal/filex"
	"github.com/dmitrijs2005/pinledger/internal/migrations"
	"github.com/dmitrijs2005/pinledger/internal/models"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// accountID is the primary key of the single account row.
const accountID = 1

// SQLRepository stores the account row and an append-only transactions table.
type SQLRepository struct {
	db      *sql.DB
	dialect dbx.Dialect
	now     func() time.Time
}

func NewSQLRepository(db *sql.DB, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// OpenSQLite opens (creating if needed) the database file at path and
// migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLRepository, error) {
	if path != ":memory:" {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrIO, err)
		}
	}
	return openSQL(ctx, dbx.SQLite, path)
}

// OpenPostgres connects with the pgx driver and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQLRepository, error) {
	return openSQL(ctx, dbx.Postgres, dsn)
}

func openSQL(ctx context.Context, dialect dbx.Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(dialect.Driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", common.ErrIO, dialect, err)
	}
	if dialect == dbx.SQLite {
		// one writer; also keeps ":memory:" on a single connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", common.ErrIO, dialect, err)
	}
	if err := RunMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", common.ErrIO, err)
	}
	return NewSQLRepository(db, dialect), nil
}

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	// goose reports progress on stdout, which belongs to the shell
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(dialect)); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func (r *SQLRepository) q(query string) string {
	return r.dialect.Rebind(query)
}

func (r *SQLRepository) Load(ctx context.Context) (*models.Account, error) {
	var balance, hash string
	err := r.db.QueryRowContext(ctx,
		r.q(`SELECT balance, credential_hash FROM account WHERE id = ?`), accountID,
	).Scan(&balance, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read account: %v", common.ErrCorruptState, err)
	}

	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("%w: balance %q: %v", common.ErrCorruptState, balance, err)
	}

	txs, err := r.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	account := &models.Account{Balance: bal, CredentialHash: hash, Transactions: txs}
	if err := checkLoaded(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (r *SQLRepository) loadTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		r.q(`SELECT id, kind, amount, created_at FROM transactions ORDER BY seq`))
	if err != nil {
		return nil, fmt.Errorf("%w: read transactions: %v", common.ErrCorruptState, err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var id, kind, at string
		var amount sql.NullString
		if err := rows.Scan(&id, &kind, &amount, &at); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %v", common.ErrCorruptState, err)
		}
		tx, err := decodeRow(id, kind, amount, at)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %s: %v", common.ErrCorruptState, id, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate transactions: %v", common.ErrCorruptState, err)
	}
	return txs, nil
}

func decodeRow(id, kind string, amount sql.NullString, at string) (models.Transaction, error) {
	var tx models.Transaction
	var err error

	if tx.ID, err = uuid.Parse(id); err != nil {
		return tx, err
	}
	tx.Kind = models.TransactionKind(kind)
	if amount.Valid {
		d, err := decimal.NewFromString(amount.String)
		if err != nil {
			return tx, err
		}
		tx.Amount = decimal.NewNullDecimal(d)
	}
	if tx.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return tx, err
	}
	return tx, nil
}

// Save upserts the account row and appends the part of the log that is not
// stored yet, in one transaction. It refuses a snapshot whose log would
// shorten or rewrite what is already stored.
func (r *SQLRepository) Save(ctx context.Context, account models.Account) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		stored, err := r.storedIDs(ctx, tx)
		if err != nil {
			return err
		}
		if len(stored) > len(account.Transactions) {
			return fmt.Errorf("snapshot has %d transactions, %d already stored", len(account.Transactions), len(stored))
		}
		for i, id := range stored {
			if account.Transactions[i].ID != id {
				return fmt.Errorf("transaction %d differs from stored log", i)
			}
		}

		if _, err := tx.ExecContext(ctx, r.q(`
			INSERT INTO account (id, balance, credential_hash, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				balance = excluded.balance,
				credential_hash = excluded.credential_hash,
				updated_at = excluded.updated_at`),
			accountID, account.Balance.String(), account.CredentialHash, r.now().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("upsert account: %w", err)
		}

		for i := len(stored); i < len(account.Transactions); i++ {
			t := account.Transactions[i]
			var amount sql.NullString
			if t.Amount.Valid {
				amount = sql.NullString{String: t.Amount.Decimal.String(), Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				r.q(`INSERT INTO transactions (seq, id, kind, amount, created_at) VALUES (?, ?, ?, ?, ?)`),
				i+1, t.ID.String(), string(t.Kind), amount, t.At.UTC().Format(time.RFC3339Nano),
			); err != nil {
				return fmt.Errorf("insert transaction %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrIO, err)
	}
	return nil
}

func (r *SQLRepository) storedIDs(ctx context.Context, tx dbx.DBTX) ([]uuid.UUID, error) {
	rows, err := tx.QueryContext(ctx, r.q(`SELECT id FROM transactions ORDER BY seq`))
	if err != nil {
		return nil, fmt.Errorf("read stored ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan stored id: %w", err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("stored id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}
