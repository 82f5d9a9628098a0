package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/dmitrijs2005/pinledger/internal/cryptox"
	"github.com/dmitrijs2005/pinledger/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds runtime settings for the ATM shell.
type Config struct {
	StorageDriver  string
	DataFile       string
	SQLitePath     string
	DatabaseDSN    string
	OpeningBalance decimal.Decimal
	HashAlgorithm  string
	BcryptCost     int
	InputTimeout   time.Duration
	LogLevel       string
	LogFile        string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.StorageDriver = DriverFile
	c.DataFile = "atm_data.json"
	c.SQLitePath = "atm.db"
	c.DatabaseDSN = ""
	c.OpeningBalance = models.DefaultOpeningBalance
	c.HashAlgorithm = cryptox.AlgorithmBcrypt
	c.BcryptCost = bcrypt.DefaultCost
	c.InputTimeout = 0
	c.LogLevel = "warn"
	c.LogFile = ""
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverFile:
		if c.DataFile == "" {
			return errors.New("data file path is empty")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite path is empty")
		}
	case DriverPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("postgres driver requires a database DSN")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: %q", common.ErrUnknownStorageDriver, c.StorageDriver)
	}

	if c.OpeningBalance.IsNegative() {
		return fmt.Errorf("opening balance %s is negative", c.OpeningBalance)
	}

	switch c.HashAlgorithm {
	case cryptox.AlgorithmBcrypt:
		if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
			return fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case cryptox.AlgorithmArgon2id:
	default:
		return fmt.Errorf("%w: %q", common.ErrUnknownHashAlgorithm, c.HashAlgorithm)
	}

	if c.InputTimeout < 0 {
		return errors.New("input timeout is negative")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	return nil
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// the remaining flags, and validates the result.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
