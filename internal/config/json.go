package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pinledger/internal/flagx"
	"github.com/dmitrijs2005/pinledger/internal/timex"
	"github.com/shopspring/decimal"
)

// JsonConfig is the on-disk shape of the config file.
type JsonConfig struct {
	StorageDriver  string          `json:"storage_driver"`
	DataFile       string          `json:"data_file"`
	SQLitePath     string          `json:"sqlite_path"`
	DatabaseDSN    string          `json:"database_dsn"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	HashAlgorithm  string          `json:"hash_algorithm"`
	BcryptCost     int             `json:"bcrypt_cost"`
	InputTimeout   timex.Duration  `json:"input_timeout"`
	LogLevel       string          `json:"log_level"`
	LogFile        string          `json:"log_file"`
}

// parseJson overlays cfg with the file given by -c/-config, if any.
// The DTO is seeded from cfg so keys missing from the file keep their value.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JsonConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	jc := JsonConfig{
		StorageDriver:  cfg.StorageDriver,
		DataFile:       cfg.DataFile,
		SQLitePath:     cfg.SQLitePath,
		DatabaseDSN:    cfg.DatabaseDSN,
		OpeningBalance: cfg.OpeningBalance,
		HashAlgorithm:  cfg.HashAlgorithm,
		BcryptCost:     cfg.BcryptCost,
		InputTimeout:   timex.Duration{Duration: cfg.InputTimeout},
		LogLevel:       cfg.LogLevel,
		LogFile:        cfg.LogFile,
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	cfg.StorageDriver = jc.StorageDriver
	cfg.DataFile = jc.DataFile
	cfg.SQLitePath = jc.SQLitePath
	cfg.DatabaseDSN = jc.DatabaseDSN
	cfg.OpeningBalance = jc.OpeningBalance
	cfg.HashAlgorithm = jc.HashAlgorithm
	cfg.BcryptCost = jc.BcryptCost
	cfg.InputTimeout = jc.InputTimeout.Duration
	cfg.LogLevel = jc.LogLevel
	cfg.LogFile = jc.LogFile
	return nil
}
