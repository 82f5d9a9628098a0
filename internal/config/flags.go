package config

import (
	"flag"
	"io"
	"strconv"
	"time"

	"github.com/dmitrijs2005/pinledger/internal/flagx"
	"github.com/shopspring/decimal"
)

var knownFlags = []string{"-s", "-f", "-db", "-d", "-b", "-alg", "-cost", "-t", "-l", "-log"}

// parseFlags overlays cfg with command-line flags. Arguments it does not
// know, including -c/-config, are filtered out before parsing.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("atm", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.StorageDriver, "s", cfg.StorageDriver, "storage driver: file, sqlite, postgres, memory")
	fs.StringVar(&cfg.DataFile, "f", cfg.DataFile, "JSON data file")
	fs.StringVar(&cfg.SQLitePath, "db", cfg.SQLitePath, "SQLite database path")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.Func("b", "opening balance of a fresh account", func(s string) error {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		cfg.OpeningBalance = v
		return nil
	})
	fs.StringVar(&cfg.HashAlgorithm, "alg", cfg.HashAlgorithm, "PIN hash algorithm: bcrypt, argon2id")
	fs.IntVar(&cfg.BcryptCost, "cost", cfg.BcryptCost, "bcrypt cost")
	fs.Func("t", "input timeout (in seconds), 0 disables", func(s string) error {
		secs, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		cfg.InputTimeout = time.Duration(secs) * time.Second
		return nil
	})
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file, stderr when empty")

	return fs.Parse(filtered)
}
