// Package config loads runtime configuration for the ATM shell.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   storage driver: file, sqlite, postgres or memory
//	-f string   path of the JSON data file (file driver)
//	-db string  path of the SQLite database (sqlite driver)
//	-d string   PostgreSQL DSN (postgres driver)
//	-b string   opening balance of a fresh account
//	-alg string PIN hash algorithm: bcrypt or argon2id
//	-cost int   bcrypt cost
//	-t int      input timeout in seconds, 0 disables it
//	-l string   log level: debug, info, warn or error
//	-log string log file, stderr when empty
//
// # JSON schema
//
// Keys that are absent keep their previous value. input_timeout uses
// timex.Duration, so it may be a string like "30s" or integer nanoseconds:
//
//	{
//	  "storage_driver": "sqlite",
//	  "sqlite_path": "/var/lib/atm/atm.db",
//	  "opening_balance": "1000",
//	  "hash_algorithm": "argon2id",
//	  "input_timeout": "30s",
//	  "log_level": "info"
//	}
package config
