// Package migrations embeds the goose SQL migrations for the snapshot
// database. The statements are portable between SQLite and PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
