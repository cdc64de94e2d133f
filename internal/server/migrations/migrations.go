// Package migrations embeds the goose SQL migrations for each supported
// database dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrations embed.FS

// Postgres returns the PostgreSQL migration set.
func Postgres() fs.FS {
	sub, _ := fs.Sub(migrations, "postgres")
	return sub
}

// SQLite returns the SQLite migration set.
func SQLite() fs.FS {
	sub, _ := fs.Sub(migrations, "sqlite")
	return sub
}
