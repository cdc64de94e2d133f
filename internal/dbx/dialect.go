package dbx

import (
	"regexp"
	"strings"
)

// Dialect names the SQL flavour a repository talks to.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == SQLite {
		return "sqlite"
	}
	return "pgx"
}

var numberedParam = regexp.MustCompile(`\$\d+`)

// Rebind rewrites a query written with $N placeholders for the dialect.
// For SQLite every $N becomes '?', so queries must use each parameter once
// and in ascending order.
func (d Dialect) Rebind(query string) string {
	if d != SQLite {
		return query
	}
	return numberedParam.ReplaceAllString(query, "?")
}

// ParseDSN splits a DSN into dialect and driver data source. "sqlite:<path>"
// and "file:<path>" select SQLite; everything else is handed to pgx.
func ParseDSN(dsn string) (Dialect, string) {
	if rest, ok := strings.CutPrefix(dsn, "sqlite:"); ok {
		return SQLite, rest
	}
	if strings.HasPrefix(dsn, "file:") {
		return SQLite, dsn
	}
	return Postgres, dsn
}
