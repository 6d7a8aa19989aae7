package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect names one of the supported relational engines. It decides the
// driver, placeholder style, truncate statement and schema DDL.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// ParseDialect accepts the DB_DRIVER values (and the driver aliases
// pgx, postgresql and sqlite3).
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pgx", "":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", s)
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite3"
	default:
		return "pgx"
	}
}

// Placeholder returns the bind marker for the n-th (1-based) parameter.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// MaxParams is the number of bind parameters one statement may carry.
func (d Dialect) MaxParams() int {
	switch d {
	case SQLite:
		return 32766
	default:
		return 65535
	}
}

// TruncateSQL empties a table and, through the schema's ON DELETE CASCADE
// foreign keys, every row that depends on it. MySQL's TRUNCATE commits
// implicitly, so it and SQLite use DELETE to stay inside the caller's
// transaction.
func (d Dialect) TruncateSQL(table string) string {
	if d == Postgres {
		return "TRUNCATE TABLE " + table + " CASCADE"
	}
	return "DELETE FROM " + table
}
