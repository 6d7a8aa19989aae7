package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/config"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"", Postgres, false},
		{"postgres", Postgres, false},
		{"PGX", Postgres, false},
		{"postgresql", Postgres, false},
		{"mysql", MySQL, false},
		{"sqlite3", SQLite, false},
		{" sqlite ", SQLite, false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDialectStatements(t *testing.T) {
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	assert.Equal(t, "?", MySQL.Placeholder(3))
	assert.Equal(t, "?", SQLite.Placeholder(1))

	assert.Equal(t, "TRUNCATE TABLE users CASCADE", Postgres.TruncateSQL("users"))
	assert.Equal(t, "DELETE FROM users", MySQL.TruncateSQL("users"))
	assert.Equal(t, "DELETE FROM users", SQLite.TruncateSQL("users"))

	assert.Equal(t, "pgx", Postgres.DriverName())
	assert.Equal(t, "mysql", MySQL.DriverName())
	assert.Equal(t, "sqlite3", SQLite.DriverName())
	assert.Less(t, SQLite.MaxParams(), Postgres.MaxParams())
}

func TestDSN(t *testing.T) {
	cfg := config.DBConfig{Host: "db", Port: "5432", Name: "streaming", User: "etl", Pass: "s3cret", SQLitePath: "/tmp/x.db"}

	assert.Equal(t, "postgres://etl:s3cret@db:5432/streaming?sslmode=disable", DSN(Postgres, cfg))
	assert.Equal(t, "file:/tmp/x.db?_foreign_keys=on", DSN(SQLite, cfg))

	cfg.Port = "3306"
	assert.Equal(t, "etl:s3cret@tcp(db:3306)/streaming?charset=utf8mb4&parseTime=true&loc=UTC", DSN(MySQL, cfg))

	cfg.URL = "postgres://other@host/db"
	assert.Equal(t, cfg.URL, DSN(Postgres, cfg), "DATABASE_URL wins")
}

func TestSanitizeDSN(t *testing.T) {
	pg := SanitizeDSN("postgres://etl:s3cret@db:5432/streaming?sslmode=disable")
	assert.NotContains(t, pg, "s3cret")
	assert.Equal(t, "postgres://etl:***@db:5432/streaming?sslmode=disable", pg)
	assert.Equal(t, "postgres://a%40b:***@db/x", SanitizeDSN("postgres://a%40b:pw@db/x"))
	assert.Equal(t, "postgres://etl@db/x", SanitizeDSN("postgres://etl@db/x"))

	my := SanitizeDSN("etl:s3cret@tcp(db:3306)/streaming?parseTime=true")
	assert.NotContains(t, my, "s3cret")
	assert.Contains(t, my, "etl:***@tcp(db:3306)/streaming")

	assert.Equal(t, "file:/tmp/x.db?_foreign_keys=on", SanitizeDSN("file:/tmp/x.db?_foreign_keys=on"))
	assert.Equal(t, "mongodb://localhost:27017", SanitizeDSN("mongodb://localhost:27017"))
}

func TestOpenSQLiteAndEnsureSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "etl.db")
	db, d, err := OpenConfig(ctx, config.DBConfig{Driver: "sqlite", SQLitePath: path})
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, SQLite, d)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	require.NoError(t, EnsureSchema(ctx, db, d))
	_, err = db.ExecContext(ctx, `INSERT INTO users (user_id, age) VALUES ('U1', 30)`)
	require.NoError(t, err)

	// a second pass must neither fail nor drop data
	require.NoError(t, EnsureSchema(ctx, db, d))
	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n)

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpenFailureIsConnectionError(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "missing", "dir", "etl.db")
	_, err := Open(context.Background(), SQLite, dsn)
	require.Error(t, err)

	var ce *ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "sqlite", ce.Store)
}

func TestOpenConfigRejectsUnknownDriver(t *testing.T) {
	_, _, err := OpenConfig(context.Background(), config.DBConfig{Driver: "oracle"})
	var ce *ConnectionError
	assert.ErrorAs(t, err, &ce)
}
