package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Statements are create-if-absent only: applying the schema to a store
// that already has the tables is a no-op and never drops data.

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id                VARCHAR(20) PRIMARY KEY,
		age                    INTEGER NOT NULL,
		country                VARCHAR(100),
		subscription_type      VARCHAR(50),
		registration_date      DATE,
		total_watch_time_hours DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS content (
		content_id           VARCHAR(20) PRIMARY KEY,
		title                VARCHAR(255) NOT NULL,
		genre                JSONB,
		content_type         VARCHAR(20) NOT NULL CHECK (content_type IN ('movie', 'series')),
		duration_minutes     INTEGER,
		release_year         INTEGER,
		rating               DOUBLE PRECISION,
		views_count          BIGINT,
		production_budget    BIGINT,
		seasons              INTEGER,
		episodes_per_season  JSONB,
		avg_episode_duration INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS viewing_sessions (
		session_id             VARCHAR(20) PRIMARY KEY,
		user_id                VARCHAR(20) NOT NULL REFERENCES users (user_id) ON DELETE CASCADE,
		content_id             VARCHAR(20) NOT NULL REFERENCES content (content_id) ON DELETE CASCADE,
		watch_date             DATE,
		watch_duration_minutes INTEGER,
		completion_percentage  DOUBLE PRECISION,
		device_type            VARCHAR(50),
		quality_level          VARCHAR(20)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_viewing_sessions_user ON viewing_sessions (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_viewing_sessions_content ON viewing_sessions (content_id)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id                VARCHAR(20) PRIMARY KEY,
		age                    INT NOT NULL,
		country                VARCHAR(100),
		subscription_type      VARCHAR(50),
		registration_date      DATE,
		total_watch_time_hours DOUBLE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS content (
		content_id           VARCHAR(20) PRIMARY KEY,
		title                VARCHAR(255) NOT NULL,
		genre                JSON,
		content_type         VARCHAR(20) NOT NULL,
		duration_minutes     INT,
		release_year         INT,
		rating               DOUBLE,
		views_count          BIGINT,
		production_budget    BIGINT,
		seasons              INT,
		episodes_per_season  JSON,
		avg_episode_duration INT,
		CONSTRAINT chk_content_type CHECK (content_type IN ('movie', 'series'))
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS viewing_sessions (
		session_id             VARCHAR(20) PRIMARY KEY,
		user_id                VARCHAR(20) NOT NULL,
		content_id             VARCHAR(20) NOT NULL,
		watch_date             DATE,
		watch_duration_minutes INT,
		completion_percentage  DOUBLE,
		device_type            VARCHAR(50),
		quality_level          VARCHAR(20),
		KEY idx_viewing_sessions_user (user_id),
		KEY idx_viewing_sessions_content (content_id),
		CONSTRAINT fk_sessions_user FOREIGN KEY (user_id) REFERENCES users (user_id) ON DELETE CASCADE,
		CONSTRAINT fk_sessions_content FOREIGN KEY (content_id) REFERENCES content (content_id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id                TEXT PRIMARY KEY,
		age                    INTEGER NOT NULL,
		country                TEXT,
		subscription_type      TEXT,
		registration_date      DATE,
		total_watch_time_hours REAL
	)`,
	`CREATE TABLE IF NOT EXISTS content (
		content_id           TEXT PRIMARY KEY,
		title                TEXT NOT NULL,
		genre                TEXT,
		content_type         TEXT NOT NULL CHECK (content_type IN ('movie', 'series')),
		duration_minutes     INTEGER,
		release_year         INTEGER,
		rating               REAL,
		views_count          INTEGER,
		production_budget    INTEGER,
		seasons              INTEGER,
		episodes_per_season  TEXT,
		avg_episode_duration INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS viewing_sessions (
		session_id             TEXT PRIMARY KEY,
		user_id                TEXT NOT NULL REFERENCES users (user_id) ON DELETE CASCADE,
		content_id             TEXT NOT NULL REFERENCES content (content_id) ON DELETE CASCADE,
		watch_date             DATE,
		watch_duration_minutes INTEGER,
		completion_percentage  REAL,
		device_type            TEXT,
		quality_level          TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_viewing_sessions_user ON viewing_sessions (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_viewing_sessions_content ON viewing_sessions (content_id)`,
}

// Schema returns the DDL statements for the dialect.
func Schema(d Dialect) []string {
	switch d {
	case MySQL:
		return mysqlSchema
	case SQLite:
		return sqliteSchema
	default:
		return postgresSchema
	}
}

// EnsureSchema applies the schema inside one transaction where the engine
// allows it (MySQL commits DDL implicitly).
func EnsureSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ensure schema: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range Schema(d) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ensure schema: commit: %w", err)
	}
	return nil
}
