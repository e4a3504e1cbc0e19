package repository

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS flagged_posts (
		id TEXT PRIMARY KEY,
		platform TEXT NOT NULL,
		channel TEXT,
		text TEXT NOT NULL,
		detected_keywords TEXT NOT NULL DEFAULT '[]',
		matched_emojis TEXT NOT NULL DEFAULT '[]',
		risk_score REAL NOT NULL,
		risk_level TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		full_analysis TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_flagged_posts_created_at ON flagged_posts(created_at);

	CREATE TABLE IF NOT EXISTS suspected_users (
		username TEXT PRIMARY KEY,
		platform TEXT NOT NULL,
		linked_profiles TEXT NOT NULL DEFAULT '[]',
		risk_level TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		email_hash TEXT,
		analysis TEXT NOT NULL,
		first_seen DATETIME NOT NULL,
		last_seen DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_suspected_users_last_seen ON suspected_users(last_seen);
	CREATE INDEX IF NOT EXISTS idx_suspected_users_email_hash ON suspected_users(email_hash);
	`

// NewSQLiteStore opens (and creates) a sqlite file store.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("SQLite store initialized", zap.String("db_path", dbPath))

	return &sqlStore{
		db:          db,
		name:        "sqlite",
		insertOrder: "rowid",
		logger:      logger,
		now:         time.Now,
	}, nil
}
