package data

import (
	"context"
	"database/sql"
)

// The offers table is owned by an external process; it is created here only
// so a fresh database is usable out of the box.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS offers (
		slug   TEXT PRIMARY KEY,
		url    TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS clicks (
		id         BIGSERIAL PRIMARY KEY,
		offer_slug TEXT NOT NULL,
		country    TEXT NOT NULL,
		uid_hash   TEXT,
		ts         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS clicks_ts_idx ON clicks (ts)`,
	`CREATE INDEX IF NOT EXISTS clicks_offer_slug_idx ON clicks (offer_slug)`,
	`CREATE TABLE IF NOT EXISTS short_links (
		id         CHAR(8) PRIMARY KEY,
		slug       TEXT NOT NULL,
		country    TEXT NOT NULL,
		uid_hash   TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate applies the idempotent schema statements.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
