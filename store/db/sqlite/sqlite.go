// Package sqlite implements the store driver on SQLite. Suited to
// single-instance deployments; the analytics workload is append-mostly
// and fits SQLite well under WAL mode.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/shijin/IDALSCustomerCareAgent/internal/profile"
	"github.com/shijin/IDALSCustomerCareAgent/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database at the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// WAL journal mode avoids writer/reader locking on the append-only
	// analytics stream; busy_timeout covers the rare write contention.
	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// SQLite: a single connection is optimal with WAL.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	return &DB{db: sqliteDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the analytics schema if it does not exist.
func (d *DB) Migrate(ctx context.Context) error {
	stmt := `
		CREATE TABLE IF NOT EXISTS analytics_event (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			question TEXT NOT NULL,
			intent TEXT NOT NULL,
			escalation INTEGER NOT NULL DEFAULT 0,
			reason TEXT,
			language TEXT NOT NULL DEFAULT '',
			hallucination_risk TEXT NOT NULL DEFAULT '',
			response_length INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_analytics_event_timestamp ON analytics_event (timestamp);
		CREATE INDEX IF NOT EXISTS idx_analytics_event_intent ON analytics_event (intent);
	`
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to migrate analytics schema")
	}
	return nil
}

// AnalyticsEventStore returns the analytics event store interface.
func (d *DB) AnalyticsEventStore() store.AnalyticsEventStore {
	return &analyticsEventStore{db: d.db}
}
