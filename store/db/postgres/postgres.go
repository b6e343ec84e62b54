// Package postgres implements the store driver on PostgreSQL, including
// the pgvector-backed FAQ index for multi-instance deployments.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/internal/profile"
	"github.com/shijin/IDALSCustomerCareAgent/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a PostgreSQL connection with the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	pgDB.SetMaxOpenConns(10)
	pgDB.SetMaxIdleConns(5)

	return &DB{db: pgDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the analytics and FAQ-embedding schema. The vector
// extension must be installable by the configured role.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS analytics_event (
			id BIGSERIAL PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			question TEXT NOT NULL,
			intent TEXT NOT NULL,
			escalation BOOLEAN NOT NULL DEFAULT FALSE,
			reason TEXT,
			language TEXT NOT NULL DEFAULT '',
			hallucination_risk TEXT NOT NULL DEFAULT '',
			response_length INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_event_timestamp ON analytics_event (timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_event_intent ON analytics_event (intent)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS faq_embedding (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)`, d.profile.EmbeddingDimensions),
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "migration failed: %s", firstLine(stmt))
		}
	}
	return nil
}

// AnalyticsEventStore returns the analytics event store interface.
func (d *DB) AnalyticsEventStore() store.AnalyticsEventStore {
	return &analyticsEventStore{db: d.db}
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = placeholder(i + 1)
	}
	return strings.Join(list, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
