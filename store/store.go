// Package store provides database access to all persisted objects.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shijin/IDALSCustomerCareAgent/internal/profile"
)

// Driver is the database driver interface implemented by
// store/db/sqlite and store/db/postgres.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates the schema if it does not exist.
	Migrate(ctx context.Context) error

	AnalyticsEventStore() AnalyticsEventStore
}

// Store provides access to all persisted objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	analyticsStore AnalyticsEventStore
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:         driver,
		profile:        profile,
		analyticsStore: driver.AnalyticsEventStore(),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) CreateAnalyticsEvent(ctx context.Context, create *AnalyticsEvent) (*AnalyticsEvent, error) {
	return s.analyticsStore.CreateAnalyticsEvent(ctx, create)
}

func (s *Store) ListAnalyticsEvents(ctx context.Context, find *FindAnalyticsEvent) ([]*AnalyticsEvent, error) {
	return s.analyticsStore.ListAnalyticsEvents(ctx, find)
}

func (s *Store) GetAnalyticsSummary(ctx context.Context, since time.Time) (*AnalyticsSummary, error) {
	return s.analyticsStore.GetAnalyticsSummary(ctx, since)
}
