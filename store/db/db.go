// Package db selects the concrete store driver from the profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/internal/profile"
	"github.com/shijin/IDALSCustomerCareAgent/store"
	"github.com/shijin/IDALSCustomerCareAgent/store/db/postgres"
	"github.com/shijin/IDALSCustomerCareAgent/store/db/sqlite"
)

// NewDBDriver creates a new database driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	case "postgres":
		return postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
}
