package store

import (
	"github.com/Lumos-Labs-HQ/relgrid/internal/store/postgres"
	"github.com/Lumos-Labs-HQ/relgrid/internal/store/sqlstore"
)

// New returns the store for a configured provider. Unknown providers
// fall back to Postgres, matching the config default.
func New(provider string) Store {
	switch provider {
	case "postgresql", "postgres":
		return postgres.New()
	case "mysql":
		return sqlstore.NewMySQL()
	case "sqlite", "sqlite3":
		return sqlstore.NewSQLite()
	default:
		return postgres.New()
	}
}
