// Package factory constructs the store and authorizer from configuration.
package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coginfy/relay/internal/config"
	storepkg "github.com/coginfy/relay/internal/store"
	storepg "github.com/coginfy/relay/internal/store/postgres"
	storesqlite "github.com/coginfy/relay/internal/store/sqlite"
)

// NewStore returns the configured store.Store. The driver is resolved by
// config.ResolveDefaults, so only "postgres" and "sqlite" reach this point.
// Schema setup runs synchronously; both drivers are idempotent about it.
func NewStore(cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("RELAY_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := storepg.EnsureSchema(db); err != nil {
			return nil, err
		}
		log.Debug().Str("driver", cfg.DBDriver).Msg("store ready")
		return storepg.NewWithDB(db), nil

	case "sqlite":
		st, err := storesqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("driver", cfg.DBDriver).Str("path", cfg.SQLitePath).Msg("store ready")
		return st, nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
