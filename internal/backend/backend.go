// Package backend opens the store selected by STORE_DRIVER
package backend

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rail-console/fares/internal/config"
	"github.com/rail-console/fares/internal/store"
	"github.com/rail-console/fares/internal/store/badgerstore"
	"github.com/rail-console/fares/internal/store/mongostore"
	"github.com/rail-console/fares/internal/store/pgstore"
	"github.com/rail-console/fares/internal/store/sqlstore"
)

// Drivers lists the accepted STORE_DRIVER values
var Drivers = []string{"sqlite", "postgres", "mysql", "mongo", "badger", "memory"}

// Open connects to the configured store
func Open(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlstore.OpenSQLite(ctx, cfg.DatabasePath)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		return pgstore.Open(ctx, cfg.DatabaseURL)
	case "mysql":
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("MYSQL_DSN is required for the mysql driver")
		}
		return sqlstore.OpenMySQL(ctx, cfg.MySQLDSN)
	case "mongo":
		return mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDBName)
	case "badger":
		return badgerstore.Open(cfg.BadgerDir)
	case "memory":
		log.Println("Warning: using in-memory store, data is lost on exit")
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want one of %v)", cfg.StoreDriver, Drivers)
	}
}
