// Package app assembles the store, canonical line and fare runner shared
// by the command line programs.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/rail-console/fares/internal/backend"
	"github.com/rail-console/fares/internal/config"
	"github.com/rail-console/fares/internal/fares"
	"github.com/rail-console/fares/internal/stations"
	"github.com/rail-console/fares/internal/store"
)

// App holds the wired components of one process
type App struct {
	Config *config.Config
	Line   *config.LineConfig
	Store  store.Store
	Runner *fares.Runner
}

// LoadEnv loads .env, then .env.local which overrides it for local development
func LoadEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")
}

// Bootstrap reads configuration, opens the store and seeds the canonical
// stations that are missing from it.
func Bootstrap(ctx context.Context) (*App, error) {
	cfg := config.Load()
	log.Printf("Config loaded: store=%s, timeout=%v, currency=%s", cfg.StoreDriver, cfg.StoreTimeout, cfg.Currency)

	line, err := config.LoadLine(cfg.LineConfigPath)
	if err != nil {
		return nil, err
	}
	topo, err := line.Topology()
	if err != nil {
		return nil, fmt.Errorf("invalid canonical line: %w", err)
	}

	st, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}

	seedCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if _, err := stations.SeedCanonical(seedCtx, st, line); err != nil {
		st.Close()
		return nil, err
	}

	runner := fares.NewRunner(st, st, topo, fares.NewGenerator(cfg.Currency), cfg.StoreTimeout)
	return &App{Config: cfg, Line: line, Store: st, Runner: runner}, nil
}

// Close releases the store
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		log.Printf("Warning: failed to close store: %v", err)
	}
}
