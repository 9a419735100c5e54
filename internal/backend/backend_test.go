package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rail-console/fares/internal/config"
	"github.com/rail-console/fares/internal/store/storetest"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{name: "memory", cfg: config.Config{StoreDriver: "memory"}},
		{name: "sqlite", cfg: config.Config{StoreDriver: "sqlite", DatabasePath: filepath.Join(dir, "nested", "fares.db")}},
		{name: "badger", cfg: config.Config{StoreDriver: "badger", BadgerDir: filepath.Join(dir, "badger")}},
		{name: "postgres without url", cfg: config.Config{StoreDriver: "postgres"}, wantErr: "DATABASE_URL"},
		{name: "mysql without dsn", cfg: config.Config{StoreDriver: "mysql"}, wantErr: "MYSQL_DSN"},
		{name: "unknown", cfg: config.Config{StoreDriver: "redis"}, wantErr: "unknown STORE_DRIVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, &tt.cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Open() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer s.Close()

			if _, err := s.InsertFare(ctx, storetest.Fare("a", "b")); err != nil {
				t.Errorf("InsertFare() error = %v", err)
			}
		})
	}
}
