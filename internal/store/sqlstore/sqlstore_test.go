package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rail-console/fares/internal/store"
	"github.com/rail-console/fares/internal/store/storetest"
)

func openTestSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "fares.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openTestSQLite(t)
	})
}

func TestMySQLContract(t *testing.T) {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("MYSQL_DSN not set, skipping MySQL integration test")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		s, err := OpenMySQL(ctx, dsn)
		if err != nil {
			t.Fatalf("OpenMySQL() error = %v", err)
		}
		// each subtest starts from empty tables
		for _, table := range []string{"fares", "stations"} {
			if _, err := s.conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				t.Fatalf("failed to clear %s: %v", table, err)
			}
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestFareColumns(t *testing.T) {
	if len(fareColumns) != 5+18+3 {
		t.Fatalf("fareColumns has %d entries, want 26", len(fareColumns))
	}
	for _, col := range []string{"regular_domestic", "sleeper_middle_regional", "premium_upper_foreign"} {
		if !strings.Contains(fareColumnList, col) {
			t.Errorf("fareColumnList is missing %s", col)
		}
	}

	// every generated column must exist in both schemas
	for _, col := range fareColumns {
		for name, schema := range map[string]string{"sqlite": sqliteSchema, "mysql": mysqlSchema} {
			if !strings.Contains(schema, "    "+col+" ") {
				t.Errorf("%s schema is missing column %s", name, col)
			}
		}
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			if got := placeholders(tt.n); got != tt.want {
				t.Errorf("placeholders(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	s := openTestSQLite(t)
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Errorf("second EnsureSchema() error = %v", err)
	}
	if s.Dialect() != "sqlite" {
		t.Errorf("Dialect() = %q, want sqlite", s.Dialect())
	}
}

func TestSQLiteUniqueConstraint(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	if _, err := s.InsertFare(ctx, storetest.Fare("a", "b")); err != nil {
		t.Fatal(err)
	}

	// a raw insert bypassing ON CONFLICT must hit the unique index
	f := storetest.Fare("a", "b")
	f.ID = "raw"
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO fares ("+fareColumnList+") VALUES ("+placeholders(len(fareColumns))+")",
		fareArgs(f)...)
	if err == nil {
		t.Fatal("raw duplicate insert should fail")
	}
	if !s.dialect.isConflict(err) {
		t.Errorf("isConflict(%v) = false, want true", err)
	}
	if s.dialect.isConflict(sql.ErrNoRows) {
		t.Error("isConflict(ErrNoRows) should be false")
	}
	if mysqlDialect.isConflict(errors.New("duplicate")) {
		t.Error("mysql isConflict should only match driver errors")
	}
}
