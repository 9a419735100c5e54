package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rail-console/fares/internal/topology"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("STORE_TIMEOUT_SECONDS", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()
	if cfg.StoreDriver != "sqlite" {
		t.Errorf("StoreDriver = %q, want sqlite", cfg.StoreDriver)
	}
	if cfg.StoreTimeout != 10*time.Second {
		t.Errorf("StoreTimeout = %v, want 10s", cfg.StoreTimeout)
	}
	if len(cfg.CORSOrigins) != 1 {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("STORE_TIMEOUT_SECONDS", "3")
	t.Setenv("CACHE_TTL_SECONDS", "not-a-number")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg := Load()
	if cfg.StoreDriver != "postgres" {
		t.Errorf("StoreDriver = %q, want postgres", cfg.StoreDriver)
	}
	if cfg.StoreTimeout != 3*time.Second {
		t.Errorf("StoreTimeout = %v, want 3s", cfg.StoreTimeout)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want fallback 30s", cfg.CacheTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadLineDefault(t *testing.T) {
	line, err := LoadLine("")
	if err != nil {
		t.Fatal(err)
	}
	ids := line.IDs()
	if len(ids) != 8 || ids[0] != "sebeta-station" || ids[7] != "dire-dawa-station" {
		t.Errorf("default line = %v", ids)
	}
	if _, err := line.Topology(); err != nil {
		t.Errorf("default line is invalid: %v", err)
	}
}

func TestLoadLineFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "line.yaml")
	os.WriteFile(path, []byte(`name: test-line
stations:
  - id: s1
    name: First
  - id: s2
    name: Second
`), 0644)

	line, err := LoadLine(path)
	if err != nil {
		t.Fatalf("LoadLine() error = %v", err)
	}
	if line.Name != "test-line" || len(line.Stations) != 2 || line.Stations[1].Name != "Second" {
		t.Errorf("line = %+v", line)
	}
}

func TestLoadLineFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadLine(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadLine() should fail for a missing file")
	}

	empty := filepath.Join(dir, "empty.yaml")
	os.WriteFile(empty, []byte("name: nothing\n"), 0644)
	if _, err := LoadLine(empty); err == nil {
		t.Error("LoadLine() should fail for a line without stations")
	}

	dup := filepath.Join(dir, "dup.yaml")
	os.WriteFile(dup, []byte("stations:\n  - id: a\n  - id: b\n  - id: a\n"), 0644)
	line, err := LoadLine(dup)
	if err != nil {
		t.Fatalf("LoadLine() error = %v", err)
	}
	if _, err := line.Topology(); !errors.Is(err, topology.ErrDuplicateStation) {
		t.Errorf("Topology() error = %v, want ErrDuplicateStation", err)
	}
}
