// Package sqlstore implements store.Store on database/sql for SQLite and
// MySQL/MariaDB. The fares table carries a UNIQUE (origin_id, destination_id)
// constraint, so conditional inserts stay atomic across processes.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/rail-console/fares/internal/store"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_mysql.sql
var mysqlSchema string

// Dialect captures the statements that differ between SQL engines
type Dialect struct {
	Name          string
	schema        string
	insertFare    string
	upsertStation string
	isConflict    func(error) bool
}

var sqliteDialect = Dialect{
	Name:       "sqlite",
	schema:     sqliteSchema,
	insertFare: "INSERT INTO fares (" + fareColumnList + ") VALUES (" + placeholders(len(fareColumns)) + ") ON CONFLICT(origin_id, destination_id) DO NOTHING",
	upsertStation: `INSERT INTO stations (id, name, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, active = excluded.active, updated_at = excluded.updated_at`,
	isConflict: func(err error) bool {
		var se *sqlite.Error
		if errors.As(err, &se) {
			return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
		}
		return false
	},
}

var mysqlDialect = Dialect{
	Name:       "mysql",
	schema:     mysqlSchema,
	insertFare: "INSERT INTO fares (" + fareColumnList + ") VALUES (" + placeholders(len(fareColumns)) + ")",
	upsertStation: `INSERT INTO stations (id, name, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), active = VALUES(active), updated_at = VALUES(updated_at)`,
	isConflict: func(err error) bool {
		var me *mysql.MySQLError
		// ER_DUP_ENTRY
		return errors.As(err, &me) && me.Number == 1062
	},
}

// Store wraps a SQL connection with write serialization
type Store struct {
	conn    *sql.DB
	dialect Dialect
	writeMu sync.Mutex // Serializes writes within this process; the unique index covers other processes
}

var _ store.Store = (*Store)(nil)

// OpenSQLite opens a SQLite database with WAL mode enabled and ensures the schema
func OpenSQLite(ctx context.Context, dbPath string) (*Store, error) {
	// Open with WAL mode and foreign keys enabled
	dsn := dbPath + "?_journal=WAL&_fk=1&_busy_timeout=5000"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite only supports one writer at a time; writeMu serializes
	// writes issued from concurrent requests on top of that.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	// Test connection
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Performance tuning PRAGMAs
	pragmas := []string{
		"PRAGMA synchronous = NORMAL", // Faster writes, still safe with WAL
		"PRAGMA temp_store = MEMORY",  // Use RAM for temp tables
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			log.Printf("Warning: failed to set %s: %v", pragma, err)
		}
	}

	// Create tables and the route uniqueness index
	s := &Store{conn: conn, dialect: sqliteDialect}
	if err := s.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("Connected to SQLite database: %s", dbPath)
	return s, nil
}

// OpenMySQL connects to MySQL or MariaDB and ensures the schema
func OpenMySQL(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MySQL DSN: %w", err)
	}
	// report matched rows so an unchanged UPDATE is not mistaken for a missing row
	cfg.ClientFoundRows = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create MySQL connector: %w", err)
	}
	conn := sql.OpenDB(connector)

	// Configure connection pool
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	// Test connection
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{conn: conn, dialect: mysqlDialect}
	if err := s.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("Connected to MySQL database: %s@%s/%s", cfg.User, cfg.Addr, cfg.DBName)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Dialect reports which SQL engine the store talks to
func (s *Store) Dialect() string {
	return s.dialect.Name
}

// EnsureSchema creates tables if they don't exist. Statements run one at a
// time since the MySQL driver rejects multi-statement execs by default.
func (s *Store) EnsureSchema(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for _, stmt := range strings.Split(s.dialect.schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// placeholders returns n comma-separated "?" markers
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads a stored timestamp. Unparseable values become the zero time.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
