// Package pgstore implements store.Store on PostgreSQL through pgxpool
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// unique_violation
const uniqueViolation = "23505"

var fareColumns = store.FareColumns()

var fareColumnList = strings.Join(fareColumns, ", ")

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Println("Connected to PostgreSQL database")
	return s, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// EnsureSchema creates tables if they don't exist, one statement at a time
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Store) ListStations(ctx context.Context) ([]models.Station, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, active, created_at, updated_at FROM stations ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	stations := []models.Station{}
	for rows.Next() {
		var st models.Station
		if err := rows.Scan(&st.ID, &st.Name, &st.Active, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating station rows: %w", err)
	}
	return stations, nil
}

func (s *Store) InsertStation(ctx context.Context, station models.Station) error {
	now := time.Now().UTC()
	if station.CreatedAt.IsZero() {
		station.CreatedAt = now
	}
	if station.UpdatedAt.IsZero() {
		station.UpdatedAt = now
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO stations (id, name, active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)",
		station.ID, station.Name, station.Active, station.CreatedAt, station.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("failed to insert station %s: %w", station.ID, err)
	}
	return nil
}

func (s *Store) UpsertStation(ctx context.Context, station models.Station) error {
	now := time.Now().UTC()
	if station.CreatedAt.IsZero() {
		station.CreatedAt = now
	}
	if station.UpdatedAt.IsZero() {
		station.UpdatedAt = now
	}

	query := `
		INSERT INTO stations (id, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.pool.Exec(ctx, query,
		station.ID, station.Name, station.Active, station.CreatedAt, station.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert station %s: %w", station.ID, err)
	}
	return nil
}

func (s *Store) FareExists(ctx context.Context, originID, destinationID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM fares WHERE origin_id = $1 AND destination_id = $2)",
		originID, destinationID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check fare %s->%s: %w", originID, destinationID, err)
	}
	return exists, nil
}

func (s *Store) InsertFare(ctx context.Context, fare models.FareRecord) (string, error) {
	if fare.ID == "" {
		fare.ID = uuid.New().String()
	}
	if fare.CreatedAt.IsZero() {
		fare.CreatedAt = time.Now().UTC()
	}
	if fare.UpdatedAt.IsZero() {
		fare.UpdatedAt = fare.CreatedAt
	}

	query := "INSERT INTO fares (" + fareColumnList + ") VALUES (" + params(1, len(fareColumns)) + ")" +
		" ON CONFLICT (origin_id, destination_id) DO NOTHING"
	tag, err := s.pool.Exec(ctx, query, fareArgs(fare)...)
	if err != nil {
		if isUniqueViolation(err) {
			return "", store.ErrConflict
		}
		return "", fmt.Errorf("failed to insert fare %s: %w", fare.Key(), err)
	}
	if tag.RowsAffected() == 0 {
		return "", store.ErrConflict
	}
	return fare.ID, nil
}

func (s *Store) ListFares(ctx context.Context) ([]models.FareRecord, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+fareColumnList+" FROM fares ORDER BY origin_id, destination_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query fares: %w", err)
	}
	defer rows.Close()

	fares := []models.FareRecord{}
	for rows.Next() {
		f, err := scanFare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fare row: %w", err)
		}
		fares = append(fares, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fare rows: %w", err)
	}
	return fares, nil
}

func (s *Store) GetFare(ctx context.Context, id string) (*models.FareRecord, error) {
	f, err := scanFare(s.pool.QueryRow(ctx, "SELECT "+fareColumnList+" FROM fares WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query fare: %w", err)
	}
	return &f, nil
}

func (s *Store) UpdateFare(ctx context.Context, fare models.FareRecord) error {
	if fare.UpdatedAt.IsZero() {
		fare.UpdatedAt = time.Now().UTC()
	}

	all := fareArgs(fare)
	sets := make([]string, 0, len(fareColumns))
	args := make([]any, 0, len(fareColumns))
	for i, col := range fareColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		args = append(args, all[i])
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	args = append(args, fare.ID)

	query := fmt.Sprintf("UPDATE fares SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("failed to update fare %s: %w", fare.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteFare(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM fares WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete fare %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanFare(row pgx.Row) (models.FareRecord, error) {
	var f models.FareRecord
	prices := make([]int, len(models.SeatClasses)*len(models.Nationalities))

	dest := []any{&f.ID, &f.OriginID, &f.OriginName, &f.DestinationID, &f.DestinationName}
	for i := range prices {
		dest = append(dest, &prices[i])
	}
	dest = append(dest, &f.Currency, &f.CreatedAt, &f.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return f, err
	}

	f.Prices = models.PricesFromValues(prices)
	return f, nil
}

func fareArgs(f models.FareRecord) []any {
	args := []any{f.ID, f.OriginID, f.OriginName, f.DestinationID, f.DestinationName}
	for _, v := range f.Prices.Values() {
		args = append(args, v)
	}
	return append(args, f.Currency, f.CreatedAt.UTC(), f.UpdatedAt.UTC())
}

// params lists n positional parameters starting at $from
func params(from, n int) string {
	p := make([]string, n)
	for i := range p {
		p[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(p, ", ")
}
