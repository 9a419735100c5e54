package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
)

// fareColumns lists the fares table columns in scan order
var fareColumns = store.FareColumns()

var fareColumnList = strings.Join(fareColumns, ", ")

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFare(row rowScanner) (models.FareRecord, error) {
	var f models.FareRecord
	var createdAt, updatedAt string
	prices := make([]int, len(models.SeatClasses)*len(models.Nationalities))

	dest := []any{&f.ID, &f.OriginID, &f.OriginName, &f.DestinationID, &f.DestinationName}
	for i := range prices {
		dest = append(dest, &prices[i])
	}
	dest = append(dest, &f.Currency, &createdAt, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		return f, err
	}

	f.Prices = models.PricesFromValues(prices)
	f.CreatedAt = parseTime(createdAt)
	f.UpdatedAt = parseTime(updatedAt)
	return f, nil
}

func fareArgs(f models.FareRecord) []any {
	args := []any{f.ID, f.OriginID, f.OriginName, f.DestinationID, f.DestinationName}
	for _, v := range f.Prices.Values() {
		args = append(args, v)
	}
	return append(args, f.Currency, formatTime(f.CreatedAt), formatTime(f.UpdatedAt))
}

// FareExists reports whether a fare is stored for the ordered pair
func (s *Store) FareExists(ctx context.Context, originID, destinationID string) (bool, error) {
	var one int
	err := s.conn.QueryRowContext(ctx,
		"SELECT 1 FROM fares WHERE origin_id = ? AND destination_id = ? LIMIT 1",
		originID, destinationID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check fare %s->%s: %w", originID, destinationID, err)
	}
	return true, nil
}

// InsertFare writes the fare unless one already exists for its pair
func (s *Store) InsertFare(ctx context.Context, fare models.FareRecord) (string, error) {
	if fare.ID == "" {
		fare.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if fare.CreatedAt.IsZero() {
		fare.CreatedAt = now
	}
	if fare.UpdatedAt.IsZero() {
		fare.UpdatedAt = fare.CreatedAt
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.conn.ExecContext(ctx, s.dialect.insertFare, fareArgs(fare)...)
	if err != nil {
		if s.dialect.isConflict(err) {
			return "", store.ErrConflict
		}
		return "", fmt.Errorf("failed to insert fare %s: %w", fare.Key(), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read insert result: %w", err)
	}
	// SQLite skips the row on conflict instead of failing
	if n == 0 {
		return "", store.ErrConflict
	}
	return fare.ID, nil
}

// ListFares returns every fare ordered by origin, then destination
func (s *Store) ListFares(ctx context.Context) ([]models.FareRecord, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT "+fareColumnList+" FROM fares ORDER BY origin_id, destination_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query fares: %w", err)
	}
	defer rows.Close()

	fares := []models.FareRecord{}
	for rows.Next() {
		f, err := scanFare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fare: %w", err)
		}
		fares = append(fares, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fares: %w", err)
	}
	return fares, nil
}

// GetFare returns a single fare by id
func (s *Store) GetFare(ctx context.Context, id string) (*models.FareRecord, error) {
	row := s.conn.QueryRowContext(ctx, "SELECT "+fareColumnList+" FROM fares WHERE id = ?", id)
	f, err := scanFare(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fare %s: %w", id, err)
	}
	return &f, nil
}

// UpdateFare replaces every field of a stored fare except its creation time
func (s *Store) UpdateFare(ctx context.Context, fare models.FareRecord) error {
	if fare.UpdatedAt.IsZero() {
		fare.UpdatedAt = time.Now().UTC()
	}

	sets := make([]string, 0, len(fareColumns))
	args := make([]any, 0, len(fareColumns))
	// Every column but the key and the creation time
	all := fareArgs(fare)
	for i, col := range fareColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, all[i])
	}
	args = append(args, fare.ID)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.conn.ExecContext(ctx,
		"UPDATE fares SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if s.dialect.isConflict(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("failed to update fare %s: %w", fare.ID, err)
	}
	return requireRow(res)
}

// DeleteFare removes a fare by id
func (s *Store) DeleteFare(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.conn.ExecContext(ctx, "DELETE FROM fares WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete fare %s: %w", id, err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read result: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
