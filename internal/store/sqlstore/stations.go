package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
)

// ListStations returns every station ordered by name
func (s *Store) ListStations(ctx context.Context) ([]models.Station, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT id, name, active, created_at, updated_at FROM stations ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	stations := []models.Station{}
	for rows.Next() {
		var st models.Station
		var createdAt, updatedAt string
		if err := rows.Scan(&st.ID, &st.Name, &st.Active, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		st.CreatedAt = parseTime(createdAt)
		st.UpdatedAt = parseTime(updatedAt)
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stations: %w", err)
	}
	return stations, nil
}

// InsertStation creates a station; the primary key rejects a taken id
func (s *Store) InsertStation(ctx context.Context, station models.Station) error {
	now := time.Now().UTC()
	if station.CreatedAt.IsZero() {
		station.CreatedAt = now
	}
	if station.UpdatedAt.IsZero() {
		station.UpdatedAt = now
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO stations (id, name, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		station.ID, station.Name, station.Active,
		formatTime(station.CreatedAt), formatTime(station.UpdatedAt),
	)
	if err != nil {
		if s.dialect.isConflict(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("failed to insert station %s: %w", station.ID, err)
	}
	return nil
}

// UpsertStation inserts a station or updates its name and active flag
func (s *Store) UpsertStation(ctx context.Context, station models.Station) error {
	now := time.Now().UTC()
	if station.CreatedAt.IsZero() {
		station.CreatedAt = now
	}
	if station.UpdatedAt.IsZero() {
		station.UpdatedAt = now
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.conn.ExecContext(ctx, s.dialect.upsertStation,
		station.ID, station.Name, station.Active,
		formatTime(station.CreatedAt), formatTime(station.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert station %s: %w", station.ID, err)
	}
	return nil
}
