// Package store defines the persistence contract for stations and fares.
// Backends live in sub-packages; Memory is the in-process implementation.
package store

import (
	"context"
	"errors"

	"github.com/rail-console/fares/internal/models"
)

var (
	// ErrConflict means the record already exists: a fare for the same
	// ordered route pair, or a station with the same id
	ErrConflict = errors.New("record already exists")
	// ErrNotFound means the requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable marks a store read that could not be completed
	ErrUnavailable = errors.New("store unavailable")
)

// FareColumns lists the columns of a fare row in scan order
func FareColumns() []string {
	cols := []string{"id", "origin_id", "origin_name", "destination_id", "destination_name"}
	cols = append(cols, models.PriceColumns()...)
	return append(cols, "currency", "created_at", "updated_at")
}

// StationSource is the queryable collection of stations
type StationSource interface {
	// ListStations returns every station, active or not, ordered by name
	ListStations(ctx context.Context) ([]models.Station, error)
	// InsertStation creates a station, or returns ErrConflict if its id is taken
	InsertStation(ctx context.Context, station models.Station) error
	// UpsertStation creates a station or updates its name and active flag.
	// CreatedAt is set by the first write and kept afterwards.
	UpsertStation(ctx context.Context, station models.Station) error
}

// FareStore is the collection of fares keyed by (origin, destination).
// InsertFare must be an atomic conditional insert: when a fare already
// exists for the pair it returns ErrConflict and writes nothing.
type FareStore interface {
	FareExists(ctx context.Context, originID, destinationID string) (bool, error)
	InsertFare(ctx context.Context, fare models.FareRecord) (string, error)
	ListFares(ctx context.Context) ([]models.FareRecord, error)
	GetFare(ctx context.Context, id string) (*models.FareRecord, error)
	UpdateFare(ctx context.Context, fare models.FareRecord) error
	DeleteFare(ctx context.Context, id string) error
}

// Store is a backend serving both collections
type Store interface {
	StationSource
	FareStore
	Close() error
}
