// Package badgerstore implements store.Store on an embedded Badger database.
//
// Records are JSON values under three key spaces:
//
//	station/<id>             station
//	fare/<id>                fare
//	route/<origin>\x00<dest> id of the fare priced for that pair
//
// The route index is read and written in the same transaction as the fare,
// so two concurrent inserts for one pair cannot both commit.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
)

var (
	stationPrefix = []byte("station/")
	farePrefix    = []byte("fare/")
	routePrefix   = []byte("route/")
)

func stationKey(id string) []byte {
	return append(append([]byte{}, stationPrefix...), id...)
}

func fareKey(id string) []byte {
	return append(append([]byte{}, farePrefix...), id...)
}

func routeKey(k models.RouteKey) []byte {
	key := append(append([]byte{}, routePrefix...), k.OriginID...)
	key = append(key, 0)
	return append(key, k.DestinationID...)
}

type Store struct {
	db *badger.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a Badger database in dir
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", dir, err)
	}
	log.Printf("Opened Badger database: %s", dir)
	return &Store{db: db}, nil
}

// OpenInMemory opens a Badger database that lives only in memory
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return txn.Set(key, val)
}

// scanPrefix decodes every value under prefix through decode
func scanPrefix(txn *badger.Txn, prefix []byte, decode func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(decode); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListStations(ctx context.Context) ([]models.Station, error) {
	stations := []models.Station{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, stationPrefix, func(val []byte) error {
			var st models.Station
			if err := json.Unmarshal(val, &st); err != nil {
				return err
			}
			stations = append(stations, st)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	store.SortStations(stations)
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

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(stationKey(station.ID))
		if err == nil {
			return store.ErrConflict
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, stationKey(station.ID), station)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrConflict), errors.Is(err, badger.ErrConflict):
		return store.ErrConflict
	default:
		return fmt.Errorf("failed to insert station %s: %w", station.ID, err)
	}
}

func (s *Store) UpsertStation(ctx context.Context, station models.Station) error {
	now := time.Now().UTC()
	if station.UpdatedAt.IsZero() {
		station.UpdatedAt = now
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var prev models.Station
		err := getJSON(txn, stationKey(station.ID), &prev)
		switch {
		case err == nil:
			station.CreatedAt = prev.CreatedAt
		case errors.Is(err, badger.ErrKeyNotFound):
			if station.CreatedAt.IsZero() {
				station.CreatedAt = now
			}
		default:
			return err
		}
		return setJSON(txn, stationKey(station.ID), station)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert station %s: %w", station.ID, err)
	}
	return nil
}

func (s *Store) FareExists(ctx context.Context, originID, destinationID string) (bool, error) {
	key := routeKey(models.RouteKey{OriginID: originID, DestinationID: destinationID})
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check fare %s->%s: %w", originID, destinationID, err)
	}
	return true, nil
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

	rk := routeKey(fare.Key())
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(rk)
		if err == nil {
			return store.ErrConflict
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(rk, []byte(fare.ID)); err != nil {
			return err
		}
		return setJSON(txn, fareKey(fare.ID), fare)
	})
	switch {
	case err == nil:
		return fare.ID, nil
	case errors.Is(err, store.ErrConflict), errors.Is(err, badger.ErrConflict):
		// a concurrent transaction wrote the same route key first
		return "", store.ErrConflict
	default:
		return "", fmt.Errorf("failed to insert fare %s: %w", fare.Key(), err)
	}
}

func (s *Store) ListFares(ctx context.Context) ([]models.FareRecord, error) {
	fares := []models.FareRecord{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, farePrefix, func(val []byte) error {
			var f models.FareRecord
			if err := json.Unmarshal(val, &f); err != nil {
				return err
			}
			fares = append(fares, f)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list fares: %w", err)
	}
	store.SortFares(fares)
	return fares, nil
}

func (s *Store) GetFare(ctx context.Context, id string) (*models.FareRecord, error) {
	var fare models.FareRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, fareKey(id), &fare)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fare %s: %w", id, err)
	}
	return &fare, nil
}

func (s *Store) UpdateFare(ctx context.Context, fare models.FareRecord) error {
	if fare.UpdatedAt.IsZero() {
		fare.UpdatedAt = time.Now().UTC()
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var prev models.FareRecord
		if err := getJSON(txn, fareKey(fare.ID), &prev); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.ErrNotFound
			}
			return err
		}

		if prev.Key() != fare.Key() {
			newKey := routeKey(fare.Key())
			if _, err := txn.Get(newKey); err == nil {
				return store.ErrConflict
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Delete(routeKey(prev.Key())); err != nil {
				return err
			}
			if err := txn.Set(newKey, []byte(fare.ID)); err != nil {
				return err
			}
		}

		fare.CreatedAt = prev.CreatedAt
		return setJSON(txn, fareKey(fare.ID), fare)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrConflict):
		return err
	case errors.Is(err, badger.ErrConflict):
		return store.ErrConflict
	default:
		return fmt.Errorf("failed to update fare %s: %w", fare.ID, err)
	}
}

func (s *Store) DeleteFare(ctx context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var prev models.FareRecord
		if err := getJSON(txn, fareKey(id), &prev); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		if err := txn.Delete(routeKey(prev.Key())); err != nil {
			return err
		}
		return txn.Delete(fareKey(id))
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to delete fare %s: %w", id, err)
	}
	return err
}
