package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rail-console/fares/internal/models"
)

var _ Store = (*Memory)(nil)

// Memory keeps stations and fares in process memory.
// Used by tests and by the "memory" store driver.
type Memory struct {
	mu       sync.RWMutex
	stations map[string]models.Station
	fares    map[string]models.FareRecord // id -> fare
	keys     map[models.RouteKey]string   // route pair -> id
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		stations: make(map[string]models.Station),
		fares:    make(map[string]models.FareRecord),
		keys:     make(map[models.RouteKey]string),
	}
}

func (m *Memory) ListStations(ctx context.Context) ([]models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stations := make([]models.Station, 0, len(m.stations))
	for _, s := range m.stations {
		stations = append(stations, s)
	}
	SortStations(stations)
	return stations, nil
}

func (m *Memory) InsertStation(ctx context.Context, station models.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stations[station.ID]; ok {
		return ErrConflict
	}
	now := time.Now().UTC()
	if station.CreatedAt.IsZero() {
		station.CreatedAt = now
	}
	if station.UpdatedAt.IsZero() {
		station.UpdatedAt = now
	}
	m.stations[station.ID] = station
	return nil
}

func (m *Memory) UpsertStation(ctx context.Context, station models.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if prev, ok := m.stations[station.ID]; ok {
		station.CreatedAt = prev.CreatedAt
	} else if station.CreatedAt.IsZero() {
		station.CreatedAt = now
	}
	if station.UpdatedAt.IsZero() {
		station.UpdatedAt = now
	}
	m.stations[station.ID] = station
	return nil
}

func (m *Memory) FareExists(ctx context.Context, originID, destinationID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.keys[models.RouteKey{OriginID: originID, DestinationID: destinationID}]
	return ok, nil
}

func (m *Memory) InsertFare(ctx context.Context, fare models.FareRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fare.Key()
	if _, ok := m.keys[key]; ok {
		return "", ErrConflict
	}
	if fare.ID == "" {
		fare.ID = uuid.New().String()
	}
	if fare.CreatedAt.IsZero() {
		fare.CreatedAt = time.Now().UTC()
	}
	if fare.UpdatedAt.IsZero() {
		fare.UpdatedAt = fare.CreatedAt
	}
	m.fares[fare.ID] = fare
	m.keys[key] = fare.ID
	return fare.ID, nil
}

func (m *Memory) ListFares(ctx context.Context) ([]models.FareRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fares := make([]models.FareRecord, 0, len(m.fares))
	for _, f := range m.fares {
		fares = append(fares, f)
	}
	SortFares(fares)
	return fares, nil
}

func (m *Memory) GetFare(ctx context.Context, id string) (*models.FareRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.fares[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (m *Memory) UpdateFare(ctx context.Context, fare models.FareRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.fares[fare.ID]
	if !ok {
		return ErrNotFound
	}
	if prev.Key() != fare.Key() {
		if _, taken := m.keys[fare.Key()]; taken {
			return ErrConflict
		}
		delete(m.keys, prev.Key())
		m.keys[fare.Key()] = fare.ID
	}
	fare.CreatedAt = prev.CreatedAt
	m.fares[fare.ID] = fare
	return nil
}

func (m *Memory) DeleteFare(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.fares[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.keys, f.Key())
	delete(m.fares, id)
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// SortStations orders stations by name, then ID, matching the SQL backends
func SortStations(stations []models.Station) {
	sort.SliceStable(stations, func(i, j int) bool {
		if stations[i].Name != stations[j].Name {
			return stations[i].Name < stations[j].Name
		}
		return stations[i].ID < stations[j].ID
	})
}

// SortFares orders fares by origin, then destination
func SortFares(fares []models.FareRecord) {
	sort.SliceStable(fares, func(i, j int) bool {
		if fares[i].OriginID != fares[j].OriginID {
			return fares[i].OriginID < fares[j].OriginID
		}
		return fares[i].DestinationID < fares[j].DestinationID
	})
}
