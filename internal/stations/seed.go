// Package stations holds station administration that sits above the store:
// seeding the canonical line and operator edits.
package stations

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rail-console/fares/internal/config"
	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
)

// SeedCanonical creates every canonical-line station missing from the
// store, active and named as configured. Stations that already exist are
// left exactly as they are. Returns the number of stations created.
func SeedCanonical(ctx context.Context, src store.StationSource, line *config.LineConfig) (int, error) {
	existing, err := src.ListStations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stations: %w", err)
	}

	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[s.ID] = true
	}

	now := time.Now().UTC()
	created := 0
	for _, ls := range line.Stations {
		if known[ls.ID] {
			continue
		}
		name := ls.Name
		if name == "" {
			name = ls.ID
		}
		station := models.Station{
			ID:        ls.ID,
			Name:      name,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := src.InsertStation(ctx, station); err != nil {
			// created by another process since the list above
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			return created, fmt.Errorf("failed to seed station %s: %w", ls.ID, err)
		}
		created++
	}

	if created > 0 {
		log.Printf("Seeded %d canonical stations", created)
	}
	return created, nil
}

// Find returns the station with the given id
func Find(ctx context.Context, src store.StationSource, id string) (*models.Station, error) {
	all, err := src.ListStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	for _, s := range all {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, store.ErrNotFound
}

// Update applies an operator edit: a new name and/or active flag
func Update(ctx context.Context, src store.StationSource, id string, name *string, active *bool) (*models.Station, error) {
	station, err := Find(ctx, src, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		station.Name = strings.TrimSpace(*name)
	}
	if active != nil {
		station.Active = *active
	}
	if err := station.Validate(); err != nil {
		return nil, err
	}

	station.UpdatedAt = time.Now().UTC()
	if err := src.UpsertStation(ctx, *station); err != nil {
		return nil, fmt.Errorf("failed to update station %s: %w", id, err)
	}
	return station, nil
}

// Toggle flips the active flag of a station
func Toggle(ctx context.Context, src store.StationSource, id string) (*models.Station, error) {
	station, err := Find(ctx, src, id)
	if err != nil {
		return nil, err
	}
	active := !station.Active
	updated, err := Update(ctx, src, id, nil, &active)
	if err != nil {
		return nil, err
	}
	log.Printf("Station %s active status set to: %v", updated.Name, updated.Active)
	return updated, nil
}
