package fares

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
	"github.com/rail-console/fares/internal/topology"
)

// DefaultStoreTimeout bounds every single store call made by a Runner
const DefaultStoreTimeout = 10 * time.Second

// Summary reports the outcome of a generation run
type Summary struct {
	Created         int `json:"created"`
	SkippedExisting int `json:"skippedExisting"`
	Failed          int `json:"failed"`
	Attempted       int `json:"attempted"`
	Orphaned        int `json:"orphaned"`
}

// Coverage describes how much of the route matrix is priced
type Coverage struct {
	Stations      int               `json:"stations"`
	ExpectedPairs int               `json:"expectedPairs"`
	Priced        int               `json:"priced"`
	Missing       int               `json:"missing"`
	TotalFares    int               `json:"totalFares"`
	Orphaned      []models.RouteKey `json:"orphaned"`
}

// Runner loads stations and fares from the stores, plans the missing
// fares and writes them one by one.
type Runner struct {
	stations store.StationSource
	fares    store.FareStore
	line     topology.Line
	gen      *Generator
	timeout  time.Duration

	runMu sync.Mutex // one generation run at a time per process
}

// NewRunner creates a Runner. A zero timeout uses DefaultStoreTimeout.
func NewRunner(stations store.StationSource, fares store.FareStore, line topology.Line, gen *Generator, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Runner{
		stations: stations,
		fares:    fares,
		line:     line,
		gen:      gen,
		timeout:  timeout,
	}
}

// Generator returns the generator used by the runner
func (r *Runner) Generator() *Generator {
	return r.gen
}

// Line returns the canonical line used for ordering
func (r *Runner) Line() topology.Line {
	return r.line
}

// GenerateAllRoutes creates a fare for every route pair that lacks one.
//
// A failed insert is counted and the run carries on with the next pair.
// An insert that loses a race with another writer is counted as skipped.
// Running it again is always safe.
//
// When a fetch fails nothing can be written. The error wraps
// store.ErrUnavailable and the returned Summary still counts every pair
// that could be resolved as failed.
func (r *Runner) GenerateAllRoutes(ctx context.Context) (Summary, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	start := time.Now()

	stations, err := r.loadStations(ctx)
	if err != nil {
		return Summary{}, err
	}
	existing, err := r.loadFares(ctx)
	if err != nil {
		n := len(topology.Resolve(stations, r.line))
		pairs := n * (n - 1)
		log.Printf("Generate: no fares written, %d pairs left unpriced: %v", pairs, err)
		return Summary{Attempted: pairs, Failed: pairs}, err
	}

	var summary Summary
	for _, key := range Orphans(stations, existing) {
		log.Printf("Warning: fare %s references an unknown station, leaving it in place", key)
		summary.Orphaned++
	}

	route := topology.Resolve(stations, r.line)
	plan := r.gen.Generate(route, existing)
	summary.SkippedExisting = plan.SkippedExisting
	summary.Attempted = len(plan.Pending)

	for _, fare := range plan.Pending {
		if err := r.insert(ctx, fare); err != nil {
			switch {
			case errors.Is(err, store.ErrConflict):
				log.Printf("Generate: %s was created concurrently, skipping", fare.Key())
				summary.SkippedExisting++
			case errors.Is(err, context.DeadlineExceeded):
				log.Printf("Generate: insert %s timed out after %v", fare.Key(), r.timeout)
				summary.Failed++
			default:
				log.Printf("Generate: failed to insert %s: %v", fare.Key(), err)
				summary.Failed++
			}
			continue
		}
		summary.Created++
	}

	log.Printf("Generate: created %d of %d fares (%d already priced, %d failed) in %v",
		summary.Created, summary.Attempted, summary.SkippedExisting, summary.Failed, time.Since(start).Round(time.Millisecond))
	return summary, nil
}

// Route returns the resolved station order
func (r *Runner) Route(ctx context.Context) ([]topology.Node, error) {
	stations, err := r.loadStations(ctx)
	if err != nil {
		return nil, err
	}
	return topology.Resolve(stations, r.line), nil
}

// MissingPairs returns the route pairs a generation run would create
func (r *Runner) MissingPairs(ctx context.Context) ([]models.RouteKey, error) {
	stations, existing, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return r.gen.MissingPairs(topology.Resolve(stations, r.line), existing), nil
}

// Coverage reports priced and missing pairs without writing anything
func (r *Runner) Coverage(ctx context.Context) (Coverage, error) {
	stations, existing, err := r.load(ctx)
	if err != nil {
		return Coverage{}, err
	}

	route := topology.Resolve(stations, r.line)
	n := len(route)
	missing := r.gen.MissingPairs(route, existing)
	orphans := Orphans(stations, existing)
	if orphans == nil {
		orphans = []models.RouteKey{}
	}

	return Coverage{
		Stations:      n,
		ExpectedPairs: n * (n - 1),
		Priced:        n*(n-1) - len(missing),
		Missing:       len(missing),
		TotalFares:    len(existing),
		Orphaned:      orphans,
	}, nil
}

func (r *Runner) load(ctx context.Context) ([]models.Station, []models.FareRecord, error) {
	stations, err := r.loadStations(ctx)
	if err != nil {
		return nil, nil, err
	}
	existing, err := r.loadFares(ctx)
	if err != nil {
		return nil, nil, err
	}
	return stations, existing, nil
}

func (r *Runner) loadStations(ctx context.Context) ([]models.Station, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stations, err := r.stations.ListStations(opCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list stations: %v", store.ErrUnavailable, err)
	}
	return stations, nil
}

func (r *Runner) loadFares(ctx context.Context) ([]models.FareRecord, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	existing, err := r.fares.ListFares(opCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list fares: %v", store.ErrUnavailable, err)
	}
	return existing, nil
}

func (r *Runner) insert(ctx context.Context, fare models.FareRecord) error {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.fares.InsertFare(opCtx, fare)
	return err
}
