// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
)

// Factory returns a fresh, empty store for one subtest
type Factory func(t *testing.T) store.Store

// Run exercises the store contract against backends built by newStore
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("stations", func(t *testing.T) { testStations(t, newStore(t)) })
	t.Run("station created at", func(t *testing.T) { testStationCreatedAt(t, newStore(t)) })
	t.Run("insert station", func(t *testing.T) { testInsertStation(t, newStore(t)) })
	t.Run("insert and conflict", func(t *testing.T) { testInsertConflict(t, newStore(t)) })
	t.Run("concurrent insert", func(t *testing.T) { testConcurrentInsert(t, newStore(t)) })
	t.Run("update and delete", func(t *testing.T) { testUpdateDelete(t, newStore(t)) })
	t.Run("list order", func(t *testing.T) { testListOrder(t, newStore(t)) })
}

// Fare builds a fare with every price set to a distinct value
func Fare(origin, destination string) models.FareRecord {
	f := models.FareRecord{
		OriginID:        origin,
		OriginName:      origin,
		DestinationID:   destination,
		DestinationName: destination,
		Currency:        models.DefaultCurrency,
		CreatedAt:       time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	i := 1
	for _, c := range models.SeatClasses {
		for _, n := range models.Nationalities {
			f.Prices.Set(c, n, 100*i)
			i++
		}
	}
	f.UpdatedAt = f.CreatedAt
	return f
}

func testStations(t *testing.T, s store.Store) {
	ctx := context.Background()

	for _, st := range []models.Station{
		{ID: "s2", Name: "Bravo", Active: true},
		{ID: "s1", Name: "Alpha", Active: true},
		{ID: "s3", Name: "Charlie", Active: false},
	} {
		if err := s.UpsertStation(ctx, st); err != nil {
			t.Fatalf("UpsertStation(%s) error = %v", st.ID, err)
		}
	}

	// rename and deactivate
	if err := s.UpsertStation(ctx, models.Station{ID: "s1", Name: "Zulu", Active: false}); err != nil {
		t.Fatalf("UpsertStation(update) error = %v", err)
	}

	got, err := s.ListStations(ctx)
	if err != nil {
		t.Fatalf("ListStations() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListStations() returned %d stations, want 3", len(got))
	}
	want := []string{"Bravo", "Charlie", "Zulu"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("station[%d].Name = %q, want %q", i, got[i].Name, name)
		}
	}
	if got[2].ID != "s1" || got[2].Active {
		t.Errorf("updated station = %+v", got[2])
	}
	if got[2].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set on upsert")
	}
}

// CreatedAt is set by the first upsert and never changed by later ones
func testStationCreatedAt(t *testing.T, s store.Store) {
	ctx := context.Background()
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := s.UpsertStation(ctx, models.Station{ID: "s1", Name: "Alpha", Active: true, CreatedAt: first, UpdatedAt: first}); err != nil {
		t.Fatal(err)
	}
	updates := []models.Station{
		{ID: "s1", Name: "Bravo", Active: true, CreatedAt: later, UpdatedAt: later},
		{ID: "s1", Name: "Charlie", Active: false},
	}
	for _, st := range updates {
		if err := s.UpsertStation(ctx, st); err != nil {
			t.Fatal(err)
		}

		got, err := s.ListStations(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Name != st.Name {
			t.Fatalf("ListStations() = %+v, want one station named %s", got, st.Name)
		}
		if !got[0].CreatedAt.Equal(first) {
			t.Errorf("after upserting %s CreatedAt = %v, want %v", st.Name, got[0].CreatedAt, first)
		}
	}
}

func testInsertStation(t *testing.T, s store.Store) {
	ctx := context.Background()
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.InsertStation(ctx, models.Station{ID: "s1", Name: fmt.Sprintf("Writer %d", i), Active: true})
		}(i)
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case !errors.Is(err, store.ErrConflict):
			t.Errorf("InsertStation() error = %v, want nil or ErrConflict", err)
		}
	}
	if created != 1 {
		t.Errorf("%d concurrent inserts succeeded, want 1", created)
	}

	got, err := s.ListStations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].CreatedAt.IsZero() {
		t.Errorf("ListStations() = %+v, want one station with CreatedAt set", got)
	}
}

func testInsertConflict(t *testing.T, s store.Store) {
	ctx := context.Background()

	exists, err := s.FareExists(ctx, "a", "b")
	if err != nil || exists {
		t.Fatalf("FareExists() on empty store = %v, %v", exists, err)
	}

	fare := Fare("a", "b")
	id, err := s.InsertFare(ctx, fare)
	if err != nil {
		t.Fatalf("InsertFare() error = %v", err)
	}
	if id == "" {
		t.Fatal("InsertFare() should assign an id")
	}

	exists, err = s.FareExists(ctx, "a", "b")
	if err != nil || !exists {
		t.Errorf("FareExists(a, b) = %v, %v; want true", exists, err)
	}
	if exists, _ := s.FareExists(ctx, "b", "a"); exists {
		t.Error("FareExists(b, a) should be false: pairs are directional")
	}

	dup := Fare("a", "b")
	dup.Prices.Set(models.Regular, models.Domestic, 1)
	if _, err := s.InsertFare(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Errorf("InsertFare(duplicate) error = %v, want ErrConflict", err)
	}

	got, err := s.GetFare(ctx, id)
	if err != nil {
		t.Fatalf("GetFare() error = %v", err)
	}
	if got.Prices != fare.Prices {
		t.Errorf("stored prices = %+v, want %+v", got.Prices, fare.Prices)
	}
	if got.Currency != models.DefaultCurrency || got.OriginName != "a" {
		t.Errorf("stored fare = %+v", got)
	}
	if !got.CreatedAt.Equal(fare.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, fare.CreatedAt)
	}

	if _, err := s.GetFare(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetFare(missing) error = %v, want ErrNotFound", err)
	}
}

func testConcurrentInsert(t *testing.T, s store.Store) {
	ctx := context.Background()
	const workers = 8

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, conflicts := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.InsertFare(ctx, Fare("x", "y"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, store.ErrConflict):
				conflicts++
			default:
				t.Errorf("InsertFare() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 || conflicts != workers-1 {
		t.Errorf("created = %d, conflicts = %d; want 1 and %d", created, conflicts, workers-1)
	}

	all, err := s.ListFares(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("ListFares() returned %d fares, want 1", len(all))
	}
}

func testUpdateDelete(t *testing.T, s store.Store) {
	ctx := context.Background()

	id, err := s.InsertFare(ctx, Fare("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	otherID, err := s.InsertFare(ctx, Fare("b", "a"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetFare(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	got.Prices.Set(models.PremiumUpper, models.Foreign, 9999)
	got.UpdatedAt = got.CreatedAt.Add(time.Hour)
	if err := s.UpdateFare(ctx, *got); err != nil {
		t.Fatalf("UpdateFare() error = %v", err)
	}

	updated, err := s.GetFare(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Prices.Get(models.PremiumUpper, models.Foreign) != 9999 {
		t.Errorf("price not updated: %+v", updated.Prices)
	}
	if !updated.CreatedAt.Equal(got.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v -> %v", got.CreatedAt, updated.CreatedAt)
	}

	// moving a fare onto a pair that is already priced
	moved := *updated
	moved.OriginID, moved.DestinationID = "b", "a"
	if err := s.UpdateFare(ctx, moved); !errors.Is(err, store.ErrConflict) {
		t.Errorf("UpdateFare(taken pair) error = %v, want ErrConflict", err)
	}

	missing := Fare("p", "q")
	missing.ID = "missing"
	if err := s.UpdateFare(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateFare(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.DeleteFare(ctx, otherID); err != nil {
		t.Fatalf("DeleteFare() error = %v", err)
	}
	if err := s.DeleteFare(ctx, otherID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteFare(twice) error = %v, want ErrNotFound", err)
	}
	if exists, _ := s.FareExists(ctx, "b", "a"); exists {
		t.Error("deleted pair should no longer exist")
	}

	// the freed pair can be priced again
	if _, err := s.InsertFare(ctx, Fare("b", "a")); err != nil {
		t.Errorf("InsertFare(after delete) error = %v", err)
	}
}

func testListOrder(t *testing.T, s store.Store) {
	ctx := context.Background()

	pairs := [][2]string{{"c", "a"}, {"a", "c"}, {"b", "a"}, {"a", "b"}}
	for _, p := range pairs {
		if _, err := s.InsertFare(ctx, Fare(p[0], p[1])); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListFares(ctx)
	if err != nil {
		t.Fatalf("ListFares() error = %v", err)
	}
	var got []string
	for _, f := range all {
		got = append(got, f.Key().String())
	}
	want := []string{"a->b", "a->c", "b->a", "c->a"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("ListFares() order = %v, want %v", got, want)
	}
}
