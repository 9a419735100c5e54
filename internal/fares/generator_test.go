package fares

import (
	"reflect"
	"testing"
	"time"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/topology"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestGenerator() *Generator {
	g := NewGenerator("")
	g.Now = func() time.Time { return fixedNow }
	return g
}

func activeStations(ids ...string) []models.Station {
	stations := make([]models.Station, 0, len(ids))
	for _, id := range ids {
		stations = append(stations, models.Station{ID: id, Name: "Station " + id, Active: true})
	}
	return stations
}

func findFare(t *testing.T, fares []models.FareRecord, origin, dest string) models.FareRecord {
	t.Helper()
	for _, f := range fares {
		if f.OriginID == origin && f.DestinationID == dest {
			return f
		}
	}
	t.Fatalf("no fare generated for %s -> %s", origin, dest)
	return models.FareRecord{}
}

func TestGenerateThreeStationLine(t *testing.T) {
	line := topology.MustLine([]string{"S1", "S2", "S3"})
	route := topology.Resolve(activeStations("S1", "S2", "S3"), line)

	plan := newTestGenerator().Generate(route, nil)

	if len(plan.Pending) != 6 {
		t.Fatalf("Generate() produced %d fares, want 6", len(plan.Pending))
	}
	if plan.SkippedExisting != 0 {
		t.Errorf("SkippedExisting = %d, want 0", plan.SkippedExisting)
	}

	s1s3 := findFare(t, plan.Pending, "S1", "S3")
	if s1s3.Prices.Regular.Domestic != 150 {
		t.Errorf("S1->S3 regular domestic = %d, want 150", s1s3.Prices.Regular.Domestic)
	}
	if s1s3.Prices.Regular.Foreign != 300 {
		t.Errorf("S1->S3 regular foreign = %d, want 300", s1s3.Prices.Regular.Foreign)
	}
	if got := findFare(t, plan.Pending, "S1", "S2").Prices.Regular.Domestic; got != 100 {
		t.Errorf("S1->S2 regular domestic = %d, want 100", got)
	}

	if s1s3.Currency != models.DefaultCurrency {
		t.Errorf("Currency = %q, want %q", s1s3.Currency, models.DefaultCurrency)
	}
	if !s1s3.CreatedAt.Equal(fixedNow) || !s1s3.UpdatedAt.Equal(fixedNow) {
		t.Errorf("timestamps = %v / %v, want %v", s1s3.CreatedAt, s1s3.UpdatedAt, fixedNow)
	}
	if s1s3.OriginName != "Station S1" || s1s3.DestinationName != "Station S3" {
		t.Errorf("names = %q -> %q", s1s3.OriginName, s1s3.DestinationName)
	}
}

func TestGenerateExtensionStationUsesFlatBase(t *testing.T) {
	line := topology.MustLine([]string{"S1", "S2", "S3"})
	route := topology.Resolve(activeStations("S1", "S2", "S3", "S4"), line)

	plan := newTestGenerator().Generate(route, nil)
	if len(plan.Pending) != 12 {
		t.Fatalf("Generate() produced %d fares, want 12", len(plan.Pending))
	}

	for _, pair := range [][2]string{{"S1", "S4"}, {"S4", "S1"}, {"S3", "S4"}, {"S4", "S2"}} {
		f := findFare(t, plan.Pending, pair[0], pair[1])
		if f.Prices.Regular.Domestic != 100 {
			t.Errorf("%s->%s regular domestic = %d, want flat 100", pair[0], pair[1], f.Prices.Regular.Domestic)
		}
	}
}

func TestGenerateKeepsExistingZeroFare(t *testing.T) {
	line := topology.MustLine([]string{"S1", "S2", "S3"})
	route := topology.Resolve(activeStations("S1", "S2", "S3"), line)

	existing := []models.FareRecord{{ID: "manual", OriginID: "S1", DestinationID: "S2"}}
	plan := newTestGenerator().Generate(route, existing)

	if len(plan.Pending) != 5 {
		t.Fatalf("Generate() produced %d fares, want 5", len(plan.Pending))
	}
	if plan.SkippedExisting != 1 {
		t.Errorf("SkippedExisting = %d, want 1", plan.SkippedExisting)
	}
	for _, f := range plan.Pending {
		if f.OriginID == "S1" && f.DestinationID == "S2" {
			t.Fatal("Generate() replaced the existing S1->S2 fare")
		}
	}

	reverse := findFare(t, plan.Pending, "S2", "S1")
	if reverse.Prices.IsZero() {
		t.Error("S2->S1 should be generated with non-zero prices")
	}
	if !existing[0].Prices.IsZero() {
		t.Error("existing fare was modified")
	}
}

func TestGenerateCoverageAndIdempotence(t *testing.T) {
	line := topology.MustLine([]string{"a", "b", "c", "d", "e"})
	stations := activeStations("a", "b", "c", "d", "e", "x", "y")
	stations[2].Active = false // c
	route := topology.Resolve(stations, line)
	n := len(route)

	g := newTestGenerator()
	first := g.Generate(route, nil)
	if len(first.Pending) != n*(n-1) {
		t.Fatalf("first run produced %d fares, want %d", len(first.Pending), n*(n-1))
	}

	second := g.Generate(route, first.Pending)
	if len(second.Pending) != 0 {
		t.Errorf("second run produced %d fares, want 0", len(second.Pending))
	}
	if second.SkippedExisting != n*(n-1) {
		t.Errorf("second run skipped %d, want %d", second.SkippedExisting, n*(n-1))
	}

	if missing := g.MissingPairs(route, first.Pending); len(missing) != 0 {
		t.Errorf("MissingPairs() after full run = %v", missing)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	line := topology.MustLine([]string{"a", "b", "c"})
	route := topology.Resolve(activeStations("c", "ext", "a", "b"), line)
	existing := []models.FareRecord{{OriginID: "b", DestinationID: "a"}}

	g := newTestGenerator()
	first := g.Generate(route, existing)
	second := g.Generate(route, existing)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two runs over the same input differ")
	}

	// pending order follows route order, origin first
	want := g.MissingPairs(route, existing)
	for i, f := range first.Pending {
		if f.Key() != want[i] {
			t.Fatalf("Pending[%d] = %s, want %s", i, f.Key(), want[i])
		}
	}
	if first.Pending[0].Key().String() != "a->b" {
		t.Errorf("first pending pair = %s, want a->b", first.Pending[0].Key())
	}
}

func TestGenerateDistanceMonotonic(t *testing.T) {
	ids := []string{"s0", "s1", "s2", "s3", "s4", "s5"}
	line := topology.MustLine(ids)
	route := topology.Resolve(activeStations(ids...), line)
	plan := newTestGenerator().Generate(route, nil)

	regular := func(a, b string) int {
		return findFare(t, plan.Pending, a, b).Prices.Regular.Domestic
	}

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			for k := j + 1; k < len(ids); k++ {
				a, b, c := ids[i], ids[j], ids[k]
				if regular(a, c) < regular(a, b) || regular(a, c) < regular(b, c) {
					t.Errorf("price(%s,%s)=%d is below a shorter leg (%d, %d)",
						a, c, regular(a, c), regular(a, b), regular(b, c))
				}
			}
		}
	}
}

func TestGenerateSmallTopologies(t *testing.T) {
	line := topology.MustLine([]string{"a"})
	g := newTestGenerator()

	if plan := g.Generate(nil, nil); len(plan.Pending) != 0 {
		t.Errorf("empty route produced %d fares", len(plan.Pending))
	}
	route := topology.Resolve(activeStations("a"), line)
	if plan := g.Generate(route, nil); len(plan.Pending) != 0 {
		t.Errorf("single station produced %d fares", len(plan.Pending))
	}
}

type hopsOnly struct{}

func (hopsOnly) BasePrice(origin, destination topology.Node) int { return 10 }

func TestGeneratorUsesPolicy(t *testing.T) {
	line := topology.MustLine([]string{"a", "b"})
	route := topology.Resolve(activeStations("a", "b"), line)

	g := newTestGenerator()
	g.Policy = hopsOnly{}
	plan := g.Generate(route, nil)
	if got := plan.Pending[0].Prices.PremiumLower.Foreign; got != 30 {
		t.Errorf("premium lower foreign with base 10 = %d, want 30", got)
	}
}

func TestOrphans(t *testing.T) {
	stations := activeStations("a", "b")
	stations[1].Active = false
	existing := []models.FareRecord{
		{OriginID: "a", DestinationID: "b"},    // inactive but known
		{OriginID: "a", DestinationID: "gone"}, // deleted station
	}

	orphans := Orphans(stations, existing)
	if len(orphans) != 1 || orphans[0].DestinationID != "gone" {
		t.Errorf("Orphans() = %v, want only a->gone", orphans)
	}
}
