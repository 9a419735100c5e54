package fares

import (
	"time"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/topology"
)

// Generator fills in fares for route pairs that have none.
// It never changes or removes an existing fare.
type Generator struct {
	Policy      DistancePolicy
	Multipliers Multipliers
	Currency    string
	Now         func() time.Time
}

// NewGenerator returns a generator using the network's default pricing
func NewGenerator(currency string) *Generator {
	if currency == "" {
		currency = models.DefaultCurrency
	}
	return &Generator{
		Policy:      DefaultPolicy,
		Multipliers: DefaultMultipliers,
		Currency:    currency,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// Plan is the outcome of a generation pass before anything is written
type Plan struct {
	Pending         []models.FareRecord
	SkippedExisting int
}

// Generate synthesizes a fare for every ordered pair of distinct stations
// in route that has no fare in existing. Pairs are visited in route order,
// origin first. A pair counts as covered as soon as a fare exists for its
// key, whatever that fare's prices are.
func (g *Generator) Generate(route []topology.Node, existing []models.FareRecord) Plan {
	covered := coveredKeys(existing)
	now := g.Now()

	var plan Plan
	for _, origin := range route {
		for _, dest := range route {
			if origin.ID() == dest.ID() {
				continue
			}
			key := models.RouteKey{OriginID: origin.ID(), DestinationID: dest.ID()}
			if covered[key] {
				plan.SkippedExisting++
				continue
			}
			plan.Pending = append(plan.Pending, g.Synthesize(origin, dest, now))
		}
	}
	return plan
}

// Synthesize builds the derived fare for one pair
func (g *Generator) Synthesize(origin, dest topology.Node, at time.Time) models.FareRecord {
	base := g.Policy.BasePrice(origin, dest)
	return models.FareRecord{
		OriginID:        origin.ID(),
		OriginName:      origin.Station.Name,
		DestinationID:   dest.ID(),
		DestinationName: dest.Station.Name,
		Prices:          g.Multipliers.Derive(base),
		Currency:        g.Currency,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}

// MissingPairs lists the route pairs that have no fare yet, in the order
// Generate would create them
func (g *Generator) MissingPairs(route []topology.Node, existing []models.FareRecord) []models.RouteKey {
	covered := coveredKeys(existing)

	var missing []models.RouteKey
	for _, origin := range route {
		for _, dest := range route {
			if origin.ID() == dest.ID() {
				continue
			}
			key := models.RouteKey{OriginID: origin.ID(), DestinationID: dest.ID()}
			if !covered[key] {
				missing = append(missing, key)
			}
		}
	}
	return missing
}

// Orphans returns the keys of fares whose origin or destination is not a
// known station. Such fares are reported, never removed.
func Orphans(stations []models.Station, existing []models.FareRecord) []models.RouteKey {
	known := make(map[string]bool, len(stations))
	for _, s := range stations {
		known[s.ID] = true
	}

	var orphans []models.RouteKey
	for _, f := range existing {
		if !known[f.OriginID] || !known[f.DestinationID] {
			orphans = append(orphans, f.Key())
		}
	}
	return orphans
}

func coveredKeys(existing []models.FareRecord) map[models.RouteKey]bool {
	covered := make(map[models.RouteKey]bool, len(existing))
	for _, f := range existing {
		covered[f.Key()] = true
	}
	return covered
}
