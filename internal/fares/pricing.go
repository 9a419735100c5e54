package fares

import (
	"math"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/topology"
)

// DistancePolicy prices the base fare of one ordered station pair
type DistancePolicy interface {
	BasePrice(origin, destination topology.Node) int
}

// LinePolicy charges by hops along the canonical line.
// Pairs touching an extension station get the Flat price.
type LinePolicy struct {
	Boarding int // charged once per trip
	PerHop   int // charged per station travelled along the line
	Flat     int // used when either end is off the line
}

// DefaultPolicy is 50 + 50 per hop on the line, 100 otherwise
var DefaultPolicy = LinePolicy{Boarding: 50, PerHop: 50, Flat: 100}

func (p LinePolicy) BasePrice(origin, destination topology.Node) int {
	if !origin.OnLine || !destination.OnLine {
		return p.Flat
	}
	hops := destination.LineIndex - origin.LineIndex
	if hops < 0 {
		hops = -hops
	}
	return p.Boarding + p.PerHop*hops
}

// Multipliers scales a base price into each seat class and nationality.
// The price for (class, nationality) is round(base * Class[class] * Nationality[nationality]),
// rounded per field.
type Multipliers struct {
	Class       map[models.SeatClass]float64
	Nationality map[models.Nationality]float64
}

// DefaultMultipliers is the fixed fare table of the network
var DefaultMultipliers = Multipliers{
	Class: map[models.SeatClass]float64{
		models.Regular:       1.0,
		models.SleeperLower:  1.2,
		models.SleeperMiddle: 1.1,
		models.SleeperUpper:  1.0,
		models.PremiumLower:  1.5,
		models.PremiumUpper:  1.3,
	},
	Nationality: map[models.Nationality]float64{
		models.Domestic:         1.0,
		models.RegionalNeighbor: 1.5,
		models.Foreign:          2.0,
	},
}

// Derive computes all 18 prices from a base price
func (m Multipliers) Derive(base int) models.FarePrices {
	var prices models.FarePrices
	for _, c := range models.SeatClasses {
		for _, n := range models.Nationalities {
			v := float64(base) * m.Class[c] * m.Nationality[n]
			prices.Set(c, n, int(math.Round(v)))
		}
	}
	return prices
}
