package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultCurrency is the single unit every fare is priced in
const DefaultCurrency = "ETB"

// SeatClass is a seat tier, with its berth level where the tier has one
type SeatClass int

const (
	Regular SeatClass = iota
	SleeperLower
	SleeperMiddle
	SleeperUpper
	PremiumLower
	PremiumUpper
)

// SeatClasses lists every seat class in display order
var SeatClasses = []SeatClass{Regular, SleeperLower, SleeperMiddle, SleeperUpper, PremiumLower, PremiumUpper}

func (c SeatClass) String() string {
	switch c {
	case Regular:
		return "regular"
	case SleeperLower:
		return "sleeper_lower"
	case SleeperMiddle:
		return "sleeper_middle"
	case SleeperUpper:
		return "sleeper_upper"
	case PremiumLower:
		return "premium_lower"
	case PremiumUpper:
		return "premium_upper"
	default:
		return fmt.Sprintf("seat_class(%d)", int(c))
	}
}

// Nationality is the passenger pricing class
type Nationality int

const (
	Domestic Nationality = iota
	RegionalNeighbor
	Foreign
)

// Nationalities lists every nationality class in display order
var Nationalities = []Nationality{Domestic, RegionalNeighbor, Foreign}

func (n Nationality) String() string {
	switch n {
	case Domestic:
		return "domestic"
	case RegionalNeighbor:
		return "regional"
	case Foreign:
		return "foreign"
	default:
		return fmt.Sprintf("nationality(%d)", int(n))
	}
}

// NationalityPrices holds one seat class priced for each nationality
type NationalityPrices struct {
	Domestic int `json:"domestic" bson:"domestic" csv:"domestic"`
	Regional int `json:"regional" bson:"regional" csv:"regional"`
	Foreign  int `json:"foreign" bson:"foreign" csv:"foreign"`
}

// FarePrices holds the 18 price fields of a fare
type FarePrices struct {
	Regular       NationalityPrices `json:"regular" bson:"regular" csv:"regular_,inline"`
	SleeperLower  NationalityPrices `json:"sleeperLower" bson:"sleeper_lower" csv:"sleeper_lower_,inline"`
	SleeperMiddle NationalityPrices `json:"sleeperMiddle" bson:"sleeper_middle" csv:"sleeper_middle_,inline"`
	SleeperUpper  NationalityPrices `json:"sleeperUpper" bson:"sleeper_upper" csv:"sleeper_upper_,inline"`
	PremiumLower  NationalityPrices `json:"premiumLower" bson:"premium_lower" csv:"premium_lower_,inline"`
	PremiumUpper  NationalityPrices `json:"premiumUpper" bson:"premium_upper" csv:"premium_upper_,inline"`
}

func (p *FarePrices) class(c SeatClass) *NationalityPrices {
	switch c {
	case Regular:
		return &p.Regular
	case SleeperLower:
		return &p.SleeperLower
	case SleeperMiddle:
		return &p.SleeperMiddle
	case SleeperUpper:
		return &p.SleeperUpper
	case PremiumLower:
		return &p.PremiumLower
	case PremiumUpper:
		return &p.PremiumUpper
	default:
		return nil
	}
}

func (np *NationalityPrices) field(n Nationality) *int {
	switch n {
	case Domestic:
		return &np.Domestic
	case RegionalNeighbor:
		return &np.Regional
	case Foreign:
		return &np.Foreign
	default:
		return nil
	}
}

// Get returns one price, or 0 for an unknown class/nationality
func (p FarePrices) Get(c SeatClass, n Nationality) int {
	row := p.class(c)
	if row == nil {
		return 0
	}
	if f := row.field(n); f != nil {
		return *f
	}
	return 0
}

// Set stores one price. Unknown class/nationality values are ignored.
func (p *FarePrices) Set(c SeatClass, n Nationality, value int) {
	row := p.class(c)
	if row == nil {
		return
	}
	if f := row.field(n); f != nil {
		*f = value
	}
}

// Values returns the 18 prices in seat class, then nationality order
func (p FarePrices) Values() []int {
	values := make([]int, 0, len(SeatClasses)*len(Nationalities))
	for _, c := range SeatClasses {
		for _, n := range Nationalities {
			values = append(values, p.Get(c, n))
		}
	}
	return values
}

// PricesFromValues is the inverse of Values. Missing trailing values are zero.
func PricesFromValues(values []int) FarePrices {
	var p FarePrices
	i := 0
	for _, c := range SeatClasses {
		for _, n := range Nationalities {
			if i < len(values) {
				p.Set(c, n, values[i])
			}
			i++
		}
	}
	return p
}

// PriceColumns names each price as <class>_<nationality>, in Values order.
// Every table-shaped backend and the CSV codec use these names.
func PriceColumns() []string {
	cols := make([]string, 0, len(SeatClasses)*len(Nationalities))
	for _, c := range SeatClasses {
		for _, n := range Nationalities {
			cols = append(cols, c.String()+"_"+n.String())
		}
	}
	return cols
}

// IsZero reports whether every price is zero
func (p FarePrices) IsZero() bool {
	for _, v := range p.Values() {
		if v != 0 {
			return false
		}
	}
	return true
}

// RouteKey identifies a directional fare. (A, B) and (B, A) are different keys.
type RouteKey struct {
	OriginID      string `json:"originId"`
	DestinationID string `json:"destinationId"`
}

func (k RouteKey) String() string {
	return k.OriginID + "->" + k.DestinationID
}

// FareRecord is the price list for travelling from one station to another
type FareRecord struct {
	ID              string     `json:"id" bson:"_id"`
	OriginID        string     `json:"originId" bson:"origin_id"`
	OriginName      string     `json:"originName" bson:"origin_name"`
	DestinationID   string     `json:"destinationId" bson:"destination_id"`
	DestinationName string     `json:"destinationName" bson:"destination_name"`
	Prices          FarePrices `json:"prices" bson:"prices"`
	Currency        string     `json:"currency" bson:"currency"`
	CreatedAt       time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updated_at"`
}

// Key returns the ordered route pair of the fare
func (f *FareRecord) Key() RouteKey {
	return RouteKey{OriginID: f.OriginID, DestinationID: f.DestinationID}
}

// Validate checks a fare written through the authoring path
func (f *FareRecord) Validate() error {
	if strings.TrimSpace(f.OriginID) == "" {
		return invalid("origin station is required")
	}
	if strings.TrimSpace(f.DestinationID) == "" {
		return invalid("destination station is required")
	}
	if f.OriginID == f.DestinationID {
		return invalid("origin and destination cannot be the same")
	}

	for _, c := range SeatClasses {
		for _, n := range Nationalities {
			if f.Prices.Get(c, n) < 0 {
				return invalid("price %s/%s cannot be negative", c, n)
			}
		}
	}

	if f.Prices.IsZero() {
		return invalid("at least one price must be provided")
	}
	return nil
}
