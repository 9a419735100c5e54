package models

import (
	"strings"
	"time"
)

// Station is a stop on the network as stored by the admin console.
// Inactive stations are left out of route generation, but fares that
// reference them are kept.
type Station struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Validate checks the fields an operator must provide
func (s *Station) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return invalid("station id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return invalid("station name is required")
	}
	return nil
}
