package topology

import "github.com/rail-console/fares/internal/models"

// Node is a station placed in the resolved route order
type Node struct {
	Station models.Station `json:"station"`
	// LineIndex is the station's position on the canonical line.
	// Only meaningful when OnLine is true.
	LineIndex int  `json:"lineIndex"`
	OnLine    bool `json:"onLine"`
}

// ID is shorthand for the station ID
func (n Node) ID() string {
	return n.Station.ID
}

// Resolve orders the active stations for fare generation.
//
// Stations on the canonical line come first, in track order. Active
// stations that are not on the line follow in the order they were given.
// Inactive stations and repeated IDs are dropped.
func Resolve(stations []models.Station, line Line) []Node {
	byID := make(map[string]models.Station, len(stations))
	for _, s := range stations {
		if !s.Active {
			continue
		}
		if _, seen := byID[s.ID]; !seen {
			byID[s.ID] = s
		}
	}

	nodes := make([]Node, 0, len(byID))
	placed := make(map[string]bool, len(byID))

	for i, id := range line.ids {
		s, ok := byID[id]
		if !ok {
			continue
		}
		nodes = append(nodes, Node{Station: s, LineIndex: i, OnLine: true})
		placed[id] = true
	}

	for _, s := range stations {
		if !s.Active || placed[s.ID] {
			continue
		}
		nodes = append(nodes, Node{Station: s})
		placed[s.ID] = true
	}

	return nodes
}
