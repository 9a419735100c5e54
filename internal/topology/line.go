package topology

import (
	"errors"
	"fmt"
)

// ErrDuplicateStation is returned when a canonical line lists a station twice
var ErrDuplicateStation = errors.New("duplicate station in canonical line")

// Line is the fixed physical track order of the network's stations.
// Stations not on the line are extension stations.
type Line struct {
	ids   []string
	index map[string]int
}

// NewLine builds a Line from station IDs in track order.
// Duplicates are a configuration error and are never dropped silently.
func NewLine(ids []string) (Line, error) {
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		if id == "" {
			return Line{}, fmt.Errorf("canonical line has an empty station id at position %d", i)
		}
		if prev, ok := index[id]; ok {
			return Line{}, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateStation, id, prev, i)
		}
		index[id] = i
	}

	return Line{
		ids:   append([]string(nil), ids...),
		index: index,
	}, nil
}

// MustLine is NewLine for package-level defaults; it panics on error
func MustLine(ids []string) Line {
	line, err := NewLine(ids)
	if err != nil {
		panic(err)
	}
	return line
}

// Index returns the position of a station on the line
func (l Line) Index(id string) (int, bool) {
	i, ok := l.index[id]
	return i, ok
}

// IDs returns a copy of the station IDs in track order
func (l Line) IDs() []string {
	return append([]string(nil), l.ids...)
}

// Len returns the number of stations on the line
func (l Line) Len() int {
	return len(l.ids)
}
