package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rail-console/fares/internal/topology"
)

// LineStation is one stop of the canonical line file
type LineStation struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LineConfig is the canonical line as read from LINE_CONFIG
type LineConfig struct {
	Name     string        `yaml:"name"`
	Stations []LineStation `yaml:"stations"`
}

// DefaultLine is the Addis Ababa - Dire Dawa line in track order
var DefaultLine = LineConfig{
	Name: "addis-djibouti",
	Stations: []LineStation{
		{ID: "sebeta-station", Name: "Sebeta"},
		{ID: "lebu-station", Name: "Lebu"},
		{ID: "bishoftu-station", Name: "Bishoftu"},
		{ID: "mojo-station", Name: "Mojo"},
		{ID: "adama-station", Name: "Adama"},
		{ID: "bike-station", Name: "Bike"},
		{ID: "mieso-station", Name: "Mieso"},
		{ID: "dire-dawa-station", Name: "Dire Dawa"},
	},
}

// LoadLine reads the canonical line file, or returns DefaultLine when
// path is empty
func LoadLine(path string) (*LineConfig, error) {
	if path == "" {
		line := DefaultLine
		return &line, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read line config: %w", err)
	}

	var line LineConfig
	if err := yaml.Unmarshal(data, &line); err != nil {
		return nil, fmt.Errorf("failed to unmarshal line config: %w", err)
	}
	if len(line.Stations) == 0 {
		return nil, fmt.Errorf("line config %s lists no stations", path)
	}

	log.Printf("Loaded canonical line %q (%d stations) from %s", line.Name, len(line.Stations), path)
	return &line, nil
}

// IDs returns the station IDs in track order
func (c *LineConfig) IDs() []string {
	ids := make([]string, 0, len(c.Stations))
	for _, s := range c.Stations {
		ids = append(ids, s.ID)
	}
	return ids
}

// Topology validates the line and builds its topology.Line
func (c *LineConfig) Topology() (topology.Line, error) {
	return topology.NewLine(c.IDs())
}
