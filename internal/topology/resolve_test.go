package topology

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rail-console/fares/internal/models"
)

func station(id string, active bool) models.Station {
	return models.Station{ID: id, Name: id, Active: active}
}

func ids(nodes []Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID())
	}
	return out
}

func TestNewLineRejectsDuplicates(t *testing.T) {
	_, err := NewLine([]string{"s1", "s2", "s1"})
	if !errors.Is(err, ErrDuplicateStation) {
		t.Fatalf("NewLine() error = %v, want ErrDuplicateStation", err)
	}

	if _, err := NewLine([]string{"s1", ""}); err == nil {
		t.Fatal("NewLine() should reject an empty id")
	}

	line, err := NewLine([]string{"s1", "s2", "s3"})
	if err != nil {
		t.Fatalf("NewLine() error = %v", err)
	}
	if i, ok := line.Index("s3"); !ok || i != 2 {
		t.Errorf("Index(s3) = %d, %v; want 2, true", i, ok)
	}
	if _, ok := line.Index("s9"); ok {
		t.Error("Index(s9) should not be on the line")
	}
}

func TestResolve(t *testing.T) {
	line := MustLine([]string{"s1", "s2", "s3", "s4"})

	tests := []struct {
		name     string
		stations []models.Station
		want     []string
	}{
		{
			name:     "empty",
			stations: nil,
			want:     []string{},
		},
		{
			name: "canonical order wins over input order",
			stations: []models.Station{
				station("s3", true), station("s1", true), station("s2", true),
			},
			want: []string{"s1", "s2", "s3"},
		},
		{
			name: "inactive stations are dropped",
			stations: []models.Station{
				station("s1", true), station("s2", false), station("x", false), station("s4", true),
			},
			want: []string{"s1", "s4"},
		},
		{
			name: "extension stations follow in input order",
			stations: []models.Station{
				station("zeta", true), station("s2", true), station("alpha", true), station("s1", true),
			},
			want: []string{"s1", "s2", "zeta", "alpha"},
		},
		{
			name: "repeated ids appear once",
			stations: []models.Station{
				station("s1", true), station("x", true), station("s1", true), station("x", true),
			},
			want: []string{"s1", "x"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Resolve(tc.stations, line))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Resolve() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResolveLineIndex(t *testing.T) {
	line := MustLine([]string{"s1", "s2", "s3"})
	nodes := Resolve([]models.Station{
		station("s1", true), station("s2", false), station("s3", true), station("ext", true),
	}, line)

	if len(nodes) != 3 {
		t.Fatalf("Resolve() returned %d nodes, want 3", len(nodes))
	}

	// s3 keeps its canonical position even though s2 is inactive
	if !nodes[1].OnLine || nodes[1].LineIndex != 2 {
		t.Errorf("s3 node = %+v, want OnLine with LineIndex 2", nodes[1])
	}
	if nodes[2].OnLine {
		t.Errorf("extension node %q should not be on the line", nodes[2].ID())
	}
}
