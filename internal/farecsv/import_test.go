package farecsv

import (
	"context"
	"strings"
	"testing"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
)

func TestImport(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	m.UpsertStation(ctx, models.Station{ID: "s1", Name: "First", Active: true})
	m.UpsertStation(ctx, models.Station{ID: "s2", Name: "Second", Active: true})

	existing := models.FareRecord{OriginID: "s1", DestinationID: "s2", Currency: "ETB"}
	existing.Prices.Regular.Domestic = 1
	if _, err := m.InsertFare(ctx, existing); err != nil {
		t.Fatal(err)
	}

	in := "id,origin_id,destination_id,regular_domestic\n" +
		"old-id,s1,s2,500\n" +
		"old-id-2,s2,s1,500\n"
	rows, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}

	res, err := Import(ctx, m, m, rows)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Created != 1 || res.Skipped != 1 || res.Failed != 0 {
		t.Errorf("Import() = %+v", res)
	}

	all, _ := m.ListFares(ctx)
	if len(all) != 2 {
		t.Fatalf("store holds %d fares, want 2", len(all))
	}
	if all[0].Prices.Regular.Domestic != 1 {
		t.Error("import overwrote an existing fare")
	}
	if all[1].ID == "old-id-2" || all[1].OriginName != "Second" || all[1].DestinationName != "First" {
		t.Errorf("imported fare = %+v", all[1])
	}
}
