package farecsv

import (
	"context"
	"errors"
	"log"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
)

// ImportResult counts the outcome of an Import
type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Import inserts every fare whose pair has no fare yet. Existing fares are
// never overwritten. Blank station names are filled from src.
func Import(ctx context.Context, src store.StationSource, dst store.FareStore, fares []models.FareRecord) (ImportResult, error) {
	all, err := src.ListStations(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	names := make(map[string]string, len(all))
	for _, s := range all {
		names[s.ID] = s.Name
	}

	var res ImportResult
	for _, fare := range fares {
		// the target store assigns ids
		fare.ID = ""
		if fare.OriginName == "" {
			fare.OriginName = names[fare.OriginID]
		}
		if fare.DestinationName == "" {
			fare.DestinationName = names[fare.DestinationID]
		}

		if _, err := dst.InsertFare(ctx, fare); err != nil {
			if errors.Is(err, store.ErrConflict) {
				res.Skipped++
				continue
			}
			log.Printf("Warning: failed to import %s: %v", fare.Key(), err)
			res.Failed++
			continue
		}
		res.Created++
	}

	log.Printf("Import complete: %d created, %d already priced, %d failed", res.Created, res.Skipped, res.Failed)
	return res, nil
}
