// Package farecsv reads and writes fare matrices as CSV, one row per
// route pair with a column per seat class and nationality.
package farecsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/rail-console/fares/internal/models"
)

// Row is the CSV shape of a fare. Timestamps are RFC 3339 strings so blank
// cells in hand-edited sheets decode cleanly.
type Row struct {
	ID              string            `csv:"id"`
	OriginID        string            `csv:"origin_id"`
	OriginName      string            `csv:"origin_name"`
	DestinationID   string            `csv:"destination_id"`
	DestinationName string            `csv:"destination_name"`
	Prices          models.FarePrices `csv:",inline"`
	Currency        string            `csv:"currency"`
	CreatedAt       string            `csv:"created_at,omitempty"`
	UpdatedAt       string            `csv:"updated_at,omitempty"`
}

// FromFare converts a stored fare to a CSV row
func FromFare(f models.FareRecord) Row {
	return Row{
		ID:              f.ID,
		OriginID:        f.OriginID,
		OriginName:      f.OriginName,
		DestinationID:   f.DestinationID,
		DestinationName: f.DestinationName,
		Prices:          f.Prices,
		Currency:        f.Currency,
		CreatedAt:       formatTime(f.CreatedAt),
		UpdatedAt:       formatTime(f.UpdatedAt),
	}
}

// Fare converts a CSV row back to a fare record
func (r Row) Fare() (models.FareRecord, error) {
	f := models.FareRecord{
		ID:              r.ID,
		OriginID:        r.OriginID,
		OriginName:      r.OriginName,
		DestinationID:   r.DestinationID,
		DestinationName: r.DestinationName,
		Prices:          r.Prices,
		Currency:        r.Currency,
	}
	if f.Currency == "" {
		f.Currency = models.DefaultCurrency
	}

	var err error
	if f.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return f, fmt.Errorf("invalid created_at %q: %w", r.CreatedAt, err)
	}
	if f.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return f, fmt.Errorf("invalid updated_at %q: %w", r.UpdatedAt, err)
	}
	return f, nil
}

// Encode writes the fares with a header row
func Encode(w io.Writer, fares []models.FareRecord) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(Row{}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, f := range fares {
		if err := enc.Encode(FromFare(f)); err != nil {
			return fmt.Errorf("failed to encode fare %s: %w", f.Key(), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Decode reads fares from CSV. Every row must name an origin and a
// destination; the header decides which other columns are present.
func Decode(r io.Reader) ([]models.FareRecord, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if err == io.EOF {
			return []models.FareRecord{}, nil
		}
		return nil, fmt.Errorf("failed to create CSV decoder for fares: %w", err)
	}

	var rows []Row
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode fare CSV data: %w", err)
	}

	fares := make([]models.FareRecord, 0, len(rows))
	for i, row := range rows {
		f, err := row.Fare()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		fares = append(fares, f)
	}

	log.Printf("Parsed %d fares from CSV", len(fares))
	return fares, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
