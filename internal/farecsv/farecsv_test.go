package farecsv

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
)

func sampleFare() models.FareRecord {
	f := models.FareRecord{
		ID:              "fare-1",
		OriginID:        "adama-station",
		OriginName:      "Adama",
		DestinationID:   "bike-station",
		DestinationName: "Bike",
		Currency:        "ETB",
		CreatedAt:       time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC),
	}
	f.Prices.Set(models.Regular, models.Domestic, 100)
	f.Prices.Set(models.SleeperMiddle, models.RegionalNeighbor, 165)
	f.Prices.Set(models.PremiumUpper, models.Foreign, 260)
	return f
}

func TestEncodeHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	header := strings.TrimSpace(buf.String())
	cols := strings.Split(header, ",")
	if len(cols) != 5+18+3 {
		t.Fatalf("header has %d columns, want 26: %s", len(cols), header)
	}
	// same columns, same order as the SQL tables
	if want := strings.Join(store.FareColumns(), ","); header != want {
		t.Errorf("header = %s\nwant     %s", header, want)
	}
}

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, []models.FareRecord{sampleFare()}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Decode() returned %d fares, want 1", len(got))
	}

	want := sampleFare()
	if got[0].Prices != want.Prices {
		t.Errorf("prices = %+v, want %+v", got[0].Prices, want.Prices)
	}
	if got[0].Key() != want.Key() || !got[0].UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("fare = %+v", got[0])
	}
}

func TestDecodePartialSheet(t *testing.T) {
	// hand-written sheets may omit ids, timestamps and currency
	in := "origin_id,destination_id,regular_domestic,regular_foreign\n" +
		"s1,s2,150,300\n"

	got, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Decode() returned %d fares", len(got))
	}
	f := got[0]
	if f.Currency != models.DefaultCurrency {
		t.Errorf("Currency = %q, want default", f.Currency)
	}
	if f.Prices.Get(models.Regular, models.Foreign) != 300 || f.Prices.Get(models.SleeperLower, models.Domestic) != 0 {
		t.Errorf("prices = %+v", f.Prices)
	}
	if !f.CreatedAt.IsZero() || f.ID != "" {
		t.Errorf("blank cells should stay zero: %+v", f)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"same origin and destination", "origin_id,destination_id,regular_domestic\ns1,s1,100\n"},
		{"negative price", "origin_id,destination_id,regular_domestic\ns1,s2,-5\n"},
		{"no prices", "origin_id,destination_id,regular_domestic\ns1,s2,0\n"},
		{"bad timestamp", "origin_id,destination_id,regular_domestic,created_at\ns1,s2,100,yesterday\n"},
		{"bad number", "origin_id,destination_id,regular_domestic\ns1,s2,cheap\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.in)); err == nil {
				t.Error("Decode() should fail")
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	got, err := Decode(strings.NewReader(""))
	if err != nil || len(got) != 0 {
		t.Errorf("Decode(empty) = %v, %v", got, err)
	}
}
