package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/rail-console/fares/internal/app"
	"github.com/rail-console/fares/internal/farecsv"
)

func main() {
	input := flag.String("input", "", "CSV file to read (required)")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	app.LoadEnv()
	ctx := context.Background()

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *input, err)
	}
	defer f.Close()

	rows, err := farecsv.Decode(f)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *input, err)
	}

	a, err := app.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	res, err := farecsv.Import(ctx, a.Store, a.Store, rows)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	if res.Failed > 0 {
		a.Close()
		os.Exit(1)
	}
}
