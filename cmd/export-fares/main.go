package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"github.com/rail-console/fares/internal/app"
	"github.com/rail-console/fares/internal/farecsv"
)

func main() {
	output := flag.String("output", "", "CSV file to write (default stdout)")
	flag.Parse()

	app.LoadEnv()
	ctx := context.Background()

	a, err := app.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	all, err := a.Store.ListFares(ctx)
	if err != nil {
		log.Fatalf("Failed to list fares: %v", err)
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *output, err)
		}
		defer f.Close()
		w = f
	}

	if err := farecsv.Encode(w, all); err != nil {
		log.Fatalf("Failed to export fares: %v", err)
	}
	log.Printf("Exported %d fares", len(all))
}
