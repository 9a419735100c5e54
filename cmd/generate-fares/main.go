package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rail-console/fares/internal/app"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "List the missing route pairs without writing fares")
	flag.Parse()

	app.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *dryRun {
		pairs, err := a.Runner.MissingPairs(ctx)
		if err != nil {
			log.Fatalf("Failed to compute missing pairs: %v", err)
		}
		log.Printf("%d route pairs have no fare", len(pairs))
		if err := enc.Encode(pairs); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		return
	}

	summary, runErr := a.Runner.GenerateAllRoutes(ctx)
	if err := enc.Encode(summary); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	if runErr != nil {
		log.Printf("Fare generation failed: %v", runErr)
	}
	if runErr != nil || summary.Failed > 0 {
		a.Close()
		os.Exit(1)
	}
}
