package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rail-console/fares/internal/app"
	"github.com/rail-console/fares/internal/cache"
	"github.com/rail-console/fares/internal/handlers"
)

func main() {
	app.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	c := cache.New(a.Config.CacheTTL)
	router := handlers.Router{
		Health:      handlers.NewHealthHandler(a.Store, a.Config.StoreDriver),
		Stations:    handlers.NewStationHandler(a.Store, c),
		Fares:       handlers.NewFareHandler(a.Runner, a.Store, a.Store, c),
		CORSOrigins: a.Config.CORSOrigins,
	}

	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("API server starting on :%s", a.Config.Port)
	handlers.LogRoutes()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed to start: %v", err)
	}
	log.Println("Goodbye!")
}
