package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router wires the handlers to their routes
type Router struct {
	Health      *HealthHandler
	Stations    *StationHandler
	Fares       *FareHandler
	CORSOrigins []string
}

// Handler builds the chi router for the admin API
func (rt Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", rt.Health.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/route", rt.Fares.GetRoute)

		r.Route("/stations", func(r chi.Router) {
			r.Get("/", rt.Stations.ListStations)
			r.Post("/", rt.Stations.CreateStation)
			r.Put("/{stationId}", rt.Stations.UpdateStation)
			r.Post("/{stationId}/toggle", rt.Stations.ToggleStation)
		})

		r.Route("/fares", func(r chi.Router) {
			r.Get("/", rt.Fares.ListFares)
			r.Post("/", rt.Fares.CreateFare)
			r.Get("/missing", rt.Fares.GetMissing)
			r.Get("/coverage", rt.Fares.GetCoverage)
			r.Post("/generate", rt.Fares.Generate)
			r.Get("/{fareId}", rt.Fares.GetFare)
			r.Put("/{fareId}", rt.Fares.UpdateFare)
			r.Delete("/{fareId}", rt.Fares.DeleteFare)
		})
	})

	return r
}

// LogRoutes prints the mounted endpoints
func LogRoutes() {
	log.Println("Station endpoints:")
	log.Println("  GET  /api/route")
	log.Println("  GET  /api/stations")
	log.Println("  POST /api/stations")
	log.Println("  PUT  /api/stations/{stationId}")
	log.Println("  POST /api/stations/{stationId}/toggle")
	log.Println("Fare endpoints:")
	log.Println("  GET  /api/fares?origin=&destination=")
	log.Println("  POST /api/fares")
	log.Println("  GET  /api/fares/missing")
	log.Println("  GET  /api/fares/coverage")
	log.Println("  POST /api/fares/generate")
	log.Println("  GET|PUT|DELETE /api/fares/{fareId}")
	log.Println("Health:")
	log.Println("  GET  /health (with store check)")
}
