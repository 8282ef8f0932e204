package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maksimkurb/keen-dhcp/src/internal/hal"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
)

// NewRouter creates a new HTTP router with all API endpoints.
func NewRouter(provider inventory.Provider, publicURL string) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestID)
	r.Use(Recovery(publicURL))
	r.Use(Logger)
	r.Use(CORS)

	h := NewHandler(provider, publicURL)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get(hal.RouteRoot, h.GetRoot)
	r.Get(hal.RouteServers, h.ListServers)
	r.Get(hal.RouteServer, h.GetServer)
	r.Get(hal.RouteScopes, h.ListScopes)
	r.Get(hal.RouteScope, h.GetScope)
	r.Get(hal.RouteClients, h.ListClients)
	r.Get(hal.RouteClient, h.GetClient)
	r.Get(hal.RouteReservations, h.ListReservations)
	r.Get(hal.RouteReservation, h.GetReservation)

	// Liveness probe, outside the hypermedia graph
	r.Get("/health", h.CheckHealth)

	return r
}
