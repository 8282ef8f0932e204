package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/maksimkurb/keen-dhcp/src/internal/hal"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
)

// Handler serves the inventory endpoints.
type Handler struct {
	provider  inventory.Provider
	publicURL string
}

// NewHandler creates a handler that reads snapshots from provider and renders
// links under publicURL (or the request's own origin when empty).
func NewHandler(provider inventory.Provider, publicURL string) *Handler {
	return &Handler{
		provider:  provider,
		publicURL: publicURL,
	}
}

// request is the per-request view: one snapshot, one resolver, one assembler.
type request struct {
	base     string
	resolver *inventory.Resolver
	asm      *hal.Assembler
}

// begin takes a snapshot for r. On failure it writes the 503 and returns nil.
func (h *Handler) begin(w http.ResponseWriter, r *http.Request) *request {
	base := requestBaseURL(r, h.publicURL)

	snap, err := h.provider.Snapshot(r.Context())
	if err != nil {
		log.Errorf("Failed to fetch inventory [%s]: %v", RequestIDFrom(r.Context()), err)
		WriteUnavailable(w, base, "Inventory is unavailable")
		return nil
	}

	return &request{
		base:     base,
		resolver: inventory.NewResolver(snap),
		asm:      hal.NewAssembler(hal.NewLinker(base)),
	}
}

// fail reports a resolve error. Only not-found errors are expected here.
func (rq *request) fail(w http.ResponseWriter, err error) {
	if nf, ok := inventory.AsNotFound(err); ok {
		WriteNotFound(w, rq.base, nf)
		return
	}
	WriteInternalError(w, rq.base, "Internal server error")
}

// GetRoot returns the API entry point.
// GET /
func (h *Handler) GetRoot(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if rq == nil {
		return
	}
	writeJSON(w, http.StatusOK, rq.asm.Root())
}

// ListServers returns all servers, optionally filtered.
// GET /servers?name=&ip=&version=
func (h *Handler) ListServers(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if rq == nil {
		return
	}
	q := r.URL.Query()
	servers := inventory.FilterServers(rq.resolver.Servers(), inventory.ServerFilter{
		Name:    q.Get("name"),
		IP:      q.Get("ip"),
		Version: q.Get("version"),
	})
	writeJSON(w, http.StatusOK, rq.asm.Servers(servers))
}

// GetServer returns a single server.
// GET /servers/{serverName}
func (h *Handler) GetServer(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if rq == nil {
		return
	}
	srv, err := rq.resolver.ResolveServer(pathParam(r, hal.ParamServer))
	if err != nil {
		rq.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rq.asm.Server(srv))
}

// ListScopes returns the scopes of a server.
// GET /servers/{serverName}/scopes?name=&ip=&state=
func (h *Handler) ListScopes(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if rq == nil {
		return
	}
	srv, scopes, err := rq.resolver.ListScopes(pathParam(r, hal.ParamServer))
	if err != nil {
		rq.fail(w, err)
		return
	}
	q := r.URL.Query()
	scopes = inventory.FilterScopes(scopes, inventory.ScopeFilter{
		Name:  q.Get("name"),
		IP:    q.Get("ip"),
		State: q.Get("state"),
	})
	writeJSON(w, http.StatusOK, rq.asm.Scopes(srv, scopes))
}

// GetScope returns a single scope.
// GET /servers/{serverName}/scopes/{scopeName}
func (h *Handler) GetScope(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if rq == nil {
		return
	}
	path, err := rq.resolver.ResolveScope(pathParam(r, hal.ParamServer), pathParam(r, hal.ParamScope))
	if err != nil {
		rq.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rq.asm.Scope(path))
}

// ListClients returns the clients of a scope.
// GET /servers/{serverName}/scopes/{scopeName}/clients?name=&ip=&mac=&state=
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if rq == nil {
		return
	}
	path, clients, err := rq.resolver.ListClients(pathParam(r, hal.ParamServer), pathParam(r, hal.ParamScope))
	if err != nil {
		rq.fail(w, err)
		return
	}
	q := r.URL.Query()
	clients = inventory.FilterClients(clients, inventory.ClientFilter{
		Name:  q.Get("name"),
		IP:    q.Get("ip"),
		MAC:   q.Get("mac"),
		State: q.Get("state"),
	})
	writeJSON(w, http.StatusOK, rq.asm.Clients(path, clients))
}

// GetClient returns a single client.
// GET /servers/{serverName}/scopes/{scopeName}/clients/{macAddress}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if rq == nil {
		return
	}
	path, client, err := rq.resolver.ResolveClient(
		pathParam(r, hal.ParamServer), pathParam(r, hal.ParamScope), pathParam(r, hal.ParamMAC))
	if err != nil {
		rq.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rq.asm.Client(path, client))
}

// ListReservations returns the reservations of a scope.
// GET /servers/{serverName}/scopes/{scopeName}/reservations?ip=&mac=
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if rq == nil {
		return
	}
	path, reservations, err := rq.resolver.ListReservations(pathParam(r, hal.ParamServer), pathParam(r, hal.ParamScope))
	if err != nil {
		rq.fail(w, err)
		return
	}
	q := r.URL.Query()
	reservations = inventory.FilterReservations(reservations, inventory.ReservationFilter{
		IP:  q.Get("ip"),
		MAC: q.Get("mac"),
	})
	writeJSON(w, http.StatusOK, rq.asm.Reservations(path, reservations))
}

// GetReservation returns a single reservation.
// GET /servers/{serverName}/scopes/{scopeName}/reservations/{macAddress}
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if rq == nil {
		return
	}
	path, res, err := rq.resolver.ResolveReservation(
		pathParam(r, hal.ParamServer), pathParam(r, hal.ParamScope), pathParam(r, hal.ParamMAC))
	if err != nil {
		rq.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rq.asm.Reservation(path, res))
}

// CheckHealth reports liveness.
// GET /health
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NotFound handles paths outside the route table.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, requestBaseURL(r, h.publicURL), http.StatusNotFound, "Resource '"+r.URL.Path+"' not found")
}

// MethodNotAllowed handles non-GET methods on known routes.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, OPTIONS")
	WriteError(w, requestBaseURL(r, h.publicURL), http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed")
}

// pathParam returns the decoded route parameter. chi hands out the escaped
// form when the request path contains escapes.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
