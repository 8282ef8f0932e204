package inventory

import "strings"

// Filters treat an empty criterion as unset: it matches everything. Free-text
// criteria are case-insensitive substring matches; states match exactly
// (ignoring case), so "enabled" does not select "enabledSwitched".

// ServerFilter selects servers by name, address and version.
type ServerFilter struct {
	Name    string
	IP      string
	Version string
}

// Match reports whether s satisfies every set criterion.
func (f ServerFilter) Match(s *Server) bool {
	return contains(s.Name, f.Name) &&
		contains(s.IPAddress, f.IP) &&
		contains(s.Version, f.Version)
}

// ScopeFilter selects scopes by name, network address and state.
type ScopeFilter struct {
	Name  string
	IP    string
	State string
}

// Match reports whether s satisfies every set criterion.
func (f ScopeFilter) Match(s *Scope) bool {
	return contains(s.Name, f.Name) &&
		contains(s.IPAddress, f.IP) &&
		exact(string(s.State), f.State)
}

// ClientFilter selects clients by name, address, MAC and address state.
type ClientFilter struct {
	Name  string
	IP    string
	MAC   string
	State string
}

// Match reports whether c satisfies every set criterion.
func (f ClientFilter) Match(c *Client) bool {
	return contains(c.Name, f.Name) &&
		contains(c.IPAddress, f.IP) &&
		containsMAC(c.MACAddress, f.MAC) &&
		exact(string(c.AddressState), f.State)
}

// ReservationFilter selects reservations by address and MAC.
type ReservationFilter struct {
	IP  string
	MAC string
}

// Match reports whether r satisfies every set criterion.
func (f ReservationFilter) Match(r *Reservation) bool {
	return contains(r.IPAddress, f.IP) &&
		containsMAC(r.MACAddress, f.MAC)
}

// FilterServers returns the servers matching f in snapshot order.
func FilterServers(items []Server, f ServerFilter) []Server {
	return filter(items, f.Match)
}

// FilterScopes returns the scopes matching f in snapshot order.
func FilterScopes(items []Scope, f ScopeFilter) []Scope {
	return filter(items, f.Match)
}

// FilterClients returns the clients matching f in snapshot order.
func FilterClients(items []Client, f ClientFilter) []Client {
	return filter(items, f.Match)
}

// FilterReservations returns the reservations matching f in snapshot order.
func FilterReservations(items []Reservation, f ReservationFilter) []Reservation {
	return filter(items, f.Match)
}

// filter keeps matching items in their original order. The result is never
// nil so an empty match renders as an empty collection.
func filter[T any](items []T, match func(*T) bool) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

func contains(field, criterion string) bool {
	criterion = NormalizeName(criterion)
	if criterion == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), criterion)
}

func containsMAC(field, criterion string) bool {
	criterion = NormalizeMAC(criterion)
	if criterion == "" {
		return true
	}
	return strings.Contains(NormalizeMAC(field), criterion)
}

func exact(field, criterion string) bool {
	if strings.TrimSpace(criterion) == "" {
		return true
	}
	return NamesEqual(field, criterion)
}
