package inventory

import (
	"fmt"
	"time"
)

// Snapshot is an immutable view of the whole inventory. Providers build a new
// one instead of modifying a snapshot that has been handed out.
type Snapshot struct {
	Servers   []Server  `json:"servers"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// FindClient returns the first client whose MAC matches mac, or nil.
func (s *Scope) FindClient(mac string) *Client {
	for i := range s.Clients {
		if MACEqual(s.Clients[i].MACAddress, mac) {
			return &s.Clients[i]
		}
	}
	return nil
}

// FindReservation returns the first reservation whose MAC matches mac, or nil.
func (s *Scope) FindReservation(mac string) *Reservation {
	for i := range s.Reservations {
		if MACEqual(s.Reservations[i].MACAddress, mac) {
			return &s.Reservations[i]
		}
	}
	return nil
}

// FindScope returns the first scope whose name matches name, or nil.
func (s *Server) FindScope(name string) *Scope {
	for i := range s.Scopes {
		if NamesEqual(s.Scopes[i].Name, name) {
			return &s.Scopes[i]
		}
	}
	return nil
}

// FindServer returns the first server whose name matches name, or nil.
func (s *Snapshot) FindServer(name string) *Server {
	for i := range s.Servers {
		if NamesEqual(s.Servers[i].Name, name) {
			return &s.Servers[i]
		}
	}
	return nil
}

// Ambiguity is a key that collides with an earlier sibling after
// normalization. Lookups always return the earlier entity; the later one is
// unreachable by key.
type Ambiguity struct {
	Level Level
	Path  string
	Key   string
}

func (a Ambiguity) String() string {
	if a.Path == "" {
		return fmt.Sprintf("duplicate %s %q", a.Level, a.Key)
	}
	return fmt.Sprintf("duplicate %s %q under %s", a.Level, a.Key, a.Path)
}

// Ambiguities lists every key that shadows an earlier sibling.
func (s *Snapshot) Ambiguities() []Ambiguity {
	var out []Ambiguity

	servers := map[string]bool{}
	for _, srv := range s.Servers {
		if key := NormalizeName(srv.Name); servers[key] {
			out = append(out, Ambiguity{Level: LevelServer, Key: srv.Name})
		} else {
			servers[key] = true
		}

		scopes := map[string]bool{}
		for _, sc := range srv.Scopes {
			if key := NormalizeName(sc.Name); scopes[key] {
				out = append(out, Ambiguity{Level: LevelScope, Path: srv.Name, Key: sc.Name})
			} else {
				scopes[key] = true
			}

			path := srv.Name + "/" + sc.Name
			clients := map[string]bool{}
			for _, c := range sc.Clients {
				if key := NormalizeMAC(c.MACAddress); clients[key] {
					out = append(out, Ambiguity{Level: LevelClient, Path: path, Key: c.MACAddress})
				} else {
					clients[key] = true
				}
			}
			reservations := map[string]bool{}
			for _, r := range sc.Reservations {
				if key := NormalizeMAC(r.MACAddress); reservations[key] {
					out = append(out, Ambiguity{Level: LevelReservation, Path: path, Key: r.MACAddress})
				} else {
					reservations[key] = true
				}
			}
		}
	}

	return out
}

// Counts returns the number of servers, scopes, clients and reservations.
func (s *Snapshot) Counts() (servers, scopes, clients, reservations int) {
	servers = len(s.Servers)
	for _, srv := range s.Servers {
		scopes += len(srv.Scopes)
		for _, sc := range srv.Scopes {
			clients += len(sc.Clients)
			reservations += len(sc.Reservations)
		}
	}
	return
}
