package inventory

// Path is the resolved ancestor chain of a scope-level entity.
type Path struct {
	Server *Server
	Scope  *Scope
}

// Resolver walks one snapshot by loosely matched keys. Every failure is a
// *NotFoundError naming the first level that did not match, so a missing
// server is reported as such even when deeper keys are also bogus.
//
// Returned pointers alias the snapshot and must be treated as read-only.
type Resolver struct {
	snap *Snapshot
}

// NewResolver returns a Resolver over snap. A nil snapshot behaves as empty.
func NewResolver(snap *Snapshot) *Resolver {
	if snap == nil {
		snap = &Snapshot{}
	}
	return &Resolver{snap: snap}
}

// Servers returns every server in snapshot order.
func (r *Resolver) Servers() []Server {
	return r.snap.Servers
}

// ResolveServer finds a server by name.
func (r *Resolver) ResolveServer(serverName string) (*Server, error) {
	srv := r.snap.FindServer(serverName)
	if srv == nil {
		return nil, notFound(LevelServer, serverName)
	}
	return srv, nil
}

// ResolveScope finds a scope by name or network address under a server.
func (r *Resolver) ResolveScope(serverName, scopeName string) (Path, error) {
	srv, err := r.ResolveServer(serverName)
	if err != nil {
		return Path{}, err
	}
	scope := srv.FindScope(scopeName)
	if scope == nil {
		return Path{}, notFound(LevelScope, scopeName)
	}
	return Path{Server: srv, Scope: scope}, nil
}

// ResolveClient finds the client leasing from mac in a scope.
func (r *Resolver) ResolveClient(serverName, scopeName, mac string) (Path, *Client, error) {
	path, err := r.ResolveScope(serverName, scopeName)
	if err != nil {
		return Path{}, nil, err
	}
	client := path.Scope.FindClient(mac)
	if client == nil {
		return Path{}, nil, notFound(LevelClient, mac)
	}
	return path, client, nil
}

// ResolveReservation finds the reservation held for mac in a scope.
func (r *Resolver) ResolveReservation(serverName, scopeName, mac string) (Path, *Reservation, error) {
	path, err := r.ResolveScope(serverName, scopeName)
	if err != nil {
		return Path{}, nil, err
	}
	res := path.Scope.FindReservation(mac)
	if res == nil {
		return Path{}, nil, notFound(LevelReservation, mac)
	}
	return path, res, nil
}

// ListScopes returns the server and all of its scopes. An empty list is not
// an error.
func (r *Resolver) ListScopes(serverName string) (*Server, []Scope, error) {
	srv, err := r.ResolveServer(serverName)
	if err != nil {
		return nil, nil, err
	}
	return srv, srv.Scopes, nil
}

// ListClients returns the scope path and every client of the scope.
func (r *Resolver) ListClients(serverName, scopeName string) (Path, []Client, error) {
	path, err := r.ResolveScope(serverName, scopeName)
	if err != nil {
		return Path{}, nil, err
	}
	return path, path.Scope.Clients, nil
}

// ListReservations returns the scope path and every reservation of the scope.
func (r *Resolver) ListReservations(serverName, scopeName string) (Path, []Reservation, error) {
	path, err := r.ResolveScope(serverName, scopeName)
	if err != nil {
		return Path{}, nil, err
	}
	return path, path.Scope.Reservations, nil
}
