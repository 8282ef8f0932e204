package hal

import (
	"time"

	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
)

// Assembler builds resources for entities that are already resolved. It only
// looks at the snapshot again for the client/reservation cross links.
type Assembler struct {
	links *Linker
}

func NewAssembler(links *Linker) *Assembler {
	return &Assembler{links: links}
}

func (a *Assembler) Root() Resource[Root] {
	return Resource[Root]{Links: Links{
		RelServers: a.links.Href(RouteServers, nil),
	}}
}

func (a *Assembler) Servers(servers []inventory.Server) Resource[Collection[inventory.Server]] {
	items := make([]Resource[inventory.Server], 0, len(servers))
	for _, s := range servers {
		items = append(items, Resource[inventory.Server]{
			Entity: presentServer(s),
			Links:  Links{RelItem: a.links.Href(RouteServer, serverParams(s.Name))},
		})
	}
	return Resource[Collection[inventory.Server]]{
		Entity: Collection[inventory.Server]{Items: items},
		Links:  Links{RelSelf: a.links.Href(RouteServers, nil)},
	}
}

func (a *Assembler) Server(s *inventory.Server) Resource[inventory.Server] {
	return Resource[inventory.Server]{
		Entity: presentServer(*s),
		Links: Links{
			RelSelf:       a.links.Href(RouteServer, serverParams(s.Name)),
			RelCollection: a.links.Href(RouteServers, nil),
			RelScopes:     a.links.Href(RouteScopes, serverParams(s.Name)),
		},
	}
}

func (a *Assembler) Scopes(s *inventory.Server, scopes []inventory.Scope) Resource[Collection[inventory.Scope]] {
	items := make([]Resource[inventory.Scope], 0, len(scopes))
	for _, sc := range scopes {
		items = append(items, Resource[inventory.Scope]{
			Entity: presentScope(sc),
			Links:  Links{RelItem: a.links.Href(RouteScope, scopeParams(s.Name, sc.Name))},
		})
	}
	return Resource[Collection[inventory.Scope]]{
		Entity: Collection[inventory.Scope]{Items: items},
		Links: Links{
			RelSelf:   a.links.Href(RouteScopes, serverParams(s.Name)),
			RelServer: a.links.Href(RouteServer, serverParams(s.Name)),
		},
	}
}

func (a *Assembler) Scope(p inventory.Path) Resource[inventory.Scope] {
	server, scope := p.Server.Name, p.Scope.Name
	return Resource[inventory.Scope]{
		Entity: presentScope(*p.Scope),
		Links: Links{
			RelSelf:         a.links.Href(RouteScope, scopeParams(server, scope)),
			RelCollection:   a.links.Href(RouteScopes, serverParams(server)),
			RelClients:      a.links.Href(RouteClients, scopeParams(server, scope)),
			RelReservations: a.links.Href(RouteReservations, scopeParams(server, scope)),
			RelServer:       a.links.Href(RouteServer, serverParams(server)),
		},
	}
}

func (a *Assembler) Clients(p inventory.Path, clients []inventory.Client) Resource[Collection[inventory.Client]] {
	server, scope := p.Server.Name, p.Scope.Name
	items := make([]Resource[inventory.Client], 0, len(clients))
	for _, c := range clients {
		items = append(items, Resource[inventory.Client]{
			Entity: presentClient(c),
			Links:  Links{RelItem: a.links.Href(RouteClient, macParams(server, scope, inventory.CompactMAC(c.MACAddress)))},
		})
	}
	return Resource[Collection[inventory.Client]]{
		Entity: Collection[inventory.Client]{Items: items},
		Links:  a.scopeChildLinks(p, RouteClients),
	}
}

// Client links to the reservation with the same MAC only when the client
// claims one and it actually exists in the scope; the flag alone can be stale.
func (a *Assembler) Client(p inventory.Path, c *inventory.Client) Resource[inventory.Client] {
	server, scope := p.Server.Name, p.Scope.Name
	links := a.scopeChildLinks(p, RouteClients)
	links[RelCollection] = links[RelSelf]
	links[RelSelf] = a.links.Href(RouteClient, macParams(server, scope, inventory.CompactMAC(c.MACAddress)))

	if c.HasReservation {
		if r := p.Scope.FindReservation(c.MACAddress); r != nil {
			links[RelReservation] = a.links.Href(RouteReservation, macParams(server, scope, inventory.CompactMAC(r.MACAddress)))
		}
	}

	return Resource[inventory.Client]{Entity: presentClient(*c), Links: links}
}

func (a *Assembler) Reservations(p inventory.Path, reservations []inventory.Reservation) Resource[Collection[inventory.Reservation]] {
	server, scope := p.Server.Name, p.Scope.Name
	items := make([]Resource[inventory.Reservation], 0, len(reservations))
	for _, r := range reservations {
		items = append(items, Resource[inventory.Reservation]{
			Entity: presentReservation(r),
			Links:  Links{RelItem: a.links.Href(RouteReservation, macParams(server, scope, inventory.CompactMAC(r.MACAddress)))},
		})
	}
	return Resource[Collection[inventory.Reservation]]{
		Entity: Collection[inventory.Reservation]{Items: items},
		Links:  a.scopeChildLinks(p, RouteReservations),
	}
}

func (a *Assembler) Reservation(p inventory.Path, r *inventory.Reservation) Resource[inventory.Reservation] {
	server, scope := p.Server.Name, p.Scope.Name
	links := a.scopeChildLinks(p, RouteReservations)
	links[RelCollection] = links[RelSelf]
	links[RelSelf] = a.links.Href(RouteReservation, macParams(server, scope, inventory.CompactMAC(r.MACAddress)))

	if c := p.Scope.FindClient(r.MACAddress); c != nil {
		links[RelClient] = a.links.Href(RouteClient, macParams(server, scope, inventory.CompactMAC(c.MACAddress)))
	}

	return Resource[inventory.Reservation]{Entity: presentReservation(*r), Links: links}
}

// Error builds an error resource linking back to the API root.
func (a *Assembler) Error(code int, message string, at time.Time) Resource[ErrorBody] {
	return Resource[ErrorBody]{
		Entity: ErrorBody{Code: code, Message: message, Time: at.UTC()},
		Links:  Links{RelBase: a.links.Base()},
	}
}

func (a *Assembler) scopeChildLinks(p inventory.Path, route string) Links {
	server, scope := p.Server.Name, p.Scope.Name
	return Links{
		RelSelf:   a.links.Href(route, scopeParams(server, scope)),
		RelScope:  a.links.Href(RouteScope, scopeParams(server, scope)),
		RelServer: a.links.Href(RouteServer, serverParams(server)),
	}
}
