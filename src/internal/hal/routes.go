package hal

import (
	"net/url"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Route parameter names.
const (
	ParamServer = "serverName"
	ParamScope  = "scopeName"
	ParamMAC    = "macAddress"
)

// Route patterns shared by the router and the link renderer.
const (
	RouteRoot         = "/"
	RouteServers      = "/servers"
	RouteServer       = RouteServers + "/{" + ParamServer + "}"
	RouteScopes       = RouteServer + "/scopes"
	RouteScope        = RouteScopes + "/{" + ParamScope + "}"
	RouteClients      = RouteScope + "/clients"
	RouteClient       = RouteClients + "/{" + ParamMAC + "}"
	RouteReservations = RouteScope + "/reservations"
	RouteReservation  = RouteReservations + "/{" + ParamMAC + "}"
)

var templates = compile(
	RouteRoot,
	RouteServers,
	RouteServer,
	RouteScopes,
	RouteScope,
	RouteClients,
	RouteClient,
	RouteReservations,
	RouteReservation,
)

func compile(routes ...string) map[string]*fasttemplate.Template {
	out := make(map[string]*fasttemplate.Template, len(routes))
	for _, r := range routes {
		out[r] = fasttemplate.New(r, "{", "}")
	}
	return out
}

// Linker renders absolute hrefs for route patterns under a base URL.
type Linker struct {
	base string
}

// NewLinker returns a Linker for base, e.g. "https://dhcp.example.net/api".
// A trailing slash on base is ignored.
func NewLinker(base string) *Linker {
	return &Linker{base: strings.TrimRight(base, "/")}
}

// Base returns the root href.
func (l *Linker) Base() string {
	return l.Href(RouteRoot, nil)
}

// Href renders route with params. Values are path-escaped.
func (l *Linker) Href(route string, params map[string]string) string {
	t, ok := templates[route]
	if !ok {
		t = fasttemplate.New(route, "{", "}")
	}

	values := make(map[string]interface{}, len(params))
	for k, v := range params {
		values[k] = url.PathEscape(v)
	}
	return l.base + t.ExecuteString(values)
}

func serverParams(server string) map[string]string {
	return map[string]string{ParamServer: server}
}

func scopeParams(server, scope string) map[string]string {
	return map[string]string{ParamServer: server, ParamScope: scope}
}

func macParams(server, scope, mac string) map[string]string {
	return map[string]string{ParamServer: server, ParamScope: scope, ParamMAC: mac}
}
