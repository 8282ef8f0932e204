package hal

import (
	"bytes"
	"encoding/json"
	"time"
)

// Relation names.
const (
	RelSelf         = "self"
	RelItem         = "item"
	RelCollection   = "collection"
	RelServers      = "servers"
	RelServer       = "server"
	RelScopes       = "scopes"
	RelScope        = "scope"
	RelClients      = "clients"
	RelClient       = "client"
	RelReservations = "reservations"
	RelReservation  = "reservation"
	RelBase         = "base"
)

// Links maps relation names to hrefs.
type Links map[string]string

// Resource attaches a link bag to any JSON-object entity. It marshals as the
// entity's own members followed by "links".
type Resource[T any] struct {
	Entity T
	Links  Links
}

func (r Resource[T]) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(r.Entity)
	if err != nil {
		return nil, err
	}
	links, err := json.Marshal(r.links())
	if err != nil {
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		// Not an object: wrap it so the links still have somewhere to go.
		return json.Marshal(struct {
			Value json.RawMessage `json:"value"`
			Links json.RawMessage `json:"links"`
		}{body, links})
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(links) + 10)
	buf.Write(body[:len(body)-1])
	if len(bytes.TrimSpace(body[1:len(body)-1])) > 0 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"links":`)
	buf.Write(links)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Resource[T]) links() Links {
	if r.Links == nil {
		return Links{}
	}
	return r.Links
}

// Collection holds the items of a listing. Items carry their own "item" link.
type Collection[T any] struct {
	Items []Resource[T] `json:"items"`
}

// Root is the entry point document; it has no fields besides its links.
type Root struct{}

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}
