// Package hal turns resolved inventory entities into hypermedia resources.
//
// A resource is the entity's own JSON object with an extra "links" member
// mapping relation names to absolute hrefs. Hrefs are rendered from the same
// route patterns the HTTP router registers, so the link graph and the routing
// table cannot drift apart.
package hal
