// Package api serves the DHCP inventory as a read-only hypermedia REST API.
//
// Every request takes its own inventory snapshot from the configured
// Provider, resolves the path against it, optionally filters a collection and
// renders the result with the hal package. Nothing is shared between
// requests, so handlers do no locking.
//
// # Endpoints
//
//	GET /
//	GET /servers                                            ?name= &ip= &version=
//	GET /servers/{serverName}
//	GET /servers/{serverName}/scopes                        ?name= &ip= &state=
//	GET /servers/{serverName}/scopes/{scopeName}
//	GET /servers/{serverName}/scopes/{scopeName}/clients    ?name= &ip= &mac= &state=
//	GET /servers/{serverName}/scopes/{scopeName}/clients/{macAddress}
//	GET /servers/{serverName}/scopes/{scopeName}/reservations  ?ip= &mac=
//	GET /servers/{serverName}/scopes/{scopeName}/reservations/{macAddress}
//	GET /health
//
// Names match case-insensitively, MAC addresses with or without colons.
//
// # Response Format
//
// Resources are the entity's fields plus a "links" object:
//
//	{
//	  "name": "Main",
//	  "state": "enabled",
//	  ...
//	  "links": {
//	    "self": "http://host/servers/DHCP-01/scopes/Main",
//	    "server": "http://host/servers/DHCP-01"
//	  }
//	}
//
// Errors share one shape. A 404 names the first path level that did not
// resolve:
//
//	{
//	  "code": 404,
//	  "message": "Server 'unknown' not found",
//	  "time": "2024-05-01T10:00:00Z",
//	  "links": {"base": "http://host/"}
//	}
//
// A failed inventory fetch is reported as 503 with the same shape.
package api
