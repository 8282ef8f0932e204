// Package sources implements inventory providers backed by real DHCP data:
// a hand-maintained TOML document, a dnsmasq configuration plus its leases
// file, and the Kea Control Agent HTTP API. An Aggregator fans out to all
// configured sources and joins their servers into one snapshot.
package sources
