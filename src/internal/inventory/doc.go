// Package inventory holds the read-only DHCP inventory tree and the logic
// that navigates it.
//
// A Snapshot is a Server -> Scope -> {Client, Reservation} tree produced by a
// Provider. Snapshots are never mutated once handed out, so a request can
// resolve, filter and render one without locking.
//
// Keys are compared loosely: names ignore case and surrounding whitespace,
// MAC addresses additionally ignore colons. See NamesEqual and MACEqual.
package inventory
