// Package domain wires the inventory sources, the DNS resolver and the
// aggregated provider the API reads from.
package domain

import (
	"context"

	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
	"github.com/maksimkurb/keen-dhcp/src/internal/lookup"
	"github.com/maksimkurb/keen-dhcp/src/internal/sources"
)

// InventoryProvider hands out inventory snapshots and owns the resources
// behind them.
type InventoryProvider interface {
	inventory.Provider

	// Close releases watchers and connections held by the provider.
	Close() error
}

// AddressResolver resolves a server name to an IPv4 address.
type AddressResolver interface {
	LookupA(ctx context.Context, name string) (string, error)
}

var (
	_ InventoryProvider       = (*sources.Aggregator)(nil)
	_ AddressResolver         = (*lookup.Resolver)(nil)
	_ sources.AddressResolver = (AddressResolver)(nil)
)
