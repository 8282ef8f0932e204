package domain

import (
	"fmt"

	"github.com/maksimkurb/keen-dhcp/src/internal/config"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
	"github.com/maksimkurb/keen-dhcp/src/internal/lookup"
	"github.com/maksimkurb/keen-dhcp/src/internal/sources"
)

// AppDependencies is a dependency injection container that holds all application dependencies.
//
// Usage:
//
//	deps, err := domain.NewAppDependencies(cfg)
//	if err != nil {
//	    return err
//	}
//	defer deps.Close()
//	router := api.NewRouter(deps.Provider(), cfg.General.PublicURL)
type AppDependencies struct {
	resolver AddressResolver
	sources  []sources.Source
	provider InventoryProvider
}

// NewAppDependencies builds every configured source, the optional DNS
// resolver and the aggregator over them. Sources built before a failure are
// closed again.
func NewAppDependencies(cfg *config.Config) (*AppDependencies, error) {
	var resolver AddressResolver
	if cfg.Lookup != nil {
		r, err := lookup.NewResolver(cfg.Lookup.Resolver, cfg.Lookup.Timeout())
		if err != nil {
			return nil, err
		}
		resolver = r
	}

	built := make([]sources.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		src, err := sources.New(sc)
		if err != nil {
			closeAll(built)
			return nil, fmt.Errorf("failed to create source %s: %w", sc.Name, err)
		}
		log.Debugf("Created %s source %s", sc.Type, sc.Name)
		built = append(built, src)
	}

	return &AppDependencies{
		resolver: resolver,
		sources:  built,
		provider: sources.NewAggregator(built, resolver),
	}, nil
}

// NewTestDependencies creates a dependency container around a ready provider.
func NewTestDependencies(provider inventory.Provider) *AppDependencies {
	return &AppDependencies{provider: nopCloser{provider}}
}

// Provider returns the provider the API serves snapshots from.
func (d *AppDependencies) Provider() inventory.Provider {
	return d.provider
}

// Resolver returns the DNS resolver, or nil when lookups are disabled.
func (d *AppDependencies) Resolver() AddressResolver {
	return d.resolver
}

// Sources returns the configured sources in order.
func (d *AppDependencies) Sources() []sources.Source {
	return d.sources
}

// Close releases all sources.
func (d *AppDependencies) Close() error {
	return d.provider.Close()
}

func closeAll(list []sources.Source) {
	for _, src := range list {
		if err := src.Close(); err != nil {
			log.Warnf("Failed to close source %s: %v", src.Name(), err)
		}
	}
}

type nopCloser struct {
	inventory.Provider
}

func (nopCloser) Close() error { return nil }
