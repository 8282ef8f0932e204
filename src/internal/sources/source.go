package sources

import (
	"fmt"

	"github.com/maksimkurb/keen-dhcp/src/internal/config"
	"github.com/maksimkurb/keen-dhcp/src/internal/errors"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
)

// Source is an inventory provider with a name and resources to release.
type Source interface {
	inventory.Provider
	Name() string
	Close() error
}

// New builds the source described by cfg.
func New(cfg *config.SourceConfig) (Source, error) {
	switch cfg.Type {
	case config.SourceFile:
		return NewFileSource(cfg.Name, cfg.Path, cfg.Watch)
	case config.SourceDnsmasq:
		return NewDnsmasqSource(cfg.Name, cfg.GetServerName(), cfg.Config, cfg.Leases), nil
	case config.SourceKea:
		return NewKeaSource(cfg.Name, cfg.URL, cfg.Timeout(), nil), nil
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown source type %q", cfg.Type), nil)
	}
}
