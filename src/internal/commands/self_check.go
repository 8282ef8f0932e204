package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/maksimkurb/keen-dhcp/src/internal/config"
	"github.com/maksimkurb/keen-dhcp/src/internal/domain"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
)

func CreateSelfCheckCommand() *SelfCheckCommand {
	return &SelfCheckCommand{
		fs: flag.NewFlagSet("self-check", flag.ExitOnError),
	}
}

// SelfCheckCommand validates the configuration and fetches one snapshot.
type SelfCheckCommand struct {
	fs   *flag.FlagSet
	ctx  *AppContext
	cfg  *config.Config
	deps *domain.AppDependencies
}

func (g *SelfCheckCommand) Name() string {
	return g.fs.Name()
}

func (g *SelfCheckCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx

	if err := g.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	g.cfg = cfg

	deps, err := domain.NewAppDependencies(cfg)
	if err != nil {
		return err
	}
	g.deps = deps

	return nil
}

func (g *SelfCheckCommand) Run() error {
	defer g.deps.Close()

	log.Infof("Running self-check...")
	log.Infof("Configuration: %s", g.ctx.ConfigPath)
	for _, src := range g.cfg.Sources {
		log.Infof("  source %s (%s)", src.Name, src.Type)
	}

	// Each source is fetched on its own first so a failure names its source.
	failed := 0
	for _, src := range g.deps.Sources() {
		if _, err := src.Snapshot(context.Background()); err != nil {
			log.Errorf("Source %s: %v", src.Name(), err)
			failed++
			continue
		}
		log.Infof("Source %s is readable", src.Name())
	}
	if failed > 0 {
		return fmt.Errorf("self-check failed: %d of %d sources unavailable", failed, len(g.deps.Sources()))
	}

	snap, err := g.deps.Provider().Snapshot(context.Background())
	if err != nil {
		return fmt.Errorf("self-check failed: %w", err)
	}
	logSnapshotSummary(snap)

	for _, srv := range snap.Servers {
		if srv.IPAddress == "" {
			log.Warnf("Server %s has no IP address", srv.Name)
		}
	}

	log.Infof("Self-check completed successfully")
	return nil
}

// logSnapshotSummary logs totals, per-scope counts and keys that are
// shadowed by an earlier entry with the same normalized value.
func logSnapshotSummary(snap *inventory.Snapshot) {
	servers, scopes, clients, reservations := snap.Counts()
	log.Infof("Inventory: %d servers, %d scopes, %d clients, %d reservations", servers, scopes, clients, reservations)

	for _, srv := range snap.Servers {
		log.Debugf("  %s (%s, %s)", srv.Name, srv.IPAddress, srv.Version)
		for _, scope := range srv.Scopes {
			log.Debugf("    %s: %d clients, %d reservations", scope.Name, len(scope.Clients), len(scope.Reservations))
		}
	}

	for _, a := range snap.Ambiguities() {
		log.Warnf("%s; only the first entry is reachable", a)
	}
}
