package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maksimkurb/keen-dhcp/src/internal/api"
	"github.com/maksimkurb/keen-dhcp/src/internal/config"
	"github.com/maksimkurb/keen-dhcp/src/internal/domain"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
)

const shutdownTimeout = 30 * time.Second

// ServerCommand implements the server command for running the HTTP API server.
type ServerCommand struct {
	fs   *flag.FlagSet
	ctx  *AppContext
	cfg  *config.Config
	deps *domain.AppDependencies

	bindAddr string
}

func CreateServerCommand() Runner {
	return &ServerCommand{}
}

func (c *ServerCommand) Name() string {
	return "server"
}

func (c *ServerCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx
	c.fs = flag.NewFlagSet("server", flag.ExitOnError)
	c.fs.StringVar(&c.bindAddr, "bind", "", "Address to bind the HTTP server (default: general.listen_addr)")

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.bindAddr == "" {
		c.bindAddr = cfg.General.ListenAddr
	}

	deps, err := domain.NewAppDependencies(cfg)
	if err != nil {
		return err
	}
	c.deps = deps

	return nil
}

// Run serves the API until SIGINT/SIGTERM.
func (c *ServerCommand) Run() error {
	defer func() {
		if err := c.deps.Close(); err != nil {
			log.Warnf("Failed to close sources: %v", err)
		}
	}()

	log.Infof("Configuration loaded from: %s", c.ctx.ConfigPath)
	if c.cfg.General.PublicURL != "" {
		log.Infof("Links are rooted at %s", c.cfg.General.PublicURL)
	}

	// An unreachable source is not fatal at startup: the API answers 503
	// until it recovers.
	if snap, err := c.deps.Provider().Snapshot(context.Background()); err != nil {
		log.Warnf("Initial inventory fetch failed: %v", err)
	} else {
		logSnapshotSummary(snap)
	}

	router := api.NewRouter(c.deps.Provider(), c.cfg.General.PublicURL)
	server := api.NewServer(c.bindAddr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := NewRestartableRunner(RunnerConfig{Name: "api", MaxRestarts: 5}, func(ctx context.Context) error {
		serverErrors := make(chan error, 1)
		go func() {
			serverErrors <- server.Start()
		}()

		select {
		case err := <-serverErrors:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Stop(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		}
	})

	if err := runner.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		log.Infof("Received shutdown signal, stopping server...")
	case <-runner.Done():
	}

	if err := runner.Stop(); err != nil {
		return err
	}
	if ctx.Err() == nil {
		if err := runner.LastError(); err != nil {
			return err
		}
	}

	log.Infof("Server stopped gracefully")
	return nil
}
