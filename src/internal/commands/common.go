package commands

import (
	"fmt"

	"github.com/maksimkurb/keen-dhcp/src/internal/config"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath string
	Verbose    bool
}

// loadAndValidateConfigOrFail loads .env, the configuration file and the
// environment overrides, then validates the result.
func loadAndValidateConfigOrFail(ctx *AppContext) (*config.Config, error) {
	config.LoadDotEnv()

	cfg, err := config.LoadConfig(ctx.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}
	cfg.ApplyEnv()

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	if cfg.General.Verbose && !ctx.Verbose {
		log.SetVerbose(true)
	}

	return cfg, nil
}
