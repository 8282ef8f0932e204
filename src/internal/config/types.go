package config

import (
	"path/filepath"
	"time"

	"github.com/maksimkurb/keen-dhcp/src/internal/utils"
)

// SourceType selects an inventory source implementation.
type SourceType string

const (
	SourceFile    SourceType = "file"
	SourceDnsmasq SourceType = "dnsmasq"
	SourceKea     SourceType = "kea"
)

const (
	DefaultListenAddr      = "0.0.0.0:8067"
	DefaultLookupTimeoutMs = 2000
	DefaultKeaTimeoutMs    = 5000
)

type Config struct {
	// General holds general configuration.
	General *GeneralConfig `toml:"general"`
	// Lookup enables filling missing server addresses from DNS.
	Lookup *LookupConfig `toml:"lookup,omitempty"`
	// Sources are read in order; their servers are concatenated into one inventory.
	Sources []*SourceConfig `toml:"source"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// ListenAddr is the API listen address (default: 0.0.0.0:8067).
	ListenAddr string `toml:"listen_addr" json:"listen_addr" validate:"required,hostport_or_empty"`
	// PublicURL is the absolute base for links. Empty means "derive from the request".
	PublicURL string `toml:"public_url" json:"public_url" validate:"url_or_empty"`
	// Verbose enables debug logging.
	Verbose bool `toml:"verbose" json:"verbose"`
}

type LookupConfig struct {
	// Resolver is the DNS server used for A lookups, as host:port.
	Resolver string `toml:"resolver" json:"resolver" validate:"required,hostport_or_empty"`
	// TimeoutMs bounds a single lookup (default: 2000).
	TimeoutMs int `toml:"timeout_ms" json:"timeout_ms" validate:"min=0"`
}

type SourceConfig struct {
	// Name identifies the source in logs; kea sources also use it as the server name.
	Name string `toml:"name" json:"name" validate:"required"`
	// Type is one of: file, dnsmasq, kea.
	Type SourceType `toml:"type" json:"type" validate:"required,oneof=file dnsmasq kea"`

	// Path is the TOML inventory document (file).
	Path string `toml:"path,omitempty" json:"path,omitempty" validate:"required_if=Type file"`
	// Watch reloads the inventory document when it changes (file).
	Watch bool `toml:"watch,omitempty" json:"watch,omitempty"`

	// Config is the dnsmasq configuration file (dnsmasq).
	Config string `toml:"config,omitempty" json:"config,omitempty" validate:"required_if=Type dnsmasq"`
	// Leases is the dnsmasq leases file (dnsmasq).
	Leases string `toml:"leases,omitempty" json:"leases,omitempty" validate:"required_if=Type dnsmasq"`
	// ServerName names the dnsmasq server (default: source name).
	ServerName string `toml:"server_name,omitempty" json:"server_name,omitempty"`

	// URL is the Kea Control Agent endpoint (kea).
	URL string `toml:"url,omitempty" json:"url,omitempty" validate:"required_if=Type kea,url_or_empty"`
	// TimeoutMs bounds one Kea command (default: 5000).
	TimeoutMs int `toml:"timeout_ms,omitempty" json:"timeout_ms,omitempty" validate:"min=0"`
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

// GetAbsolutePath resolves a path from the configuration file relative to its directory.
func (c *Config) GetAbsolutePath(path string) string {
	if path == "" {
		return ""
	}
	return utils.GetAbsolutePath(path, c.GetConfigDir())
}

// Timeout returns the lookup timeout, falling back to the default.
func (l *LookupConfig) Timeout() time.Duration {
	if l.TimeoutMs <= 0 {
		return DefaultLookupTimeoutMs * time.Millisecond
	}
	return time.Duration(l.TimeoutMs) * time.Millisecond
}

// Timeout returns the per-command timeout for kea sources.
func (s *SourceConfig) Timeout() time.Duration {
	if s.TimeoutMs <= 0 {
		return DefaultKeaTimeoutMs * time.Millisecond
	}
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// GetServerName returns the server name a dnsmasq source reports.
func (s *SourceConfig) GetServerName() string {
	if s.ServerName != "" {
		return s.ServerName
	}
	return s.Name
}
