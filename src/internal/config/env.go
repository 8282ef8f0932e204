package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/maksimkurb/keen-dhcp/src/internal/log"
)

// Environment variables that override values from the configuration file.
const (
	EnvListenAddr = "KEEN_DHCP_LISTEN"
	EnvPublicURL  = "KEEN_DHCP_PUBLIC_URL"
	EnvVerbose    = "KEEN_DHCP_VERBOSE"
)

// LoadDotEnv loads variables from a .env file into the process environment
// without overriding variables that are already set. A missing file is fine.
func LoadDotEnv(filenames ...string) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			log.Warnf("Failed to load %s: %v", name, err)
			continue
		}
		log.Debugf("Loaded environment from %s", name)
	}
}

// ApplyEnv overrides general settings from the environment.
func (c *Config) ApplyEnv() {
	if c.General == nil {
		c.General = &GeneralConfig{ListenAddr: DefaultListenAddr}
	}

	if v, ok := lookupEnv(EnvListenAddr); ok {
		c.General.ListenAddr = v
	}
	if v, ok := lookupEnv(EnvPublicURL); ok {
		c.General.PublicURL = v
	}
	if v, ok := lookupEnv(EnvVerbose); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Warnf("Ignoring %s=%q: %v", EnvVerbose, v, err)
		} else {
			c.General.Verbose = b
		}
	}
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
