// Package config loads and validates the keen-dhcp TOML configuration.
//
// The file has a [general] table, an optional [lookup] table and one
// [[source]] table per inventory source:
//
//	[general]
//	listen_addr = "0.0.0.0:8067"
//	public_url = "https://dhcp.example.com"
//
//	[lookup]
//	resolver = "192.168.1.1:53"
//
//	[[source]]
//	name = "office"
//	type = "file"
//	path = "inventory.toml"
//	watch = true
//
//	[[source]]
//	name = "edge"
//	type = "dnsmasq"
//	config = "/etc/dnsmasq.conf"
//	leases = "/var/lib/misc/dnsmasq.leases"
//
//	[[source]]
//	name = "core"
//	type = "kea"
//	url = "http://127.0.0.1:8000/"
//
// Relative paths are resolved against the directory of the configuration
// file. KEEN_DHCP_LISTEN, KEEN_DHCP_PUBLIC_URL and KEEN_DHCP_VERBOSE
// override the [general] values; a .env file in the working directory is
// loaded first.
//
// Loading and validating:
//
//	cfg, err := config.LoadConfig("/opt/etc/keen-dhcp/keen-dhcp.conf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.ApplyEnv()
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatal(err)
//	}
package config
