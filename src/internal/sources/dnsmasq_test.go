package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/maksimkurb/keen-dhcp/src/internal/errors"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
)

func TestParseLeaseTime(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"3600", 3600, true},
		{"45s", 45, true},
		{"30m", 1800, true},
		{"12h", 43200, true},
		{"2d", 172800, true},
		{"1w", 604800, true},
		{"infinite", 0, true},
		{"static", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseLeaseTime(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("parseLeaseTime(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseDhcpRange(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want dnsmasqRange
		ok   bool
	}{
		{
			name: "plain",
			in:   "192.168.1.50,192.168.1.150,12h",
			want: dnsmasqRange{start: "192.168.1.50", end: "192.168.1.150", mask: "255.255.255.0", lease: 43200},
			ok:   true,
		},
		{
			name: "tagged with mask",
			in:   "set:guest,10.0.0.10,10.0.0.20,255.255.0.0,infinite",
			want: dnsmasqRange{tag: "guest", start: "10.0.0.10", end: "10.0.0.20", mask: "255.255.0.0", lease: 0},
			ok:   true,
		},
		{
			name: "default lease",
			in:   "172.16.0.2,172.16.0.9",
			want: dnsmasqRange{start: "172.16.0.2", end: "172.16.0.9", mask: "255.255.255.0", lease: 3600},
			ok:   true,
		},
		{
			name: "ipv6",
			in:   "::1,::400,constructor:eth0,ra-only",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDhcpRange(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("parseDhcpRange() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDhcpHost(t *testing.T) {
	h, ok := parseDhcpHost("AA:BB:CC:DD:EE:FF,set:printers,192.168.1.20,printer,infinite")
	if !ok {
		t.Fatal("Expected host to parse")
	}
	if h.ip != "192.168.1.20" || h.name != "printer" || len(h.macs) != 1 || len(h.tags) != 1 || h.tags[0] != "printers" {
		t.Errorf("Unexpected host: %+v", h)
	}

	if _, ok := parseDhcpHost("11:22:33:44:55:66,ignore"); ok {
		t.Error("Ignored host should be skipped")
	}
	if _, ok := parseDhcpHost("laptop,192.168.1.30"); ok {
		t.Error("Host without MAC should be skipped")
	}
}

func TestParseDhcpOption(t *testing.T) {
	o, ok := parseDhcpOption("tag:guest,option:router,10.0.0.1")
	if !ok || o.code != 3 || len(o.tags) != 1 || o.values[0] != "10.0.0.1" {
		t.Errorf("Unexpected option: %+v, %v", o, ok)
	}

	o, ok = parseDhcpOption("6,1.1.1.1,8.8.8.8")
	if !ok || o.code != 6 || len(o.values) != 2 {
		t.Errorf("Unexpected option: %+v, %v", o, ok)
	}

	if _, ok := parseDhcpOption("option6:dns-server,[::]"); ok {
		t.Error("IPv6 options should be skipped")
	}
	if _, ok := parseDhcpOption("encap:175,190,secret"); ok {
		t.Error("Encapsulated options should be skipped")
	}
}

const dnsmasqConf = `# home router
interface=br0
listen-address=127.0.0.1,192.168.1.1
domain-needed
dhcp-range=set:lan,192.168.1.50,192.168.1.150,12h
dhcp-range=set:guest,10.0.0.10,10.0.0.20,255.255.255.0,30m
dhcp-option=option:dns-server,192.168.1.1
dhcp-option=tag:guest,option:router,10.0.0.1
dhcp-host=AA:BB:CC:DD:EE:FF,set:printers,192.168.1.20,printer
dhcp-host=de:ad:be:ef:00:01,172.31.0.5
conf-file=%s
`

const dnsmasqExtra = `dhcp-option=tag:printers,42,192.168.1.1
dhcp-host=11:22:33:44:55:66,10.0.0.15,tv
`

func TestLoadDnsmasqConfig_Includes(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "dnsmasq.conf")
	writeFile(t, confPath, "domain-needed\nbogus-priv\ndhcp-range=192.168.1.50,192.168.1.150,12h\nconf-file=hosts.conf\n")
	// Flags repeated across files and an include cycle back to the top-level file.
	writeFile(t, filepath.Join(dir, "hosts.conf"), "domain-needed\ndhcp-host=aa:bb:cc:dd:ee:ff,192.168.1.20\nconf-file="+confPath+"\n")

	conf, err := loadDnsmasqConfig(confPath)
	if err != nil {
		t.Fatalf("loadDnsmasqConfig() error = %v", err)
	}
	if len(conf.ranges) != 1 {
		t.Errorf("Expected 1 range, got %d", len(conf.ranges))
	}
	if len(conf.hosts) != 1 || conf.hosts[0].ip != "192.168.1.20" {
		t.Errorf("Expected host from include, got %+v", conf.hosts)
	}

	writeFile(t, confPath, "domain-needed\nconf-file=missing.conf\n")
	if _, err := loadDnsmasqConfig(confPath); err == nil {
		t.Error("Expected error for missing include")
	}
}

func TestDnsmasqSource_Snapshot(t *testing.T) {
	dir := t.TempDir()
	extra := filepath.Join(dir, "extra.conf")
	conf := filepath.Join(dir, "dnsmasq.conf")
	leases := filepath.Join(dir, "dnsmasq.leases")

	writeFile(t, extra, dnsmasqExtra)
	writeFile(t, conf, fmt.Sprintf(dnsmasqConf, extra))
	writeFile(t, leases, `duid 00:01:00:01:2c:1f:aa:bb:cc:dd:ee:ff
1893456000 aa:bb:cc:dd:ee:ff 192.168.1.20 printer 01:aa:bb:cc:dd:ee:ff
946684800 12:34:56:78:9a:bc 192.168.1.77 * *
0 11:22:33:44:55:66 10.0.0.15 tv *
1893456000 22:22:22:22:22:22 fd00::10 v6host *
`)

	src := NewDnsmasqSource("home", "router", conf, leases)
	src.now = func() time.Time { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) }

	snap, err := src.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap.Servers) != 1 {
		t.Fatalf("Expected 1 server, got %d", len(snap.Servers))
	}

	srv := snap.Servers[0]
	if srv.Name != "router" || srv.IPAddress != "192.168.1.1" || srv.Version != "dnsmasq" {
		t.Errorf("Unexpected server: %+v", srv)
	}
	if len(srv.Options) != 1 || srv.Options[0].ID != 6 {
		t.Errorf("Expected one untagged server option, got %+v", srv.Options)
	}
	if len(srv.Scopes) != 2 {
		t.Fatalf("Expected 2 scopes, got %d", len(srv.Scopes))
	}

	lan := srv.Scopes[0]
	if lan.Name != "lan" || lan.IPAddress != "192.168.1.0" || lan.LeaseDuration != 43200 || lan.State != inventory.ScopeEnabled {
		t.Errorf("Unexpected lan scope: %+v", lan)
	}
	if len(lan.Reservations) != 1 {
		t.Fatalf("Expected 1 lan reservation, got %d", len(lan.Reservations))
	}
	if opts := lan.Reservations[0].Options; len(opts) != 1 || opts[0].ID != 42 {
		t.Errorf("Expected tagged option from included file, got %+v", opts)
	}
	if len(lan.Clients) != 2 {
		t.Fatalf("Expected 2 lan clients, got %d", len(lan.Clients))
	}

	printer := lan.Clients[0]
	if !printer.HasReservation || !printer.Types.Has(inventory.ClientReservation) || printer.LeaseExpired {
		t.Errorf("Unexpected printer client: %+v", printer)
	}
	stale := lan.Clients[1]
	if stale.Name != "" || !stale.LeaseExpired || stale.HasReservation {
		t.Errorf("Unexpected stale client: %+v", stale)
	}

	guest := srv.Scopes[1]
	if guest.Name != "guest" || guest.LeaseDuration != 1800 {
		t.Errorf("Unexpected guest scope: %+v", guest)
	}
	if len(guest.Options) != 1 || guest.Options[0].ID != 3 {
		t.Errorf("Expected tagged router option on guest scope, got %+v", guest.Options)
	}
	if len(guest.Clients) != 1 || guest.Clients[0].LeaseExpires != nil || !guest.Clients[0].HasReservation {
		t.Errorf("Unexpected guest clients: %+v", guest.Clients)
	}
}

func TestDnsmasqSource_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "dnsmasq.conf")
	writeFile(t, conf, "dhcp-range=192.168.5.10,192.168.5.20\n")

	src := NewDnsmasqSource("home", "router", conf, filepath.Join(dir, "absent.leases"))
	snap, err := src.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Missing leases file should not fail: %v", err)
	}
	scope := snap.Servers[0].Scopes[0]
	if scope.Name != "192.168.5.0" || len(scope.Clients) != 0 {
		t.Errorf("Unexpected scope: %+v", scope)
	}

	src = NewDnsmasqSource("home", "router", filepath.Join(dir, "absent.conf"), "")
	if _, err := src.Snapshot(context.Background()); !errors.HasCode(err, errors.ErrCodeSource) {
		t.Errorf("Missing config should be a source error, got %v", err)
	}
}
