package sources

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/maksimkurb/keen-dhcp/src/internal/errors"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
	"github.com/maksimkurb/keen-dhcp/src/internal/utils"
)

const (
	dnsmasqVersion       = "dnsmasq"
	dnsmasqDefaultLease  = 3600
	dnsmasqDefaultMask   = "255.255.255.0"
	dnsmasqInfiniteLease = "infinite"
)

// DnsmasqSource reports a single dnsmasq server. The configuration and the
// leases file are re-read on every snapshot; leases change constantly and
// both files are small.
type DnsmasqSource struct {
	name       string
	serverName string
	configPath string
	leasesPath string
	now        func() time.Time
}

func NewDnsmasqSource(name, serverName, configPath, leasesPath string) *DnsmasqSource {
	return &DnsmasqSource{
		name:       name,
		serverName: serverName,
		configPath: configPath,
		leasesPath: leasesPath,
		now:        time.Now,
	}
}

func (s *DnsmasqSource) Name() string {
	return s.name
}

func (s *DnsmasqSource) Close() error {
	return nil
}

func (s *DnsmasqSource) Snapshot(ctx context.Context) (*inventory.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conf, err := loadDnsmasqConfig(s.configPath)
	if err != nil {
		return nil, errors.NewSourceError(fmt.Sprintf("source %s: failed to read %s", s.name, s.configPath), err)
	}

	leases, err := readDnsmasqLeases(s.leasesPath)
	if err != nil {
		return nil, errors.NewSourceError(fmt.Sprintf("source %s: failed to read %s", s.name, s.leasesPath), err)
	}

	now := s.now()
	srv := conf.server(s.serverName)
	assignLeases(&srv, leases, now)

	return &inventory.Snapshot{Servers: []inventory.Server{srv}, FetchedAt: now}, nil
}

// dnsmasqConfig holds the DHCP-relevant directives of a dnsmasq config.
type dnsmasqConfig struct {
	listenAddresses []string
	ranges          []dnsmasqRange
	hosts           []dnsmasqHost
	options         []dnsmasqOption
}

type dnsmasqRange struct {
	tag   string
	start string
	end   string
	mask  string
	lease int64
}

type dnsmasqHost struct {
	macs []string
	tags []string
	ip   string
	name string
}

type dnsmasqOption struct {
	tags   []string
	code   int
	values []string
}

var dnsmasqLoadOptions = ini.LoadOptions{
	AllowShadows:        true,
	AllowBooleanKeys:    true,
	IgnoreInlineComment: true,
	KeyValueDelimiters:  "=",
}

// loadDnsmasqConfig parses path and the files it pulls in with conf-file.
// dnsmasq configs are key=value lines with repeated keys and bare flags,
// which ini handles with shadows and boolean keys enabled. Every file is
// parsed on its own: ini refuses to merge a bare flag seen twice.
func loadDnsmasqConfig(path string) (*dnsmasqConfig, error) {
	conf := &dnsmasqConfig{}
	if err := conf.load(filepath.Clean(path), map[string]bool{}); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *dnsmasqConfig) load(path string, seen map[string]bool) error {
	if seen[path] {
		return nil
	}
	seen[path] = true

	file, err := ini.LoadSources(dnsmasqLoadOptions, path)
	if err != nil {
		return err
	}
	section := file.Section("")

	for _, v := range shadows(section, "listen-address") {
		for _, addr := range strings.Split(v, ",") {
			if ip := net.ParseIP(strings.TrimSpace(addr)); ip != nil && ip.To4() != nil && !ip.IsLoopback() {
				c.listenAddresses = append(c.listenAddresses, ip.String())
			}
		}
	}
	for _, v := range shadows(section, "dhcp-range") {
		if r, ok := parseDhcpRange(v); ok {
			c.ranges = append(c.ranges, r)
		} else {
			log.Debugf("Skipping dhcp-range=%s", v)
		}
	}
	for _, v := range shadows(section, "dhcp-host") {
		if h, ok := parseDhcpHost(v); ok {
			c.hosts = append(c.hosts, h)
		}
	}
	for _, v := range shadows(section, "dhcp-option") {
		if o, ok := parseDhcpOption(v); ok {
			c.options = append(c.options, o)
		}
	}

	for _, inc := range shadows(section, "conf-file") {
		incPath := filepath.Clean(utils.GetAbsolutePath(inc, filepath.Dir(path)))
		if err := c.load(incPath, seen); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// shadows returns the non-empty values of a repeated key.
func shadows(section *ini.Section, key string) []string {
	if !section.HasKey(key) {
		return nil
	}
	var out []string
	for _, v := range section.Key(key).ValueWithShadows() {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseDhcpRange parses
// [tag:<tag>,][set:<tag>,]<start>[,<end>|<mode>][,<netmask>[,<broadcast>]][,<lease>].
// IPv6 ranges are skipped.
func parseDhcpRange(v string) (dnsmasqRange, bool) {
	r := dnsmasqRange{lease: dnsmasqDefaultLease}
	var addrs []string

	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasPrefix(part, "set:"):
			r.tag = strings.TrimPrefix(part, "set:")
		case strings.HasPrefix(part, "tag:"):
			if r.tag == "" {
				r.tag = strings.TrimPrefix(part, "tag:")
			}
		case net.ParseIP(part) != nil:
			addrs = append(addrs, part)
		default:
			if lease, ok := parseLeaseTime(part); ok {
				r.lease = lease
			}
			// Modes such as "static" or "proxy" carry no address data.
		}
	}

	if len(addrs) == 0 || net.ParseIP(addrs[0]).To4() == nil {
		return r, false
	}
	r.start = addrs[0]
	r.end = r.start
	if len(addrs) > 1 {
		r.end = addrs[1]
	}
	r.mask = dnsmasqDefaultMask
	if len(addrs) > 2 {
		r.mask = addrs[2]
	}
	return r, true
}

// parseLeaseTime accepts "infinite", plain seconds or a number with one of
// the s/m/h/d/w suffixes. Infinite leases are reported as 0.
func parseLeaseTime(s string) (int64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == dnsmasqInfiniteLease {
		return 0, true
	}
	if s == "" {
		return 0, false
	}

	mult := int64(1)
	switch s[len(s)-1] {
	case 's':
		s = s[:len(s)-1]
	case 'm':
		mult, s = 60, s[:len(s)-1]
	case 'h':
		mult, s = 3600, s[:len(s)-1]
	case 'd':
		mult, s = 86400, s[:len(s)-1]
	case 'w':
		mult, s = 604800, s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n * mult, true
}

// parseDhcpHost parses
// [<hwaddr>...][,id:<client_id>][,set:<tag>][,tag:<tag>][,<ipaddr>][,<hostname>][,<lease_time>][,ignore].
func parseDhcpHost(v string) (dnsmasqHost, bool) {
	var h dnsmasqHost

	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		lower := strings.ToLower(part)
		switch {
		case part == "":
		case lower == "ignore":
			return h, false
		case strings.HasPrefix(lower, "id:"):
		case strings.HasPrefix(lower, "set:"), strings.HasPrefix(lower, "tag:"):
			h.tags = append(h.tags, part[4:])
		case isMAC(part):
			hw, _ := net.ParseMAC(part)
			h.macs = append(h.macs, hw.String())
		case net.ParseIP(strings.Trim(part, "[]")) != nil:
			if ip := net.ParseIP(part); ip != nil && ip.To4() != nil {
				h.ip = ip.String()
			}
		default:
			if _, ok := parseLeaseTime(part); ok {
				continue
			}
			h.name = part
		}
	}

	return h, len(h.macs) > 0 && h.ip != ""
}

func isMAC(s string) bool {
	// Wildcards and hardware-type prefixes cannot be matched against leases.
	if strings.ContainsAny(s, "*") {
		return false
	}
	_, err := net.ParseMAC(s)
	return err == nil
}

// parseDhcpOption parses
// [tag:<tag>,...][encap:<opt>,][vendor:<class>,]<opt>|option:<name>,[<value>...].
func parseDhcpOption(v string) (dnsmasqOption, bool) {
	var o dnsmasqOption
	parts := strings.Split(v, ",")

	i := 0
	for ; i < len(parts); i++ {
		p := strings.TrimSpace(parts[i])
		switch {
		case strings.HasPrefix(p, "tag:"):
			o.tags = append(o.tags, strings.TrimPrefix(p, "tag:"))
		case strings.HasPrefix(p, "encap:"), strings.HasPrefix(p, "vi-encap:"), strings.HasPrefix(p, "vendor:"):
			// Vendor-encapsulated options are not reported.
			return o, false
		case strings.HasPrefix(p, "option6:"):
			return o, false
		default:
			code, ok := dnsmasqOptionCode(p)
			if !ok {
				return o, false
			}
			o.code = code
			o.values = parts[i+1:]
			return o, true
		}
	}
	return o, false
}

func (o dnsmasqOption) appliesTo(tags ...string) bool {
	if len(o.tags) == 0 {
		return false
	}
	for _, want := range o.tags {
		found := false
		for _, t := range tags {
			if t != "" && t == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// server builds the server tree from the parsed configuration: one scope per
// dhcp-range, reservations placed into the scope whose subnet contains them.
func (c *dnsmasqConfig) server(name string) inventory.Server {
	srv := inventory.Server{
		Name:    name,
		Version: dnsmasqVersion,
		Options: []inventory.Option{},
		Scopes:  make([]inventory.Scope, 0, len(c.ranges)),
	}
	if len(c.listenAddresses) > 0 {
		srv.IPAddress = c.listenAddresses[0]
	}

	for _, o := range c.options {
		if len(o.tags) == 0 {
			srv.Options = append(srv.Options, newOption(o.code, o.values))
		}
	}

	for _, r := range c.ranges {
		network, err := utils.NetworkAddress(r.start, r.mask)
		if err != nil {
			log.Debugf("Skipping dhcp-range %s: %v", r.start, err)
			continue
		}
		scopeName := r.tag
		if scopeName == "" {
			scopeName = network
		}

		scope := inventory.Scope{
			Name:             scopeName,
			IPAddress:        network,
			SubnetMask:       r.mask,
			LeaseDuration:    r.lease,
			State:            inventory.ScopeEnabled,
			IPRange:          inventory.IPRange{Start: r.start, End: r.end},
			ExcludedIPRanges: []inventory.IPRange{},
			Options:          []inventory.Option{},
			Clients:          []inventory.Client{},
			Reservations:     []inventory.Reservation{},
		}
		for _, o := range c.options {
			if o.appliesTo(r.tag) {
				scope.Options = append(scope.Options, newOption(o.code, o.values))
			}
		}
		srv.Scopes = append(srv.Scopes, scope)
	}

	for _, h := range c.hosts {
		scope := scopeContaining(srv.Scopes, h.ip)
		if scope == nil {
			log.Debugf("dhcp-host %s is outside every dhcp-range", h.ip)
			continue
		}
		var opts []inventory.Option
		for _, o := range c.options {
			if o.appliesTo(h.tags...) {
				opts = append(opts, newOption(o.code, o.values))
			}
		}
		for _, mac := range h.macs {
			scope.Reservations = append(scope.Reservations, inventory.Reservation{
				IPAddress:          h.ip,
				SubnetMask:         scope.SubnetMask,
				MACAddress:         mac,
				AllowedClientTypes: inventory.NewClientTypes(inventory.ClientDHCP, inventory.ClientBOOTP),
				Options:            append([]inventory.Option{}, opts...),
			})
		}
	}

	return srv
}

func scopeContaining(scopes []inventory.Scope, ip string) *inventory.Scope {
	addr := net.ParseIP(ip)
	if addr == nil {
		return nil
	}
	for i := range scopes {
		ipNet, err := utils.IPv4ToNetmask(scopes[i].IPAddress, scopes[i].SubnetMask)
		if err == nil && ipNet.Contains(addr) {
			return &scopes[i]
		}
	}
	return nil
}

type dnsmasqLease struct {
	expiry int64
	mac    string
	ip     string
	name   string
}

// readDnsmasqLeases parses "<expiry> <mac> <ip> <hostname> <client-id>"
// lines. IPv6 entries and the duid line are skipped. A missing file means
// no leases yet.
func readDnsmasqLeases(path string) ([]dnsmasqLease, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer utils.CloseOrWarn(file)

	var leases []dnsmasqLease
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		expiry, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		if ip := net.ParseIP(fields[2]); ip == nil || ip.To4() == nil {
			continue
		}
		name := fields[3]
		if name == "*" {
			name = ""
		}
		leases = append(leases, dnsmasqLease{expiry: expiry, mac: fields[1], ip: fields[2], name: name})
	}
	return leases, scanner.Err()
}

func assignLeases(srv *inventory.Server, leases []dnsmasqLease, now time.Time) {
	for _, l := range leases {
		scope := scopeContaining(srv.Scopes, l.ip)
		if scope == nil {
			log.Debugf("Lease %s is outside every dhcp-range", l.ip)
			continue
		}

		c := inventory.Client{
			Name:         l.name,
			AddressState: inventory.AddressActive,
			IPAddress:    l.ip,
			SubnetMask:   scope.SubnetMask,
			MACAddress:   strings.ToLower(l.mac),
			Types:        inventory.NewClientTypes(inventory.ClientDHCP),
		}
		if l.expiry > 0 {
			exp := time.Unix(l.expiry, 0).UTC()
			c.LeaseExpires = &exp
			c.LeaseExpired = now.After(exp)
		}
		if scope.FindReservation(l.mac) != nil {
			c.HasReservation = true
			c.Types = inventory.NewClientTypes(inventory.ClientDHCP, inventory.ClientReservation)
		}
		scope.Clients = append(scope.Clients, c)
	}
}
