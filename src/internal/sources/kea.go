package sources

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/http"
	"net/netip"
	"sort"
	"strings"
	"time"

	"github.com/maksimkurb/keen-dhcp/src/internal/errors"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
	"github.com/maksimkurb/keen-dhcp/src/internal/utils"
)

// keaInfiniteLifetime is the valid-lft Kea reports for infinite leases.
const keaInfiniteLifetime = 0xffffffff

// KeaSource reports the dhcp4 daemon behind a Kea Control Agent as one
// server named after the source.
type KeaSource struct {
	name   string
	client *keaClient
	now    func() time.Time
}

// NewKeaSource creates a source for the agent at url. A nil httpClient gets
// one with the given timeout.
func NewKeaSource(name, url string, timeout time.Duration, httpClient *http.Client) *KeaSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &KeaSource{
		name:   name,
		client: newKeaClient(url, httpClient),
		now:    time.Now,
	}
}

func (s *KeaSource) Name() string {
	return s.name
}

func (s *KeaSource) Close() error {
	s.client.httpClient.CloseIdleConnections()
	return nil
}

func (s *KeaSource) Snapshot(ctx context.Context) (*inventory.Snapshot, error) {
	version, err := s.client.Version(ctx)
	if err != nil {
		return nil, s.wrap(err)
	}
	conf, err := s.client.Config(ctx)
	if err != nil {
		return nil, s.wrap(err)
	}
	leases, err := s.client.Leases(ctx)
	if err != nil {
		return nil, s.wrap(err)
	}

	now := s.now()
	srv := buildKeaServer(s.name, version, conf, leases, now)
	return &inventory.Snapshot{Servers: []inventory.Server{srv}, FetchedAt: now}, nil
}

func (s *KeaSource) wrap(err error) error {
	return errors.NewSourceError(fmt.Sprintf("source %s: kea control agent request failed", s.name), err)
}

func buildKeaServer(name, version string, conf *keaConfig, leases []keaLease, now time.Time) inventory.Server {
	srv := inventory.Server{
		Name:      name,
		IPAddress: keaServerAddress(conf.InterfacesConfig.Interfaces),
		Version:   "Kea " + version,
		Options:   keaOptions(conf.OptionData),
		Scopes:    []inventory.Scope{},
	}

	byID := make(map[int]int)
	add := func(sub keaSubnet, lifetime *int64, inherited []keaOptionData) {
		scope, err := keaScope(sub, lifetime, inherited)
		if err != nil {
			log.Warnf("Skipping Kea subnet %d (%s): %v", sub.ID, sub.Subnet, err)
			return
		}
		byID[sub.ID] = len(srv.Scopes)
		srv.Scopes = append(srv.Scopes, scope)
	}

	for _, sub := range conf.Subnets {
		add(sub, conf.ValidLifetime, nil)
	}
	for _, shared := range conf.SharedNetworks {
		lifetime := conf.ValidLifetime
		if shared.ValidLifetime != nil {
			lifetime = shared.ValidLifetime
		}
		for _, sub := range shared.Subnets {
			add(sub, lifetime, shared.OptionData)
		}
	}

	for _, l := range leases {
		idx, ok := byID[l.SubnetID]
		if !ok {
			log.Debugf("Lease %s belongs to unknown subnet %d", l.IPAddress, l.SubnetID)
			continue
		}
		scope := &srv.Scopes[idx]
		scope.Clients = append(scope.Clients, keaClientFromLease(l, scope, now))
	}

	return srv
}

// keaServerAddress takes the address from the first "iface/address" entry.
func keaServerAddress(interfaces []string) string {
	for _, iface := range interfaces {
		if _, addr, ok := strings.Cut(iface, "/"); ok {
			if ip, err := netip.ParseAddr(addr); err == nil && ip.Is4() {
				return ip.String()
			}
		}
	}
	return ""
}

func keaScope(sub keaSubnet, lifetime *int64, inherited []keaOptionData) (inventory.Scope, error) {
	network, mask, err := utils.SplitCIDR(sub.Subnet)
	if err != nil {
		return inventory.Scope{}, err
	}

	name := sub.UserContext.Name
	if name == "" {
		name = sub.Subnet
	}
	comment := sub.UserContext.Comment
	if comment == "" {
		comment = sub.Comment
	}
	state := inventory.ScopeEnabled
	if sub.UserContext.State != "" {
		state = inventory.ParseScopeState(sub.UserContext.State)
	}
	if sub.ValidLifetime != nil {
		lifetime = sub.ValidLifetime
	}
	var leaseDuration int64
	if lifetime != nil && *lifetime != keaInfiniteLifetime {
		leaseDuration = *lifetime
	}

	ipRange, excluded, err := keaPoolRanges(sub)
	if err != nil {
		return inventory.Scope{}, err
	}

	scope := inventory.Scope{
		Name:             name,
		IPAddress:        network,
		SubnetMask:       mask,
		LeaseDuration:    leaseDuration,
		Comment:          comment,
		State:            state,
		IPRange:          ipRange,
		ExcludedIPRanges: excluded,
		Options:          keaOptions(append(append([]keaOptionData{}, inherited...), sub.OptionData...)),
		Clients:          []inventory.Client{},
		Reservations:     make([]inventory.Reservation, 0, len(sub.Reservations)),
	}

	for _, r := range sub.Reservations {
		if r.HWAddress == "" || r.IPAddress == "" {
			continue
		}
		scope.Reservations = append(scope.Reservations, inventory.Reservation{
			IPAddress:          r.IPAddress,
			SubnetMask:         mask,
			MACAddress:         r.HWAddress,
			AllowedClientTypes: inventory.NewClientTypes(inventory.ClientDHCP),
			Options:            keaOptions(r.OptionData),
		})
	}
	return scope, nil
}

type addrRange struct {
	start, end netip.Addr
}

// keaPoolRanges spans all pools with one range and reports the gaps between
// pools as exclusions. A subnet without pools spans its usable hosts.
func keaPoolRanges(sub keaSubnet) (inventory.IPRange, []inventory.IPRange, error) {
	excluded := []inventory.IPRange{}
	if len(sub.Pools) == 0 {
		start, end, err := utils.CIDRRange(sub.Subnet)
		return inventory.IPRange{Start: start, End: end}, excluded, err
	}

	pools := make([]addrRange, 0, len(sub.Pools))
	for _, p := range sub.Pools {
		r, err := parseKeaPool(p.Pool)
		if err != nil {
			return inventory.IPRange{}, nil, err
		}
		pools = append(pools, r)
	}
	sort.Slice(pools, func(i, j int) bool {
		return pools[i].start.Less(pools[j].start)
	})

	end := pools[0].end
	for _, p := range pools[1:] {
		if gapStart := end.Next(); gapStart.Less(p.start) {
			excluded = append(excluded, inventory.IPRange{
				Start: gapStart.String(),
				End:   p.start.Prev().String(),
			})
		}
		if end.Less(p.end) {
			end = p.end
		}
	}

	return inventory.IPRange{Start: pools[0].start.String(), End: end.String()}, excluded, nil
}

// parseKeaPool accepts "a - b" and CIDR pool notation.
func parseKeaPool(pool string) (addrRange, error) {
	if startStr, endStr, ok := strings.Cut(pool, "-"); ok {
		start, err := netip.ParseAddr(strings.TrimSpace(startStr))
		if err != nil {
			return addrRange{}, err
		}
		end, err := netip.ParseAddr(strings.TrimSpace(endStr))
		if err != nil {
			return addrRange{}, err
		}
		return addrRange{start: start, end: end}, nil
	}

	prefix, err := netip.ParsePrefix(strings.TrimSpace(pool))
	if err != nil {
		return addrRange{}, fmt.Errorf("invalid pool %q: %w", pool, err)
	}
	prefix = prefix.Masked()
	if !prefix.Addr().Is4() {
		return addrRange{}, fmt.Errorf("invalid pool %q: not IPv4", pool)
	}
	first := prefix.Addr().As4()
	n := binary.BigEndian.Uint32(first[:]) | uint32(uint64(1)<<(32-prefix.Bits())-1)
	var last [4]byte
	binary.BigEndian.PutUint32(last[:], n)
	return addrRange{start: prefix.Addr(), end: netip.AddrFrom4(last)}, nil
}

func keaOptions(data []keaOptionData) []inventory.Option {
	opts := make([]inventory.Option, 0, len(data))
	for _, d := range data {
		code, ok := keaOptionCode(d.Code, d.Name)
		if !ok {
			log.Debugf("Skipping Kea option %q without a known code", d.Name)
			continue
		}
		opts = append(opts, newOption(code, strings.Split(d.Data, ",")))
	}
	return opts
}

func keaClientFromLease(l keaLease, scope *inventory.Scope, now time.Time) inventory.Client {
	c := inventory.Client{
		Name:         strings.TrimSuffix(l.Hostname, "."),
		AddressState: keaLeaseState(l.State),
		IPAddress:    l.IPAddress,
		SubnetMask:   scope.SubnetMask,
		MACAddress:   l.HWAddress,
		Types:        inventory.NewClientTypes(inventory.ClientDHCP),
	}
	if l.ValidLft != keaInfiniteLifetime {
		exp := time.Unix(l.CLTT+l.ValidLft, 0).UTC()
		c.LeaseExpires = &exp
		c.LeaseExpired = now.After(exp)
	}
	if scope.FindReservation(l.HWAddress) != nil {
		c.HasReservation = true
		c.Types = inventory.NewClientTypes(inventory.ClientDHCP, inventory.ClientReservation)
	}
	return c
}

func keaLeaseState(state int) inventory.AddressState {
	switch state {
	case 0:
		return inventory.AddressActive
	case 1:
		return inventory.AddressDeclined
	case 2:
		return inventory.AddressDoomed
	default:
		return inventory.AddressUnknown
	}
}
