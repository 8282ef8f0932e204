// Package lookup resolves host names to IPv4 addresses against a configured
// DNS server. It is used to fill in server addresses that a source does not
// report.
package lookup

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/maksimkurb/keen-dhcp/src/internal/errors"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
)

const defaultDNSPort = "53"

// Resolver sends A queries to a single DNS server over UDP.
type Resolver struct {
	address string
	client  *dns.Client
}

// NewResolver creates a resolver for address ("host" or "host:port").
func NewResolver(address string, timeout time.Duration) (*Resolver, error) {
	host := address
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, defaultDNSPort)
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		return nil, errors.NewLookupError(fmt.Sprintf("invalid resolver address %q", address), err)
	}

	return &Resolver{
		address: host,
		client: &dns.Client{
			Net:     "udp",
			Timeout: timeout,
		},
	}, nil
}

// LookupA returns the first A record for name. A name that is already an
// IPv4 address is returned unchanged.
func (r *Resolver) LookupA(ctx context.Context, name string) (string, error) {
	if ip := net.ParseIP(name); ip != nil && ip.To4() != nil {
		return ip.String(), nil
	}

	req := new(dns.Msg)
	req.SetQuestion(dns.Fqdn(name), dns.TypeA)
	req.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, req, r.address)
	if err != nil {
		return "", errors.NewLookupError(fmt.Sprintf("query %s via %s", name, r.address), err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", errors.NewLookupError(fmt.Sprintf("query %s: %s", name, dns.RcodeToString[resp.Rcode]), nil)
	}

	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			log.Debugf("[%04x] %s resolved to %s", req.Id, name, a.A)
			return a.A.String(), nil
		}
	}

	return "", errors.NewLookupError(fmt.Sprintf("no A record for %s", name), nil)
}
