package sources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maksimkurb/keen-dhcp/src/internal/errors"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
)

// AddressResolver resolves a server name to an IPv4 address.
type AddressResolver interface {
	LookupA(ctx context.Context, name string) (string, error)
}

// Aggregator queries every source concurrently and joins the servers in
// configuration order. A failing source fails the whole snapshot.
type Aggregator struct {
	sources  []Source
	resolver AddressResolver

	now       func() time.Time
	mu        sync.RWMutex
	addresses map[string]resolvedAddress
}

// Failed lookups are retried after negativeLookupTTL.
const negativeLookupTTL = 5 * time.Minute

type resolvedAddress struct {
	addr    string
	retryAt time.Time
}

// NewAggregator creates an aggregator over sources. resolver may be nil, in
// which case servers without an address keep an empty one.
func NewAggregator(sources []Source, resolver AddressResolver) *Aggregator {
	return &Aggregator{
		sources:   sources,
		resolver:  resolver,
		now:       time.Now,
		addresses: make(map[string]resolvedAddress),
	}
}

func (a *Aggregator) Snapshot(ctx context.Context) (*inventory.Snapshot, error) {
	parts := make([]*inventory.Snapshot, len(a.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		g.Go(func() error {
			snap, err := src.Snapshot(gctx)
			if err != nil {
				if errors.HasCode(err, errors.ErrCodeSource) {
					return err
				}
				return errors.NewSourceError(fmt.Sprintf("source %s failed", src.Name()), err)
			}
			parts[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &inventory.Snapshot{Servers: []inventory.Server{}, FetchedAt: time.Now()}
	for _, part := range parts {
		if part == nil {
			continue
		}
		out.Servers = append(out.Servers, part.Servers...)
	}

	if a.resolver != nil {
		var lg errgroup.Group
		for i := range out.Servers {
			if out.Servers[i].IPAddress != "" {
				continue
			}
			lg.Go(func() error {
				out.Servers[i].IPAddress = a.lookup(ctx, out.Servers[i].Name)
				return nil
			})
		}
		_ = lg.Wait()
	}

	return out, nil
}

// lookup resolves name and remembers the answer. Successful answers are kept
// for the lifetime of the aggregator, failures for negativeLookupTTL.
func (a *Aggregator) lookup(ctx context.Context, name string) string {
	if name == "" {
		return ""
	}

	a.mu.RLock()
	cached, ok := a.addresses[name]
	a.mu.RUnlock()
	if ok && (cached.addr != "" || a.now().Before(cached.retryAt)) {
		return cached.addr
	}

	addr, err := a.resolver.LookupA(ctx, name)
	if err != nil {
		log.Debugf("Failed to resolve server %s: %v", name, err)
		a.mu.Lock()
		a.addresses[name] = resolvedAddress{retryAt: a.now().Add(negativeLookupTTL)}
		a.mu.Unlock()
		return ""
	}

	a.mu.Lock()
	a.addresses[name] = resolvedAddress{addr: addr}
	a.mu.Unlock()
	return addr
}

// Sources returns the aggregated sources in configuration order.
func (a *Aggregator) Sources() []Source {
	return a.sources
}

// Close closes every source and returns the first error.
func (a *Aggregator) Close() error {
	var first error
	for _, src := range a.sources {
		if err := src.Close(); err != nil {
			log.Warnf("Failed to close source %s: %v", src.Name(), err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
