package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maksimkurb/keen-dhcp/src/internal/config"
	"github.com/maksimkurb/keen-dhcp/src/internal/errors"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
)

type stubSource struct {
	name   string
	snap   *inventory.Snapshot
	err    error
	closed atomic.Bool
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Snapshot(context.Context) (*inventory.Snapshot, error) {
	return s.snap, s.err
}

func (s *stubSource) Close() error {
	s.closed.Store(true)
	return nil
}

type stubResolver struct {
	answers map[string]string
	calls   atomic.Int32
}

func (r *stubResolver) LookupA(_ context.Context, name string) (string, error) {
	r.calls.Add(1)
	if ip, ok := r.answers[name]; ok {
		return ip, nil
	}
	return "", fmt.Errorf("no answer for %s", name)
}

func serversSnapshot(names ...string) *inventory.Snapshot {
	snap := &inventory.Snapshot{}
	for _, n := range names {
		snap.Servers = append(snap.Servers, inventory.Server{Name: n})
	}
	return snap
}

func TestAggregator_Snapshot(t *testing.T) {
	first := &stubSource{name: "a", snap: serversSnapshot("alpha", "beta")}
	second := &stubSource{name: "b", snap: serversSnapshot("gamma")}
	second.snap.Servers[0].IPAddress = "10.0.0.3"
	resolver := &stubResolver{answers: map[string]string{"alpha": "10.0.0.1"}}

	agg := NewAggregator([]Source{first, second}, resolver)

	snap, err := agg.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	want := []struct{ name, ip string }{
		{"alpha", "10.0.0.1"},
		{"beta", ""},
		{"gamma", "10.0.0.3"},
	}
	if len(snap.Servers) != len(want) {
		t.Fatalf("Expected %d servers, got %d", len(want), len(snap.Servers))
	}
	for i, w := range want {
		if snap.Servers[i].Name != w.name || snap.Servers[i].IPAddress != w.ip {
			t.Errorf("Server %d = %s/%s, want %s/%s", i, snap.Servers[i].Name, snap.Servers[i].IPAddress, w.name, w.ip)
		}
	}
	if first.snap.Servers[0].IPAddress != "" {
		t.Error("Source snapshot must not be modified")
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}

	if _, err := agg.Snapshot(context.Background()); err != nil {
		t.Fatalf("Second Snapshot() error = %v", err)
	}
	// Both answers are cached, including beta's failure.
	if got := resolver.calls.Load(); got != 2 {
		t.Errorf("Expected 2 lookups, got %d", got)
	}

	if err := agg.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !first.closed.Load() || !second.closed.Load() {
		t.Error("All sources should be closed")
	}
}

func TestAggregator_FailedLookupRetry(t *testing.T) {
	src := &stubSource{name: "a", snap: serversSnapshot("ghost")}
	resolver := &stubResolver{answers: map[string]string{}}
	agg := NewAggregator([]Source{src}, resolver)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := agg.Snapshot(context.Background()); err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
	}
	if got := resolver.calls.Load(); got != 1 {
		t.Errorf("Expected 1 lookup while the failure is cached, got %d", got)
	}

	resolver.answers["ghost"] = "10.0.0.9"
	now = now.Add(negativeLookupTTL + time.Second)
	snap, err := agg.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := resolver.calls.Load(); got != 2 {
		t.Errorf("Expected a retry after the TTL, got %d lookups", got)
	}
	if snap.Servers[0].IPAddress != "10.0.0.9" {
		t.Errorf("Expected resolved address, got %q", snap.Servers[0].IPAddress)
	}
}

func TestAggregator_SourceFailure(t *testing.T) {
	ok := &stubSource{name: "ok", snap: serversSnapshot("alpha")}
	bad := &stubSource{name: "bad", err: fmt.Errorf("connection refused")}

	_, err := NewAggregator([]Source{ok, bad}, nil).Snapshot(context.Background())
	if !errors.HasCode(err, errors.ErrCodeSource) {
		t.Errorf("Expected source error, got %v", err)
	}
}

func TestAggregator_NoSources(t *testing.T) {
	snap, err := NewAggregator(nil, nil).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Servers == nil || len(snap.Servers) != 0 {
		t.Errorf("Expected empty non-nil server list, got %v", snap.Servers)
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.toml")
	writeFile(t, path, inventoryDoc)

	tests := []struct {
		name    string
		cfg     config.SourceConfig
		want    string
		wantErr bool
	}{
		{name: "file", cfg: config.SourceConfig{Name: "f", Type: config.SourceFile, Path: path}, want: "*sources.FileSource"},
		{name: "dnsmasq", cfg: config.SourceConfig{Name: "d", Type: config.SourceDnsmasq, Config: "/etc/dnsmasq.conf"}, want: "*sources.DnsmasqSource"},
		{name: "kea", cfg: config.SourceConfig{Name: "k", Type: config.SourceKea, URL: "http://127.0.0.1:8000"}, want: "*sources.KeaSource"},
		{name: "unknown", cfg: config.SourceConfig{Name: "x", Type: "ldap"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(&tt.cfg)
			if tt.wantErr {
				if !errors.HasCode(err, errors.ErrCodeConfig) {
					t.Errorf("Expected config error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer src.Close()
			if got := fmt.Sprintf("%T", src); got != tt.want {
				t.Errorf("New() type = %s, want %s", got, tt.want)
			}
		})
	}
}
