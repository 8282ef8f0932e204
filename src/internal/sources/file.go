package sources

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/maksimkurb/keen-dhcp/src/internal/errors"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
)

const reloadSettleDelay = 100 * time.Millisecond

var errEmptyInventory = stderrors.New("inventory file is empty")

// Inventory document layout. Keys are snake_case like the main config.
type fileDocument struct {
	Servers []fileServer `toml:"server"`
}

type fileServer struct {
	Name      string       `toml:"name"`
	IPAddress string       `toml:"ip_address"`
	Version   string       `toml:"version"`
	Options   []fileOption `toml:"option"`
	Scopes    []fileScope  `toml:"scope"`
}

type fileScope struct {
	Name          string            `toml:"name"`
	IPAddress     string            `toml:"ip_address"`
	SubnetMask    string            `toml:"subnet_mask"`
	LeaseDuration int64             `toml:"lease_duration"`
	Comment       string            `toml:"comment"`
	State         string            `toml:"state"`
	Range         fileRange         `toml:"range"`
	Excluded      []fileRange       `toml:"excluded"`
	Options       []fileOption      `toml:"option"`
	Clients       []fileClient      `toml:"client"`
	Reservations  []fileReservation `toml:"reservation"`
}

type fileRange struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

type fileOption struct {
	ID     int      `toml:"id"`
	Label  string   `toml:"label"`
	Values []string `toml:"values"`
}

type fileClient struct {
	Name           string     `toml:"name"`
	IPAddress      string     `toml:"ip_address"`
	SubnetMask     string     `toml:"subnet_mask"`
	MACAddress     string     `toml:"mac_address"`
	AddressState   string     `toml:"address_state"`
	LeaseExpires   *time.Time `toml:"lease_expires"`
	LeaseExpired   *bool      `toml:"lease_expired"`
	HasReservation *bool      `toml:"has_reservation"`
	Types          []string   `toml:"types"`
}

type fileReservation struct {
	IPAddress    string       `toml:"ip_address"`
	SubnetMask   string       `toml:"subnet_mask"`
	MACAddress   string       `toml:"mac_address"`
	AllowedTypes []string     `toml:"allowed_types"`
	Options      []fileOption `toml:"option"`
}

// FileSource serves an inventory described in a TOML document. With watch
// enabled the document is reloaded on change; a reload that fails keeps the
// previous snapshot.
type FileSource struct {
	name    string
	path    string
	current atomic.Pointer[inventory.Snapshot]

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewFileSource loads path and, when watch is set, starts watching it.
func NewFileSource(name, path string, watch bool) (*FileSource, error) {
	s := &FileSource{name: name, path: filepath.Clean(path)}

	if err := s.reload(); err != nil {
		return nil, err
	}
	if watch {
		if err := s.startWatcher(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *FileSource) Name() string {
	return s.name
}

func (s *FileSource) Snapshot(ctx context.Context) (*inventory.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.current.Load(), nil
}

func (s *FileSource) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.wg.Wait()
	s.watcher = nil
	return err
}

func (s *FileSource) reload() error {
	snap, err := loadInventoryFile(s.path, time.Now())
	if err != nil {
		return errors.NewSourceError(fmt.Sprintf("source %s", s.name), err)
	}
	for _, a := range snap.Ambiguities() {
		log.Warnf("[%s] %s; only the first entry is reachable", s.name, a)
	}
	s.current.Store(snap)
	return nil
}

// startWatcher watches the parent directory so that editors replacing the
// file (write to temp + rename) are noticed too.
func (s *FileSource) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewSourceError("failed to create file watcher", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return errors.NewSourceError(fmt.Sprintf("failed to watch %s", s.path), err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.watch(watcher)

	log.Infof("[%s] Watching %s for changes", s.name, s.path)
	return nil
}

func (s *FileSource) watch(watcher *fsnotify.Watcher) {
	defer s.wg.Done()

	// Bursts of events from a single save collapse into one reload.
	settle := time.NewTimer(reloadSettleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-s.done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			settle.Reset(reloadSettleDelay)
		case <-settle.C:
			if err := s.reload(); err != nil {
				log.Warnf("[%s] Keeping previous inventory: %v", s.name, err)
				continue
			}
			log.Infof("[%s] Reloaded %s", s.name, s.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("[%s] File watcher error: %v", s.name, err)
		}
	}
}

func loadInventoryFile(path string, now time.Time) (*inventory.Snapshot, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// Editors truncate before writing, so an empty document is never a
	// valid inventory.
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, errEmptyInventory
	}

	var doc fileDocument
	if err := toml.Unmarshal(content, &doc); err != nil {
		var derr *toml.DecodeError
		if stderrors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s at line %d, column %d", derr.Error(), row, col)
		}
		return nil, err
	}

	snap := &inventory.Snapshot{
		Servers:   make([]inventory.Server, 0, len(doc.Servers)),
		FetchedAt: now,
	}
	for _, srv := range doc.Servers {
		snap.Servers = append(snap.Servers, srv.toServer(now))
	}
	return snap, nil
}

func (f fileServer) toServer(now time.Time) inventory.Server {
	srv := inventory.Server{
		Name:      f.Name,
		IPAddress: f.IPAddress,
		Version:   f.Version,
		Options:   toOptions(f.Options),
		Scopes:    make([]inventory.Scope, 0, len(f.Scopes)),
	}
	for _, sc := range f.Scopes {
		srv.Scopes = append(srv.Scopes, sc.toScope(now))
	}
	return srv
}

func (f fileScope) toScope(now time.Time) inventory.Scope {
	scope := inventory.Scope{
		Name:             f.Name,
		IPAddress:        f.IPAddress,
		SubnetMask:       f.SubnetMask,
		LeaseDuration:    f.LeaseDuration,
		Comment:          f.Comment,
		State:            inventory.ParseScopeState(f.State),
		IPRange:          inventory.IPRange{Start: f.Range.Start, End: f.Range.End},
		ExcludedIPRanges: make([]inventory.IPRange, 0, len(f.Excluded)),
		Options:          toOptions(f.Options),
		Clients:          make([]inventory.Client, 0, len(f.Clients)),
		Reservations:     make([]inventory.Reservation, 0, len(f.Reservations)),
	}
	for _, ex := range f.Excluded {
		scope.ExcludedIPRanges = append(scope.ExcludedIPRanges, inventory.IPRange{Start: ex.Start, End: ex.End})
	}
	for _, c := range f.Clients {
		scope.Clients = append(scope.Clients, c.toClient(scope.SubnetMask, now))
	}
	for _, r := range f.Reservations {
		scope.Reservations = append(scope.Reservations, inventory.Reservation{
			IPAddress:          r.IPAddress,
			SubnetMask:         orDefault(r.SubnetMask, scope.SubnetMask),
			MACAddress:         r.MACAddress,
			AllowedClientTypes: toClientTypes(r.AllowedTypes).AllocationTypes(),
			Options:            toOptions(r.Options),
		})
	}
	return scope
}

func (f fileClient) toClient(scopeMask string, now time.Time) inventory.Client {
	types := toClientTypes(f.Types)

	c := inventory.Client{
		Name:           f.Name,
		AddressState:   inventory.ParseAddressState(f.AddressState),
		IPAddress:      f.IPAddress,
		SubnetMask:     orDefault(f.SubnetMask, scopeMask),
		MACAddress:     f.MACAddress,
		LeaseExpires:   f.LeaseExpires,
		HasReservation: types.Has(inventory.ClientReservation),
		Types:          types,
	}
	if f.AddressState == "" {
		c.AddressState = inventory.AddressActive
	}
	if f.HasReservation != nil {
		c.HasReservation = *f.HasReservation
	}
	if f.LeaseExpired != nil {
		c.LeaseExpired = *f.LeaseExpired
	} else if f.LeaseExpires != nil {
		c.LeaseExpired = now.After(*f.LeaseExpires)
	}
	return c
}

func toOptions(in []fileOption) []inventory.Option {
	out := make([]inventory.Option, 0, len(in))
	for _, o := range in {
		opt := newOption(o.ID, o.Values)
		if o.Label != "" {
			opt.Label = o.Label
		}
		out = append(out, opt)
	}
	return out
}

func toClientTypes(in []string) inventory.ClientTypes {
	tags := make([]inventory.ClientType, 0, len(in))
	for _, s := range in {
		if t, ok := inventory.ParseClientType(s); ok {
			tags = append(tags, t)
		}
	}
	return inventory.NewClientTypes(tags...)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
