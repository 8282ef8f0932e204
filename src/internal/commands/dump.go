package commands

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"time"

	"github.com/maksimkurb/keen-dhcp/src/internal/domain"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
)

func CreateDumpCommand() *DumpCommand {
	return &DumpCommand{
		fs:  flag.NewFlagSet("dump", flag.ExitOnError),
		out: os.Stdout,
	}
}

// DumpCommand prints the aggregated inventory as indented JSON.
type DumpCommand struct {
	fs   *flag.FlagSet
	out  io.Writer
	deps *domain.AppDependencies
}

func (d *DumpCommand) Name() string {
	return d.fs.Name()
}

func (d *DumpCommand) Init(args []string, ctx *AppContext) error {
	// stdout carries the JSON document.
	log.SetForceStdErr(true)

	if err := d.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}

	deps, err := domain.NewAppDependencies(cfg)
	if err != nil {
		return err
	}
	d.deps = deps
	return nil
}

func (d *DumpCommand) Run() error {
	defer d.deps.Close()

	snap, err := d.deps.Provider().Snapshot(context.Background())
	if err != nil {
		return err
	}
	return writeDump(d.out, snap)
}

type dumpSnapshot struct {
	FetchedAt time.Time    `json:"fetchedAt"`
	Servers   []dumpServer `json:"servers"`
}

type dumpServer struct {
	inventory.Server
	Scopes []dumpScope `json:"scopes"`
}

type dumpScope struct {
	inventory.Scope
	Clients      []inventory.Client      `json:"clients"`
	Reservations []inventory.Reservation `json:"reservations"`
}

func writeDump(w io.Writer, snap *inventory.Snapshot) error {
	doc := dumpSnapshot{FetchedAt: snap.FetchedAt, Servers: make([]dumpServer, 0, len(snap.Servers))}
	for _, srv := range snap.Servers {
		ds := dumpServer{Server: srv, Scopes: make([]dumpScope, 0, len(srv.Scopes))}
		for _, scope := range srv.Scopes {
			ds.Scopes = append(ds.Scopes, dumpScope{
				Scope:        scope,
				Clients:      nonNil(scope.Clients),
				Reservations: nonNil(scope.Reservations),
			})
		}
		doc.Servers = append(doc.Servers, ds)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
