package commands

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
)

func TestWriteDump(t *testing.T) {
	snap := &inventory.Snapshot{
		FetchedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Servers: []inventory.Server{{
			Name:    "DHCP-01",
			Version: "10.0",
			Scopes: []inventory.Scope{{
				Name:    "Main",
				Clients: []inventory.Client{{Name: "laptop", MACAddress: "aabbccddeeff"}},
			}},
		}},
	}

	var buf bytes.Buffer
	if err := writeDump(&buf, snap); err != nil {
		t.Fatalf("writeDump() error = %v", err)
	}

	var doc struct {
		FetchedAt string `json:"fetchedAt"`
		Servers   []struct {
			Name   string `json:"name"`
			Scopes []struct {
				Name         string            `json:"name"`
				Clients      []json.RawMessage `json:"clients"`
				Reservations []json.RawMessage `json:"reservations"`
			} `json:"scopes"`
		} `json:"servers"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, buf.String())
	}

	if doc.FetchedAt != "2024-05-01T12:00:00Z" {
		t.Errorf("fetchedAt = %q", doc.FetchedAt)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].Name != "DHCP-01" {
		t.Fatalf("Unexpected servers: %+v", doc.Servers)
	}
	scope := doc.Servers[0].Scopes[0]
	if scope.Name != "Main" || len(scope.Clients) != 1 {
		t.Errorf("Unexpected scope: %+v", scope)
	}
	if scope.Reservations == nil || len(scope.Reservations) != 0 {
		t.Errorf("Expected empty reservations array, got %v", scope.Reservations)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"servers\"")) {
		t.Error("Expected indented output")
	}
}
