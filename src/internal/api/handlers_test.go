package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
)

func TestMain(m *testing.M) {
	log.DisableLogs()
	os.Exit(m.Run())
}

func testInventory(withReservation bool) *inventory.Snapshot {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	main := inventory.Scope{
		Name:       "Main",
		IPAddress:  "10.0.0.0",
		SubnetMask: "255.255.255.0",
		State:      inventory.ScopeEnabled,
		Clients: []inventory.Client{{
			Name:           "laptop",
			IPAddress:      "10.0.0.50",
			MACAddress:     "AA:BB:CC:DD:EE:FF",
			AddressState:   inventory.AddressActive,
			LeaseExpires:   &expires,
			HasReservation: true,
			Types:          inventory.NewClientTypes(inventory.ClientDHCP, inventory.ClientReservation),
		}},
	}
	if withReservation {
		main.Reservations = []inventory.Reservation{{
			IPAddress:          "10.0.0.50",
			MACAddress:         "aabbccddeeff",
			AllowedClientTypes: inventory.NewClientTypes(inventory.ClientDHCP),
		}}
	}

	return &inventory.Snapshot{Servers: []inventory.Server{{
		Name:      "DHCP-01",
		IPAddress: "10.0.0.2",
		Version:   "Kea 2.6.1",
		Scopes: []inventory.Scope{
			main,
			{Name: "Empty", State: inventory.ScopeEnabledSwitched},
			{Name: "10.0.5.0/24", State: inventory.ScopeDisabled},
		},
	}}}
}

type response struct {
	Code           int               `json:"code"`
	Message        string            `json:"message"`
	Name           string            `json:"name"`
	MACAddress     string            `json:"macAddress"`
	HasReservation bool              `json:"hasReservation"`
	Items          []json.RawMessage `json:"items"`
	Links          map[string]string `json:"links"`
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body response
	if rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestGetClient_WithReservationLink(t *testing.T) {
	router := NewRouter(inventory.Static(testInventory(true)), "")

	rec, body := get(t, router, "/servers/dhcp-01/scopes/Main/clients/aabbccddeeff")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body.Name != "laptop" || body.MACAddress != "AABBCCDDEEFF" {
		t.Errorf("unexpected client %+v", body)
	}
	want := "http://example.com/servers/DHCP-01/scopes/Main/reservations/aabbccddeeff"
	if body.Links["reservation"] != want {
		t.Errorf("reservation link = %q, want %q", body.Links["reservation"], want)
	}
	if body.Links["self"] != "http://example.com/servers/DHCP-01/scopes/Main/clients/AABBCCDDEEFF" {
		t.Errorf("self link = %q", body.Links["self"])
	}
}

func TestGetClient_ReservationRemoved(t *testing.T) {
	router := NewRouter(inventory.Static(testInventory(false)), "")

	rec, body := get(t, router, "/servers/dhcp-01/scopes/Main/clients/aabbccddeeff")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, ok := body.Links["reservation"]; ok {
		t.Errorf("reservation link must be omitted when the reservation is gone")
	}
	if !body.HasReservation {
		t.Errorf("hasReservation must keep the inventory value")
	}
}

func TestNotFound_NamesFirstFailingLevel(t *testing.T) {
	router := NewRouter(inventory.Static(testInventory(true)), "")

	tests := []struct {
		target  string
		message string
	}{
		{"/servers/unknown", "Server 'unknown' not found"},
		{"/servers/unknown/scopes/Main", "Server 'unknown' not found"},
		{"/servers/unknown/scopes/Main/clients/aabbccddeeff", "Server 'unknown' not found"},
		{"/servers/unknown/scopes", "Server 'unknown' not found"},
		{"/servers/DHCP-01/scopes/Nope", "Scope 'Nope' not found"},
		{"/servers/DHCP-01/scopes/Nope/reservations", "Scope 'Nope' not found"},
		{"/servers/DHCP-01/scopes/Main/clients/zz", "Client 'zz' not found"},
		{"/servers/DHCP-01/scopes/Main/reservations/aa:bb", "Reservation 'aa:bb' not found"},
		{"/nowhere", "Resource '/nowhere' not found"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, body := get(t, router, tt.target)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d", rec.Code)
			}
			if body.Code != http.StatusNotFound {
				t.Errorf("body code = %d", body.Code)
			}
			if body.Message != tt.message {
				t.Errorf("message = %q, want %q", body.Message, tt.message)
			}
			if body.Links["base"] != "http://example.com/" {
				t.Errorf("base link = %q", body.Links["base"])
			}
		})
	}
}

func TestListClients_EmptyScope(t *testing.T) {
	router := NewRouter(inventory.Static(testInventory(true)), "")

	rec, body := get(t, router, "/servers/DHCP-01/scopes/empty/clients")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body.Items == nil || len(body.Items) != 0 {
		t.Errorf("expected empty items array, got %s", rec.Body.String())
	}
	for rel, want := range map[string]string{
		"self":   "http://example.com/servers/DHCP-01/scopes/Empty/clients",
		"scope":  "http://example.com/servers/DHCP-01/scopes/Empty",
		"server": "http://example.com/servers/DHCP-01",
	} {
		if body.Links[rel] != want {
			t.Errorf("%s = %q, want %q", rel, body.Links[rel], want)
		}
	}
}

func TestListScopes_FilterByState(t *testing.T) {
	router := NewRouter(inventory.Static(testInventory(true)), "")

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?state=enabled", 1},
		{"?state=enabledSwitched", 1},
		{"?state=ENABLED&name=main", 1},
		{"?name=ma", 1},
		{"?ip=10.0.0", 1},
		{"?state=", 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec, body := get(t, router, "/servers/DHCP-01/scopes"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if len(body.Items) != tt.want {
				t.Errorf("got %d items, want %d", len(body.Items), tt.want)
			}
		})
	}
}

func TestListReservations_FilterByMAC(t *testing.T) {
	router := NewRouter(inventory.Static(testInventory(true)), "")

	_, body := get(t, router, "/servers/DHCP-01/scopes/Main/reservations?mac=AA:BB:CC")
	if len(body.Items) != 1 {
		t.Errorf("expected colon-normalized MAC filter to match, got %d", len(body.Items))
	}
}

func TestGetScope_EscapedName(t *testing.T) {
	router := NewRouter(inventory.Static(testInventory(true)), "")

	rec, body := get(t, router, "/servers/DHCP-01/scopes/10.0.5.0%2F24")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body.Links["self"] != "http://example.com/servers/DHCP-01/scopes/10.0.5.0%2F24" {
		t.Errorf("self link = %q", body.Links["self"])
	}
}

func TestRoot_PublicURL(t *testing.T) {
	router := NewRouter(inventory.Static(testInventory(true)), "https://dhcp.example.net/api/")

	rec, body := get(t, router, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body.Links["servers"] != "https://dhcp.example.net/api/servers" {
		t.Errorf("servers link = %q", body.Links["servers"])
	}
}

func TestRoot_ForwardedProto(t *testing.T) {
	router := NewRouter(inventory.Static(testInventory(true)), "")

	req := httptest.NewRequest(http.MethodGet, "/servers", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "inventory.lan")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Links["self"] != "https://inventory.lan/servers" {
		t.Errorf("self link = %q", body.Links["self"])
	}
}

func TestProviderFailure_Returns503(t *testing.T) {
	failing := inventory.ProviderFunc(func(context.Context) (*inventory.Snapshot, error) {
		return nil, errors.New("kea unreachable")
	})
	router := NewRouter(failing, "")

	rec, body := get(t, router, "/servers")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if body.Code != http.StatusServiceUnavailable || body.Links["base"] == "" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router := NewRouter(inventory.Static(testInventory(true)), "")

	req := httptest.NewRequest(http.MethodDelete, "/servers/DHCP-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	router := NewRouter(inventory.Static(testInventory(true)), "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if len(rec.Header().Get(RequestIDHeader)) != 36 {
		t.Errorf("expected generated uuid, got %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestRecovery(t *testing.T) {
	panicking := inventory.ProviderFunc(func(context.Context) (*inventory.Snapshot, error) {
		panic("boom")
	})

	tests := []struct {
		name      string
		publicURL string
		wantBase  string
	}{
		{"request origin", "", "http://example.com/"},
		{"public url", "https://dhcp.example.net/api/", "https://dhcp.example.net/api/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := get(t, NewRouter(panicking, tt.publicURL), "/servers")
			if rec.Code != http.StatusInternalServerError || body.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if body.Links["base"] != tt.wantBase {
				t.Errorf("base link = %q, want %q", body.Links["base"], tt.wantBase)
			}
		})
	}
}
