package inventory

import (
	"encoding/json"
	"strings"
	"time"
)

// ScopeState is the administrative state of a scope.
type ScopeState string

const (
	ScopeDisabled         ScopeState = "disabled"
	ScopeDisabledSwitched ScopeState = "disabledSwitched"
	ScopeEnabled          ScopeState = "enabled"
	ScopeEnabledSwitched  ScopeState = "enabledSwitched"
	ScopeInvalid          ScopeState = "invalidState"
	ScopeUnknown          ScopeState = "unknown"
)

// ParseScopeState maps a loosely written state ("Enabled", "disabled-switched",
// "invalid") to its canonical value. Anything unrecognised is ScopeUnknown.
func ParseScopeState(s string) ScopeState {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(NormalizeName(s))
	switch key {
	case "disabled":
		return ScopeDisabled
	case "disabledswitched":
		return ScopeDisabledSwitched
	case "enabled":
		return ScopeEnabled
	case "enabledswitched":
		return ScopeEnabledSwitched
	case "invalid", "invalidstate":
		return ScopeInvalid
	default:
		return ScopeUnknown
	}
}

// AddressState is the lease state of a client address.
type AddressState string

const (
	AddressActive   AddressState = "active"
	AddressDeclined AddressState = "declined"
	AddressOffered  AddressState = "offered"
	AddressDoomed   AddressState = "doomed"
	AddressUnknown  AddressState = "unknown"
)

// ParseAddressState maps s to an AddressState, falling back to AddressUnknown.
func ParseAddressState(s string) AddressState {
	switch st := AddressState(NormalizeName(s)); st {
	case AddressActive, AddressDeclined, AddressOffered, AddressDoomed:
		return st
	default:
		return AddressUnknown
	}
}

// ClientType tags how a client obtained or may obtain its address.
type ClientType string

const (
	ClientBOOTP       ClientType = "BOOTP"
	ClientDHCP        ClientType = "DHCP"
	ClientReservation ClientType = "Reservation"
)

var clientTypeOrder = []ClientType{ClientBOOTP, ClientDHCP, ClientReservation}

// ParseClientType returns the canonical tag for s and whether it is known.
func ParseClientType(s string) (ClientType, bool) {
	for _, t := range clientTypeOrder {
		if NamesEqual(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// ClientTypes is a set of tags kept in canonical order (BOOTP, DHCP,
// Reservation). The zero value is the empty set.
type ClientTypes struct {
	tags []ClientType
}

// NewClientTypes builds a set from tags, dropping duplicates and unknown values.
func NewClientTypes(tags ...ClientType) ClientTypes {
	var ct ClientTypes
	for _, known := range clientTypeOrder {
		for _, t := range tags {
			if t == known {
				ct.tags = append(ct.tags, known)
				break
			}
		}
	}
	return ct
}

// Has reports whether the set contains t.
func (c ClientTypes) Has(t ClientType) bool {
	for _, tag := range c.tags {
		if tag == t {
			return true
		}
	}
	return false
}

// Slice returns a copy of the tags in canonical order.
func (c ClientTypes) Slice() []ClientType {
	out := make([]ClientType, len(c.tags))
	copy(out, c.tags)
	return out
}

// AllocationTypes returns the set with the Reservation tag dropped, leaving
// only the protocols a reservation may be served over.
func (c ClientTypes) AllocationTypes() ClientTypes {
	var out ClientTypes
	for _, tag := range c.tags {
		if tag != ClientReservation {
			out.tags = append(out.tags, tag)
		}
	}
	return out
}

func (c ClientTypes) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Slice())
}

func (c *ClientTypes) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tags := make([]ClientType, 0, len(raw))
	for _, s := range raw {
		if t, ok := ParseClientType(s); ok {
			tags = append(tags, t)
		}
	}
	*c = NewClientTypes(tags...)
	return nil
}

// Option is a DHCP option with its values already formatted for display.
type Option struct {
	ID     int      `json:"optionId"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// IPRange is an inclusive address range.
type IPRange struct {
	Start string `json:"startIpAddress"`
	End   string `json:"endIpAddress"`
}

// Server is a DHCP server and the scopes it manages.
type Server struct {
	Name      string   `json:"name"`
	IPAddress string   `json:"ipAddress"`
	Version   string   `json:"version"`
	Options   []Option `json:"options"`

	Scopes []Scope `json:"-"`
}

// Scope is an address pool on a server.
type Scope struct {
	Name             string     `json:"name"`
	IPAddress        string     `json:"ipAddress"`
	SubnetMask       string     `json:"subnetMask"`
	LeaseDuration    int64      `json:"leaseDurationInSeconds"`
	Comment          string     `json:"comment"`
	State            ScopeState `json:"state"`
	IPRange          IPRange    `json:"ipRange"`
	ExcludedIPRanges []IPRange  `json:"excludedIpRanges"`
	Options          []Option   `json:"options"`

	Clients      []Client      `json:"-"`
	Reservations []Reservation `json:"-"`
}

// Client is a lease holder in a scope.
type Client struct {
	Name           string       `json:"name"`
	AddressState   AddressState `json:"addressState"`
	IPAddress      string       `json:"ipAddress"`
	SubnetMask     string       `json:"subnetMask"`
	MACAddress     string       `json:"macAddress"`
	LeaseExpired   bool         `json:"leaseHasExpired"`
	LeaseExpires   *time.Time   `json:"leaseExpiryDate"`
	HasReservation bool         `json:"hasReservation"`
	Types          ClientTypes  `json:"types"`
}

// Reservation is a static MAC to address binding in a scope.
type Reservation struct {
	IPAddress          string      `json:"ipAddress"`
	SubnetMask         string      `json:"subnetMask"`
	MACAddress         string      `json:"macAddress"`
	AllowedClientTypes ClientTypes `json:"allowedClientTypes"`
	Options            []Option    `json:"options"`
}
