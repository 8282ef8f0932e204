package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Kea Control Agent result codes. Anything else is an error.
const (
	keaResultSuccess = 0
	keaResultEmpty   = 3
)

type keaCommand struct {
	Command   string         `json:"command"`
	Service   []string       `json:"service"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type keaResponse[T any] struct {
	Result    int    `json:"result"`
	Text      string `json:"text"`
	Arguments T      `json:"arguments"`
}

// keaClient talks to a Kea Control Agent. The daemon version is cached
// after the first successful call.
type keaClient struct {
	httpClient *http.Client
	url        string

	mu      sync.RWMutex
	version string
}

func newKeaClient(url string, httpClient *http.Client) *keaClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &keaClient{httpClient: httpClient, url: url}
}

// command posts a dhcp4 command and decodes its single response. ok is false
// when Kea answers "empty" (result 3).
func command[T any](ctx context.Context, c *keaClient, name string, args map[string]any) (resp keaResponse[T], ok bool, err error) {
	payload, err := json.Marshal(keaCommand{Command: name, Service: []string{"dhcp4"}, Arguments: args})
	if err != nil {
		return resp, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return resp, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return resp, false, fmt.Errorf("failed to send %s: %w", name, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return resp, false, fmt.Errorf("unexpected status code %d for %s", httpResp.StatusCode, name)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return resp, false, fmt.Errorf("failed to read response body: %w", err)
	}

	// The agent wraps per-service answers in an array; a daemon reached
	// directly answers with a bare object.
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		var list []keaResponse[T]
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return resp, false, fmt.Errorf("failed to unmarshal %s response: %w", name, err)
		}
		if len(list) == 0 {
			return resp, false, fmt.Errorf("empty %s response", name)
		}
		resp = list[0]
	} else if err := json.Unmarshal(trimmed, &resp); err != nil {
		return resp, false, fmt.Errorf("failed to unmarshal %s response: %w", name, err)
	}

	switch resp.Result {
	case keaResultSuccess:
		return resp, true, nil
	case keaResultEmpty:
		return resp, false, nil
	default:
		return resp, false, fmt.Errorf("%s failed (result %d): %s", name, resp.Result, resp.Text)
	}
}

// Version returns the dhcp4 daemon version, e.g. "2.4.1".
func (c *keaClient) Version(ctx context.Context) (string, error) {
	c.mu.RLock()
	v := c.version
	c.mu.RUnlock()
	if v != "" {
		return v, nil
	}

	resp, _, err := command[json.RawMessage](ctx, c, "version-get", nil)
	if err != nil {
		return "", err
	}

	v = strings.TrimSpace(resp.Text)
	c.mu.Lock()
	c.version = v
	c.mu.Unlock()
	return v, nil
}

func (c *keaClient) Config(ctx context.Context) (*keaConfig, error) {
	resp, ok, err := command[keaConfigArgs](ctx, c, "config-get", nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &keaConfig{}, nil
	}
	return &resp.Arguments.Dhcp4, nil
}

func (c *keaClient) Leases(ctx context.Context) ([]keaLease, error) {
	resp, ok, err := command[keaLeasesArgs](ctx, c, "lease4-get-all", nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return resp.Arguments.Leases, nil
}

type keaConfigArgs struct {
	Dhcp4 keaConfig `json:"Dhcp4"`
}

type keaConfig struct {
	ValidLifetime    *int64             `json:"valid-lifetime"`
	InterfacesConfig keaInterfaces      `json:"interfaces-config"`
	OptionData       []keaOptionData    `json:"option-data"`
	Subnets          []keaSubnet        `json:"subnet4"`
	SharedNetworks   []keaSharedNetwork `json:"shared-networks"`
}

type keaInterfaces struct {
	Interfaces []string `json:"interfaces"`
}

type keaSharedNetwork struct {
	Name          string          `json:"name"`
	ValidLifetime *int64          `json:"valid-lifetime"`
	OptionData    []keaOptionData `json:"option-data"`
	Subnets       []keaSubnet     `json:"subnet4"`
}

type keaSubnet struct {
	ID            int              `json:"id"`
	Subnet        string           `json:"subnet"`
	ValidLifetime *int64           `json:"valid-lifetime"`
	Pools         []keaPool        `json:"pools"`
	OptionData    []keaOptionData  `json:"option-data"`
	Reservations  []keaReservation `json:"reservations"`
	Comment       string           `json:"comment"`
	UserContext   keaUserContext   `json:"user-context"`
}

type keaUserContext struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
	State   string `json:"state"`
}

type keaPool struct {
	Pool string `json:"pool"`
}

type keaOptionData struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Data string `json:"data"`
}

type keaReservation struct {
	HWAddress  string          `json:"hw-address"`
	IPAddress  string          `json:"ip-address"`
	Hostname   string          `json:"hostname"`
	OptionData []keaOptionData `json:"option-data"`
}

type keaLeasesArgs struct {
	Leases []keaLease `json:"leases"`
}

type keaLease struct {
	HWAddress string `json:"hw-address"`
	IPAddress string `json:"ip-address"`
	Hostname  string `json:"hostname"`
	SubnetID  int    `json:"subnet-id"`
	CLTT      int64  `json:"cltt"`
	ValidLft  int64  `json:"valid-lft"`
	State     int    `json:"state"`
}
