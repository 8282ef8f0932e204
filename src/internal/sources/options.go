package sources

import (
	"strconv"
	"strings"

	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
)

type optionDef struct {
	label   string
	dnsmasq string
	kea     string
}

// Labels follow the names DHCP administrators usually see in management consoles.
var optionDefs = map[int]optionDef{
	1:   {"Subnet Mask", "netmask", "subnet-mask"},
	2:   {"Time Offset", "time-offset", "time-offset"},
	3:   {"Router", "router", "routers"},
	6:   {"DNS Servers", "dns-server", "domain-name-servers"},
	12:  {"Host Name", "hostname", "host-name"},
	15:  {"DNS Domain Name", "domain-name", "domain-name"},
	26:  {"Interface MTU", "mtu", "interface-mtu"},
	28:  {"Broadcast Address", "broadcast", "broadcast-address"},
	42:  {"NTP Servers", "ntp-server", "ntp-servers"},
	44:  {"WINS/NBNS Servers", "netbios-ns", "netbios-name-servers"},
	46:  {"WINS/NBT Node Type", "netbios-nodetype", "netbios-node-type"},
	51:  {"Lease Time", "lease-time", "dhcp-lease-time"},
	66:  {"Boot Server Host Name", "tftp-server", "tftp-server-name"},
	67:  {"Bootfile Name", "bootfile-name", "boot-file-name"},
	119: {"Domain Search List", "domain-search", "domain-search"},
	121: {"Classless Static Routes", "classless-static-route", "classless-static-route"},
	252: {"WPAD", "", "wpad"},
}

// optionLabel returns the display label for code, or a generic one.
func optionLabel(code int) string {
	if def, ok := optionDefs[code]; ok {
		return def.label
	}
	return "Option " + strconv.Itoa(code)
}

// dnsmasqOptionCode resolves "3", "option:router" or "router" to a code.
func dnsmasqOptionCode(s string) (int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "option:")
	if code, err := strconv.Atoi(s); err == nil {
		return code, true
	}
	for code, def := range optionDefs {
		if def.dnsmasq != "" && def.dnsmasq == s {
			return code, true
		}
	}
	return 0, false
}

// keaOptionCode resolves a Kea option-data entry to a code, preferring the
// explicit code over the name.
func keaOptionCode(code int, name string) (int, bool) {
	if code > 0 {
		return code, true
	}
	for c, def := range optionDefs {
		if def.kea == name {
			return c, true
		}
	}
	return 0, false
}

func newOption(code int, values []string) inventory.Option {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return inventory.Option{ID: code, Label: optionLabel(code), Values: out}
}
