package hal

import "github.com/maksimkurb/keen-dhcp/src/internal/inventory"

// The present* helpers return display copies: nil lists become empty lists
// and MAC addresses lose their colons. The snapshot itself is left alone.

func presentServer(s inventory.Server) inventory.Server {
	s.Options = presentOptions(s.Options)
	return s
}

func presentScope(s inventory.Scope) inventory.Scope {
	if s.ExcludedIPRanges == nil {
		s.ExcludedIPRanges = []inventory.IPRange{}
	}
	if s.State == "" {
		s.State = inventory.ScopeUnknown
	}
	s.Options = presentOptions(s.Options)
	return s
}

func presentClient(c inventory.Client) inventory.Client {
	c.MACAddress = inventory.CompactMAC(c.MACAddress)
	if c.AddressState == "" {
		c.AddressState = inventory.AddressUnknown
	}
	return c
}

func presentReservation(r inventory.Reservation) inventory.Reservation {
	r.MACAddress = inventory.CompactMAC(r.MACAddress)
	r.Options = presentOptions(r.Options)
	return r
}

func presentOptions(opts []inventory.Option) []inventory.Option {
	if opts == nil {
		return []inventory.Option{}
	}
	out := make([]inventory.Option, len(opts))
	for i, o := range opts {
		if o.Values == nil {
			o.Values = []string{}
		}
		out[i] = o
	}
	return out
}
