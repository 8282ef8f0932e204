package inventory

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Servers: []Server{
			{
				Name:      "DHCP-01",
				IPAddress: "10.0.0.2",
				Version:   "Kea 2.6.1",
				Scopes: []Scope{
					{
						Name:       "Main",
						IPAddress:  "10.0.0.0",
						SubnetMask: "255.255.255.0",
						State:      ScopeEnabled,
						Clients: []Client{
							{
								Name:           "laptop",
								IPAddress:      "10.0.0.50",
								MACAddress:     "AA:BB:CC:DD:EE:FF",
								AddressState:   AddressActive,
								HasReservation: true,
								Types:          NewClientTypes(ClientDHCP, ClientReservation),
							},
							{
								Name:         "phone",
								IPAddress:    "10.0.0.51",
								MACAddress:   "11:22:33:44:55:66",
								AddressState: AddressDeclined,
								Types:        NewClientTypes(ClientDHCP),
							},
						},
						Reservations: []Reservation{
							{IPAddress: "10.0.0.50", MACAddress: "aabbccddeeff"},
							{IPAddress: "10.0.0.60", MACAddress: "de:ad:be:ef:00:01"},
						},
					},
					{
						Name:       "Guest",
						IPAddress:  "10.0.1.0",
						SubnetMask: "255.255.255.0",
						State:      ScopeEnabledSwitched,
					},
					{
						Name:      "Lab",
						IPAddress: "10.0.2.0",
						State:     ScopeDisabled,
					},
				},
			},
			{
				Name:      "dhcp-02",
				IPAddress: "10.1.0.2",
				Version:   "dnsmasq",
			},
		},
	}
}
