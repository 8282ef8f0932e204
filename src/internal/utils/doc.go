// Package utils provides small helpers shared by the inventory sources and
// the configuration loader: IPv4 range and mask arithmetic, and path
// resolution relative to the configuration file.
//
// # Example Usage
//
//	network, _ := utils.NetworkAddress("192.168.1.77", "255.255.255.0") // 192.168.1.0
//	start, end, _ := utils.CIDRRange("192.168.1.0/24")                 // .1 - .254
//	utils.RangeContains(start, end, "192.168.1.10")                     // true
//
//	absPath := utils.GetAbsolutePath("inventory.toml", "/etc/keen-dhcp")
//	// Returns: /etc/keen-dhcp/inventory.toml
package utils
