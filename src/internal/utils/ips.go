package utils

import (
	"bytes"
	"fmt"
	"net"
	"strconv"
)

func IPv4ToNetmask(ipStr, maskStr string) (*net.IPNet, error) {
	// Parse the IPv4 address
	ip := net.ParseIP(ipStr)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("invalid IPv4 address: %s", ipStr)
	}

	// Parse the IPv4 mask
	mask := net.ParseIP(maskStr)
	if mask == nil || mask.To4() == nil {
		return nil, fmt.Errorf("invalid IPv4 mask: %s", maskStr)
	}

	ipNet := &net.IPNet{
		IP:   ip.To4(),
		Mask: net.IPMask(mask.To4()),
	}

	return ipNet, nil
}

// NetworkAddress returns the network address of ip under mask,
// e.g. ("192.168.1.77", "255.255.255.0") -> "192.168.1.0".
func NetworkAddress(ipStr, maskStr string) (string, error) {
	ipNet, err := IPv4ToNetmask(ipStr, maskStr)
	if err != nil {
		return "", err
	}
	return ipNet.IP.Mask(ipNet.Mask).String(), nil
}

// SplitCIDR returns the network address and dotted mask of an IPv4 CIDR.
func SplitCIDR(cidr string) (network, mask string, err error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return "", "", err
	}
	if ip.To4() == nil {
		return "", "", fmt.Errorf("not an IPv4 network: %s", cidr)
	}
	return ipNet.IP.String(), net.IP(ipNet.Mask).String(), nil
}

// CIDRRange returns the first and last usable host addresses of an IPv4 CIDR.
// /31 and /32 networks return their bounds as-is.
func CIDRRange(cidr string) (start, end string, err error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return "", "", err
	}
	first := ipNet.IP.To4()
	if first == nil {
		return "", "", fmt.Errorf("not an IPv4 network: %s", cidr)
	}

	last := make(net.IP, len(first))
	for i := range first {
		last[i] = first[i] | ^ipNet.Mask[i]
	}

	if ones, _ := ipNet.Mask.Size(); ones < 31 {
		first = nextIP(first)
		last = prevIP(last)
	}
	return first.String(), last.String(), nil
}

// RangeContains reports whether ip lies in the inclusive range [start, end].
// Unparsable input yields false.
func RangeContains(startStr, endStr, ipStr string) bool {
	start, end, ip := net.ParseIP(startStr), net.ParseIP(endStr), net.ParseIP(ipStr)
	if start == nil || end == nil || ip == nil {
		return false
	}
	start, end, ip = start.To16(), end.To16(), ip.To16()
	return bytes.Compare(ip, start) >= 0 && bytes.Compare(ip, end) <= 0
}

// IsValidPort reports whether str is a TCP/UDP port number in 1..65535.
func IsValidPort(str string) bool {
	port, err := strconv.Atoi(str)
	return err == nil && port > 0 && port <= 65535
}

func nextIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)
	for i := len(out) - 1; i >= 0; i-- {
		out[i]++
		if out[i] != 0 {
			break
		}
	}
	return out
}

func prevIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)
	for i := len(out) - 1; i >= 0; i-- {
		out[i]--
		if out[i] != 0xff {
			break
		}
	}
	return out
}
