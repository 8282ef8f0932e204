package inventory

import "strings"

// NormalizeName trims surrounding whitespace and lower-cases s.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NamesEqual compares two names ignoring case and surrounding whitespace.
func NamesEqual(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// NormalizeMAC removes colons, trims whitespace and lower-cases s.
// Malformed input is returned normalized rather than rejected.
func NormalizeMAC(s string) string {
	return NormalizeName(strings.ReplaceAll(s, ":", ""))
}

// MACEqual compares two MAC addresses with or without colon separators,
// ignoring case and surrounding whitespace.
func MACEqual(a, b string) bool {
	return NormalizeMAC(a) == NormalizeMAC(b)
}

// CompactMAC is the display form of a MAC address: colons removed, case and
// inner characters preserved.
func CompactMAC(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ":", ""))
}
