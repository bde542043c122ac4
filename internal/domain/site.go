package domain

import "strings"

// NormalizeSite lowercases a NEXRAD station identifier for use in requests.
// No other validation happens here; an unknown site surfaces later as an
// empty time list or a remote error.
func NormalizeSite(site string) string {
	return strings.ToLower(strings.TrimSpace(site))
}
