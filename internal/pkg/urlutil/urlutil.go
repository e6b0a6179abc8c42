package urlutil

import (
	"net/url"
	"strings"
)

// Canonicalize trims whitespace and the trailing slash so that the same
// site configured as "https://a.example/" and "https://a.example" maps
// to one key everywhere (mappings, targets, signatures).
func Canonicalize(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), "/")
}

func Host(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Host
}
