package api

import "regexp"

// domainPattern accepts syntactically plausible host names: dot-separated
// labels of letters, digits, and inner hyphens, at least two labels.
var domainPattern = regexp.MustCompile(
	`^(?i)[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)+$`,
)

// ValidDomain reports whether s looks like a resolvable host name.
// Malformed input is rejected before any scan work starts.
func ValidDomain(s string) bool {
	if len(s) == 0 || len(s) > 253 {
		return false
	}
	return domainPattern.MatchString(s)
}
