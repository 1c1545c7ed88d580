package util

import "strings"

// Truthy reports whether s spells out a boolean "on" value,
// as used by environment switches like SENTRY_DEBUG.
func Truthy(s string) bool {
	normalized := strings.ToLower(strings.TrimSpace(s))
	return normalized == "true" || normalized == "1" || normalized == "yes" || normalized == "on"
}
