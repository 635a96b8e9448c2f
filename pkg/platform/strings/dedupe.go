// Package strings holds small string-slice helpers.
package strings

import (
	"strings"
)

// DedupeAndTrimFold trims each value, drops empties and removes
// case-insensitive duplicates. The first spelling seen wins and order is
// preserved, so Minecraft names can be batched without sending "Notch" and
// "notch" as two lookups.
//
//	DedupeAndTrimFold([]string{"Notch", " notch", "jeb_", ""})
//	// []string{"Notch", "jeb_"}
func DedupeAndTrimFold(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
