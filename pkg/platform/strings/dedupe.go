// Package strings holds small string helpers shared by config consumers.
package strings

import (
	"slices"
	"strings"
)

// DedupeAndTrim trims every value and drops blanks and repeats, keeping the
// first occurrence's position. It is used on comma-separated settings such
// as broker lists, where "a, b,,a" must become [a b].
func DedupeAndTrim(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
