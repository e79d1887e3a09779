package utils

import "strings"

// Truncate shortens s to n characters for log output, appending "..."
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// NormaliseList trims, upper- or lower-cases and de-duplicates list values,
// dropping empties. Order of first occurrence is preserved.
func NormaliseList(values []string, upper bool) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if upper {
			v = strings.ToUpper(v)
		} else {
			v = strings.ToLower(v)
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Ptr returns a pointer to a copy of v, for optional request fields
func Ptr[T any](v T) *T {
	return &v
}
