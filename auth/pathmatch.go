package auth

import (
	"strings"
)

const (
	// Wildcard ends a pattern that matches every path sharing its prefix.
	Wildcard = "*"
)

// RequiresAuth reports whether path falls outside every excluded pattern.
//
// Both sides are compared with a trailing slash, so "/a" and "/a/" are the
// same path. A pattern ending in Wildcard exempts any path starting with the
// text before the wildcard. Patterns are evaluated in order and the first
// match wins. An empty path or pattern list always requires auth.
func RequiresAuth(path string, excluded []string) bool {
	if path == "" || len(excluded) == 0 {
		return true
	}
	path = withSlash(path)
	for _, pattern := range excluded {
		if pattern == "" {
			continue
		}
		if prefix, ok := wildcardPrefix(pattern); ok {
			if strings.HasPrefix(path, prefix) {
				return false
			}
			continue
		}
		if path == withSlash(pattern) {
			return false
		}
	}
	return true
}

func withSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// wildcardPrefix accepts "/a/*" and "/a/*/" as the same pattern.
func wildcardPrefix(pattern string) (string, bool) {
	trimmed := strings.TrimSuffix(pattern, "/")
	if !strings.HasSuffix(trimmed, Wildcard) {
		return "", false
	}
	return strings.TrimSuffix(trimmed, Wildcard), true
}
