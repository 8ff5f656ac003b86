// Package identity maps raw account identifiers to stable, filesystem-safe
// cache key segments.
//
// The rewrite rules are part of the on-disk token format contract: a cached
// credential is stored under a filename derived from the normalized
// identity, so changing the rules orphans every previously cached token.
// Treat any modification here as a breaking format change.
package identity

import "strings"

// Normalize rewrites an account identifier (typically an email address)
// into a string that is safe to use as a path segment.
//
// Rules, applied per character:
//   - '@' becomes "_at_"
//   - '.' becomes "_dot_"
//   - ASCII letters, digits, '_' and '-' pass through unchanged
//   - anything else becomes '_'
//
// The function is pure and idempotent: the output contains no '@' or '.'
// and only pass-through characters, so normalizing twice yields the same
// result.
func Normalize(identity string) string {
	var b strings.Builder
	b.Grow(len(identity) + 8)

	for _, r := range identity {
		switch {
		case r == '@':
			b.WriteString("_at_")
		case r == '.':
			b.WriteString("_dot_")
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	return b.String()
}
