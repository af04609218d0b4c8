// Package slug derives URL-safe identifiers from human-readable titles.
package slug

import "strings"

// Normalize converts a title into its canonical slug: lower-case, only
// [a-z0-9-], whitespace runs collapsed to single hyphens, repeated hyphens
// collapsed, leading/trailing hyphens trimmed. Applying Normalize to its
// own output is a no-op.
func Normalize(title string) string {
	lowered := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '-':
			b.WriteByte('-')
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	return strings.Join(parts, "-")
}

// Matches reports whether a stored title resolves to the given slug.
func Matches(title, s string) bool {
	return Normalize(title) == s
}
