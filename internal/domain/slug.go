package domain

import "strings"

// Slugify folds s to a URL-safe slug: lowercase, non-alphanumeric runs
// collapsed to single hyphens, no leading or trailing hyphen.
// "My Cool Template!" becomes "my-cool-template".
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
