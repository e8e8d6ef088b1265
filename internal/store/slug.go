package store

import (
	"strconv"
	"strings"
	"unicode"
)

// slugify derives a URL-safe identifier from a display name:
// lowercase, spaces to hyphens, anything that is not a letter,
// digit, or hyphen dropped. Unicode letters are kept.
func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// uniqueSlug suffixes -1, -2, ... until the slug is free per taken.
func uniqueSlug(name string, taken func(string) bool) string {
	base := slugify(name)
	if base == "" {
		base = "item"
	}
	slug := base
	for n := 1; taken(slug); n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	return slug
}
