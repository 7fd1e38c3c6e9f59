package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeName lowercases a display name and strips diacritics so that
// "Trà Sữa" and "tra sua" compare equal in searches.
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, name)
	if err != nil {
		normalized = name
	}

	// NFD does not decompose the Vietnamese đ.
	normalized = strings.ReplaceAll(normalized, "đ", "d")
	normalized = strings.ReplaceAll(normalized, "Đ", "D")

	return strings.ToLower(strings.TrimSpace(normalized))
}

// Slugify turns a display name into a URL-safe slug derived from its
// normalized form.
func Slugify(name string) string {
	s := nonAlnumPattern.ReplaceAllString(NormalizeName(name), "-")
	return strings.Trim(s, "-")
}

// IsSlug reports whether s already looks like a slug.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}
