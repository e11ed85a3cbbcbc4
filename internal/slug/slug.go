// Package slug turns pen titles into filesystem-safe file stems.
package slug

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Normalize maps an arbitrary title to a lowercase slug made of letters,
// digits and single '-' separators. It never fails; an input with no
// alphanumerics yields the empty string.
func Normalize(title string) string {
	s := strings.TrimSpace(title)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return strings.TrimSpace(strings.ToLower(s))
}

// WithHash appends a short, stable hash of key to stem. It is used when two
// different pens normalize to the same stem, or when a stem is empty.
func WithHash(stem, key string) string {
	sum := sha1.Sum([]byte(key))
	short := hex.EncodeToString(sum[:])[:7]
	if stem == "" {
		return "pen-" + short
	}
	return stem + "-" + short
}
