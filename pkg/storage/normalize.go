package storage

import (
	"strings"

	strip "github.com/grokify/html-strip-tags-go"
)

// NormalizeText trims s and collapses runs of whitespace to single spaces.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeText strips HTML markup from free text typed by contributors
// before normalizing it. Line breaks survive as single newlines.
func SanitizeText(s string) string {
	s = strip.StripTags(s)
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = NormalizeText(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
