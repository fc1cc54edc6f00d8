// utils/filename.go
package utils

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// stripDiacritics decomposes the string and drops combining marks, so
// "relatório" becomes "relatorio" before it reaches the file store.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SanitizeFilename rewrites an uploaded filename into a storage-safe
// form: diacritics stripped, every run of non-alphanumerics collapsed to
// a single underscore, extension lowercased.
func SanitizeFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	base = nonAlphanumeric.ReplaceAllString(stripDiacritics(base), "_")
	base = strings.Trim(base, "_")
	if base == "" {
		base = "file"
	}

	ext = strings.ToLower(nonAlphanumeric.ReplaceAllString(stripDiacritics(ext), ""))
	if ext != "" {
		ext = "." + ext
	}

	return base + ext
}

// TimestampedName prefixes a sanitized filename with a second-resolution
// timestamp, the naming contract the file store expects.
func TimestampedName(name string, now time.Time) string {
	return now.Format("20060102150405") + "_" + SanitizeFilename(name)
}
