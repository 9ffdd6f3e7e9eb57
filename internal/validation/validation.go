package validation

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// MaxLocationLength caps a normalized location, in characters.
	MaxLocationLength = 80

	// MaxUserLength caps a normalized user handle.
	MaxUserLength = 25

	// MaxDisplayLength caps the provider label stored on a pin.
	MaxDisplayLength = 200

	// DefaultUser is used when a handle is absent or filters down to nothing.
	DefaultUser = "viewer"
)

// NormalizeLocation collapses whitespace runs to a single space, trims the
// ends and truncates to MaxLocationLength characters. Empty input yields "".
func NormalizeLocation(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	return strings.TrimSpace(truncate(s, MaxLocationLength))
}

// NormalizeUser keeps only [A-Za-z0-9_], truncates to MaxUserLength and falls
// back to DefaultUser when nothing is left.
func NormalizeUser(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw) && b.Len() < MaxUserLength; i++ {
		if isHandleByte(raw[i]) {
			b.WriteByte(raw[i])
		}
	}
	if b.Len() == 0 {
		return DefaultUser
	}
	return b.String()
}

// CacheKey folds a normalized query for geocode cache lookups.
func CacheKey(query string) string {
	return strings.ToLower(query)
}

// NormalizeDisplay bounds a provider label, falling back to the query text.
func NormalizeDisplay(label, query string) string {
	s := NormalizeLabel(label)
	if s == "" {
		return query
	}
	return s
}

// NormalizeLabel collapses whitespace and truncates to MaxDisplayLength.
func NormalizeLabel(label string) string {
	s := strings.Join(strings.Fields(label), " ")
	return strings.TrimSpace(truncate(s, MaxDisplayLength))
}

// ValidateCoordinates reports whether lat/lon are finite and inside the WGS84 ranges.
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func isHandleByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// truncate cuts s to at most n runes without splitting a character.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}
