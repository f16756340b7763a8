package identity

import (
	"regexp"
	"strings"
)

// Upstream identifiers arrive prefixed with a source tag ("jambase:123").
// The stored external identifier is the bare part after the tag.

var (
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
)

// StripSource removes the source-tag prefix from an upstream identifier.
func StripSource(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if i := strings.IndexByte(identifier, ':'); i >= 0 {
		return identifier[i+1:]
	}
	return identifier
}

// ArtistKey returns the natural key for a performer identifier, or "" when
// the performer carries none.
func ArtistKey(identifier string) string {
	return StripSource(identifier)
}

// EventKey returns the natural key for an event identifier, or "".
func EventKey(identifier string) string {
	return StripSource(identifier)
}

// VenueKey returns the natural key for a venue: the stripped external
// identifier when present, otherwise a normalized-name fallback. The
// fallback is namespaced so it can never collide with a real identifier.
// Two venues sharing a name and lacking identifiers collapse into one key;
// that is a known upstream data-quality gap, not a bug here.
func VenueKey(identifier, name string) string {
	if key := StripSource(identifier); key != "" {
		return key
	}
	if normalized := NormalizeName(name); normalized != "" {
		return "name:" + normalized
	}
	return ""
}

// NormalizeName lowercases, strips punctuation, and collapses whitespace so
// cosmetic differences don't split the fallback key.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = nonAlnumRegex.ReplaceAllString(name, " ")
	name = multiSpaceRegex.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
