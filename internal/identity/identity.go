// Package identity canonicalizes noisy player display names into stable keys.
//
// Chat senders arrive with decorations (party markers, link icons), with their
// home world glued onto the surname, or with inconsistent casing. Resolve maps
// all of those variants onto a single lowercase "firstname lastname" key so the
// game modules can correlate rolls from the same person across turns.
package identity

import (
	"regexp"
	"strings"
	"unicode"
)

// camelBoundary matches a lowercase-to-uppercase transition, which is how a
// concatenated world suffix shows up ("Ashe SherCactuar").
var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// Resolve derives a canonical identity key and a clean display name from a raw
// sender string. The mapping is deterministic and idempotent: resolving a
// previously returned display name yields the same key. Blank input resolves
// to ("", ""); callers must treat an empty key as "discard event".
func Resolve(raw string) (key, display string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ""
	}

	// Strip leading decoration characters (star markers, control bytes).
	runes := []rune(trimmed)
	start := 0
	for start < len(runes) && (runes[start] < 32 || !(unicode.IsLetter(runes[start]) || unicode.IsDigit(runes[start]))) {
		start++
	}
	trimmed = string(runes[start:])

	split := camelBoundary.ReplaceAllString(trimmed, "$1 $2")
	combined := strings.Join(strings.Fields(split), " ")
	combined = stripWorldSuffix(combined)

	parts := strings.Fields(combined)
	switch {
	case len(parts) >= 2:
		display = parts[0] + " " + parts[1]
	case len(parts) == 1:
		display = parts[0]
	default:
		return "", ""
	}

	return strings.ToLower(display), display
}

// Key is a convenience wrapper for callers that only need the identity key.
func Key(raw string) string {
	key, _ := Resolve(raw)
	return key
}

// stripWorldSuffix removes one trailing world name, if present. The match is a
// case-insensitive suffix check so "SherCactuar" (already split) and a bare
// trailing "Cactuar" token are both handled.
func stripWorldSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, world := range knownWorlds {
		if strings.HasSuffix(lower, world) {
			return strings.TrimSpace(name[:len(name)-len(world)])
		}
	}
	return name
}
