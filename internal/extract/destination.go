package extract

import (
	"regexp"
	"strings"
)

var geoCoordPattern = regexp.MustCompile(`-?\d{1,3}[.,]\d+\s*[,;]?\s*-?\d{1,3}[.,]\d+|\d{1,3}°`)

// FilterDestinationCity validates a destination candidate. It rejects
// geocoordinate tokens, resort/hotel names and street addresses, and
// accepts only recognisable city/commune tokens. Returns the
// canonical token or "" when the candidate must be discarded.
func FilterDestinationCity(candidate string) string {
	c := strings.TrimSpace(candidate)
	if c == "" {
		return ""
	}
	lower := strings.ToLower(c)

	if geoCoordPattern.MatchString(c) {
		return ""
	}
	for _, marker := range resortMarkers {
		if strings.Contains(lower, marker) {
			return ""
		}
	}
	for _, marker := range addressMarkers {
		if strings.Contains(lower, marker) {
			return ""
		}
	}

	token := normaliseToken(c)
	if _, ok := knownCities[token]; ok {
		return token
	}
	return ""
}

// normaliseToken upper-cases and collapses whitespace for table
// lookups.
func normaliseToken(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
