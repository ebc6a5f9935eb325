package extract

import (
	"regexp"
	"strings"
)

// ModeSignal is the arbitrated transport-mode reading of a text.
type ModeSignal struct {
	// Mode is "sea", "air" or "" when neither is established.
	Mode string

	// Explicit is true when the mode came from explicit vocabulary
	// rather than inference.
	Explicit bool

	// Evidence is the phrase or token that decided the call.
	Evidence string
}

var iataPairPattern = regexp.MustCompile(`\b([A-Z]{3})\s*[-/–>]\s*([A-Z]{3})\b`)

// ArbitrateMode decides the transport mode for a thread. Explicit
// maritime vocabulary, or a non-empty parsed container list, always
// overrides air signals. Air is accepted only from a trigger phrase
// or an unambiguous whitelisted IATA code pair.
func ArbitrateMode(text string, containers []ContainerSpec) ModeSignal {
	lower := strings.ToLower(text)

	if len(containers) > 0 {
		return ModeSignal{Mode: "sea", Explicit: true, Evidence: containers[0].String()}
	}
	for _, kw := range maritimeKeywords {
		if containsWord(lower, kw) {
			return ModeSignal{Mode: "sea", Explicit: true, Evidence: kw}
		}
	}

	for _, phrase := range airTriggerPhrases {
		if containsWord(lower, phrase) {
			return ModeSignal{Mode: "air", Explicit: true, Evidence: phrase}
		}
	}

	// IATA pair inference: both codes must be whitelisted, so a
	// coincidental 3-letter token (or an incoterm) never passes.
	for _, m := range iataPairPattern.FindAllStringSubmatch(text, -1) {
		if airportPairCodes[m[1]] && airportPairCodes[m[2]] {
			return ModeSignal{Mode: "air", Explicit: false, Evidence: m[1] + "-" + m[2]}
		}
	}

	return ModeSignal{}
}

// containsWord reports whether needle occurs in haystack delimited by
// non-letter characters. Needles with spaces match as phrases.
func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
