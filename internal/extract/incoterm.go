package extract

import (
	"regexp"
	"strings"
)

var (
	// incotermLabelPattern matches structured labels such as
	// "TERM: FOB" or "Incoterm : CIF Djibouti".
	incotermLabelPattern = regexp.MustCompile(`(?i)\b(?:incoterms?|terms?)\s*:\s*([A-Za-z]{3})\b`)

	// incotermFreePattern matches bare incoterm-shaped tokens.
	incotermFreePattern = regexp.MustCompile(`\b([A-Z]{3})\b`)
)

// FindIncoterm extracts the governing incoterm from a thread. A
// structured TERM:/Incoterm: label wins; otherwise the LAST free-text
// occurrence of a known token is taken, since later mentions in a
// negotiation supersede earlier ones. Returns the token and the line
// it was found on, or "" when absent.
func FindIncoterm(text string) (term, excerpt string) {
	if m := incotermLabelPattern.FindStringSubmatch(text); m != nil {
		token := strings.ToUpper(m[1])
		if incotermTokens[token] {
			return token, lineOf(text, m[0])
		}
	}

	var last string
	var lastMatch string
	for _, m := range incotermFreePattern.FindAllStringSubmatch(text, -1) {
		if incotermTokens[m[1]] {
			last = m[1]
			lastMatch = m[0]
		}
	}
	if last == "" {
		return "", ""
	}
	return last, lineOf(text, lastMatch)
}

// lineOf returns the last line of text containing needle, trimmed.
func lineOf(text, needle string) string {
	var found string
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, needle) {
			found = strings.TrimSpace(line)
		}
	}
	return found
}
