package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	weightPattern = regexp.MustCompile(`(?i)\b(?:gross\s+weight|poids(?:\s+brut)?|weight|pds)\s*:?\s*([\d][\d\s.,]*)\s*(kg|kgs|t|to|mt|tonnes?)\b`)
	volumePattern = regexp.MustCompile(`(?i)\b(?:volume|vol|cubage)?\s*:?\s*([\d][\d.,]*)\s*(cbm|m3|m³)\b`)
	hsCodePattern = regexp.MustCompile(`(?i)\b(?:hs|sh|hts)\s*(?:code)?\s*:?\s*([\d][\d.\s-]{3,14}[\d])\b`)
)

// FindGrossWeightKg scans for a gross weight statement, converting
// tonnes to kilograms. The bool reports whether anything matched.
func FindGrossWeightKg(text string) (kg float64, excerpt string, ok bool) {
	m := weightPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	n, err := ParseDecimal(m[1])
	if err != nil {
		return 0, "", false
	}
	switch strings.ToLower(m[2]) {
	case "t", "to", "mt", "tonne", "tonnes":
		n *= 1000
	}
	return n, lineOf(text, m[0]), true
}

// FindVolumeCbm scans for a volume statement in cubic metres.
func FindVolumeCbm(text string) (cbm float64, excerpt string, ok bool) {
	m := volumePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	n, err := ParseDecimal(m[1])
	if err != nil {
		return 0, "", false
	}
	return n, lineOf(text, m[0]), true
}

// FindHSCode scans for a labelled commodity code and returns its
// digits only (punctuation stripped).
func FindHSCode(text string) (digits, excerpt string, ok bool) {
	m := hsCodePattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	d := DigitsOnly(m[1])
	if len(d) < 4 {
		return "", "", false
	}
	return d, lineOf(text, m[0]), true
}

// DigitsOnly strips everything but digits from a free-form code.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsHeavyLift reports whether a cargo description uses heavy-lift or
// project-cargo vocabulary.
func IsHeavyLift(description string) bool {
	lower := strings.ToLower(description)
	for _, kw := range heavyLiftKeywords {
		if containsWord(lower, kw) {
			return true
		}
	}
	return false
}

// ParseDecimal handles "1 234,5", "1,234.56", "1234.5" and "1.234,56".
// A comma followed by exactly three digits at the end of a group is
// read as a thousands separator, otherwise as a decimal mark.
func ParseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// 1.234,56 — European
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56 — Anglo
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		i := strings.LastIndex(s, ",")
		digitsAfter := len(s) - i - 1
		switch {
		case strings.Count(s, ",") > 1:
			// 1,234,567 — thousands groups
			s = strings.ReplaceAll(s, ",", "")
		case digitsAfter == 3 && i >= 1:
			// 12,500 — single comma with three trailing digits
			s = strings.ReplaceAll(s, ",", "")
		default:
			// 1234,5 — decimal comma
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	return strconv.ParseFloat(s, 64)
}
