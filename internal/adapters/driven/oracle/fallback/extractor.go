// Package fallback implements the deterministic regex extraction
// oracle. It is substituted for the AI extractor whenever that path
// is unavailable or fails, and is never retried or combined with it.
package fallback

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
	"github.com/custodia-labs/caseintake/internal/extract"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor is the regex-based oracle. Lower recall than the AI path
// but fully deterministic; confidence is fixed per pattern.
type Extractor struct{}

// New creates a new fallback extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name identifies the implementation for audit entries.
func (e *Extractor) Name() string {
	return "regex-fallback"
}

// Extract proposes candidate facts from deterministic patterns over
// the combined thread and attachment text.
func (e *Extractor) Extract(_ context.Context, threadText, attachmentText string) ([]domain.CandidateFact, error) {
	text := threadText
	if attachmentText != "" {
		text = text + "\n" + attachmentText
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var out []domain.CandidateFact

	containers := extract.ParseContainers(text)
	if len(containers) > 0 {
		if payload, err := json.Marshal(containers); err == nil {
			out = append(out, domain.CandidateFact{
				Key:        domain.KeyContainers,
				Category:   domain.CategoryCargo,
				Value:      domain.StructuredValue(payload),
				Confidence: 0.9,
				Excerpt:    containers[0].String(),
			})
		}
	}

	if sig := extract.ArbitrateMode(text, containers); sig.Mode != "" {
		out = append(out, domain.CandidateFact{
			Key:        domain.KeyTransportMode,
			Category:   domain.CategoryRouting,
			Value:      domain.TextValue(sig.Mode),
			Confidence: modeConfidence(sig),
			Excerpt:    sig.Evidence,
		})
	}

	if term, excerpt := extract.FindIncoterm(text); term != "" {
		out = append(out, domain.CandidateFact{
			Key:        domain.KeyIncoterm,
			Category:   domain.CategoryRouting,
			Value:      domain.TextValue(term),
			Confidence: 0.85,
			Excerpt:    excerpt,
		})
	}

	if kg, excerpt, ok := extract.FindGrossWeightKg(text); ok {
		out = append(out, domain.CandidateFact{
			Key:        domain.KeyGrossWeightKg,
			Category:   domain.CategoryCargo,
			Value:      domain.NumberValue(kg),
			Confidence: 0.8,
			Excerpt:    excerpt,
		})
	}

	if cbm, excerpt, ok := extract.FindVolumeCbm(text); ok {
		out = append(out, domain.CandidateFact{
			Key:        domain.KeyVolumeCbm,
			Category:   domain.CategoryCargo,
			Value:      domain.NumberValue(cbm),
			Confidence: 0.8,
			Excerpt:    excerpt,
		})
	}

	if digits, excerpt, ok := extract.FindHSCode(text); ok {
		out = append(out, domain.CandidateFact{
			Key:        domain.KeyHSCode,
			Category:   domain.CategoryCargo,
			Value:      domain.TextValue(digits),
			Confidence: 0.8,
			Excerpt:    excerpt,
		})
	}

	if city, excerpt := findDestination(text); city != "" {
		out = append(out, domain.CandidateFact{
			Key:        domain.KeyDestinationCity,
			Category:   domain.CategoryRouting,
			Value:      domain.TextValue(city),
			Confidence: 0.75,
			Excerpt:    excerpt,
		})
	}

	return out, nil
}

func modeConfidence(sig extract.ModeSignal) float64 {
	if sig.Explicit {
		return 0.9
	}
	return 0.7
}

// destinationMarkers introduce a destination statement in free text.
var destinationMarkers = []string{
	"destination", "to ", "à destination de", "pour ", "delivery to",
	"livraison à", "livraison a",
}

// findDestination scans line by line for a destination statement
// passing the city filter.
func findDestination(text string) (city, excerpt string) {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, marker := range destinationMarkers {
			idx := strings.Index(lower, marker)
			if idx < 0 {
				continue
			}
			candidate := strings.TrimSpace(line[idx+len(marker):])
			candidate = strings.Trim(candidate, ".,;:")
			if c := extract.FilterDestinationCity(candidate); c != "" {
				return c, strings.TrimSpace(line)
			}
			// Try the first word pair too: "delivery to Djibouti port".
			words := strings.Fields(candidate)
			for n := min(3, len(words)); n >= 1; n-- {
				if c := extract.FilterDestinationCity(strings.Join(words[:n], " ")); c != "" {
					return c, strings.TrimSpace(line)
				}
			}
		}
	}
	return "", ""
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
