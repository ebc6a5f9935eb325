package oracle

import (
	"context"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
	"github.com/custodia-labs/caseintake/internal/extract"
	"github.com/custodia-labs/caseintake/internal/logger"
)

// Ensure Failover implements the interface.
var _ driven.Extractor = (*Failover)(nil)

// Failover wraps the AI extractor with the deterministic fallback.
// The primary is called exactly once; on any failure the fallback is
// substituted, never a retry. The mandatory disambiguation rules are
// applied to whatever output was produced.
type Failover struct {
	primary  driven.Extractor
	fallback driven.Extractor

	// usedFallback records whether the last Extract call substituted
	// the deterministic extractor, for audit purposes.
	usedFallback bool
}

// NewFailover creates the wrapper. primary may be nil.
func NewFailover(primary, fb driven.Extractor) *Failover {
	return &Failover{primary: primary, fallback: fb}
}

// Name identifies the extractor that served the last call.
func (f *Failover) Name() string {
	if f.primary == nil || f.usedFallback {
		return f.fallback.Name()
	}
	return f.primary.Name()
}

// UsedFallback reports whether the last call substituted the
// deterministic extractor.
func (f *Failover) UsedFallback() bool {
	return f.usedFallback
}

// Extract runs the oracle and applies the disambiguation rules.
func (f *Failover) Extract(ctx context.Context, threadText, attachmentText string) ([]domain.CandidateFact, error) {
	var candidates []domain.CandidateFact
	var err error

	f.usedFallback = f.primary == nil
	if f.primary != nil {
		candidates, err = f.primary.Extract(ctx, threadText, attachmentText)
		if err != nil {
			logger.Warn("AI oracle failed, substituting deterministic extractor: %v", err)
			f.usedFallback = true
		}
	}
	if f.usedFallback {
		candidates, err = f.fallback.Extract(ctx, threadText, attachmentText)
		if err != nil {
			return nil, err
		}
	}

	return Disambiguate(candidates, threadText+"\n"+attachmentText), nil
}

// Disambiguate enforces the deterministic arbitration rules over
// oracle output, whichever implementation produced it:
//
//   - transport mode follows ArbitrateMode; an oracle air claim with
//     no explicit air signal in the text is dropped
//   - the incoterm follows the structured-label-then-last-mention
//     rule when the text names one
//   - destination cities must pass the city/commune filter
func Disambiguate(candidates []domain.CandidateFact, text string) []domain.CandidateFact {
	containers := extract.ParseContainers(text)
	sig := extract.ArbitrateMode(text, containers)
	term, termExcerpt := extract.FindIncoterm(text)

	out := make([]domain.CandidateFact, 0, len(candidates))
	var sawMode, sawIncoterm bool

	for _, c := range candidates {
		switch c.Key {
		case domain.KeyTransportMode:
			if sawMode {
				continue
			}
			if sig.Mode != "" {
				c.Value = domain.TextValue(sig.Mode)
				c.Excerpt = sig.Evidence
			} else if c.Value.Text == domain.ModeAir {
				// Air without an explicit trigger is never accepted.
				logger.Debug("dropping unsupported air mode claim")
				continue
			}
			sawMode = true

		case domain.KeyIncoterm:
			if sawIncoterm {
				continue
			}
			if term != "" {
				c.Value = domain.TextValue(term)
				c.Excerpt = termExcerpt
			} else if !extract.IsIncoterm(c.Value.Text) {
				continue
			}
			sawIncoterm = true

		case domain.KeyDestinationCity:
			city := extract.FilterDestinationCity(c.Value.Text)
			if city == "" {
				logger.Debug("dropping destination candidate %q", c.Value.Text)
				continue
			}
			c.Value = domain.TextValue(city)
		}
		out = append(out, c)
	}

	// The arbitration can establish a mode the oracle missed.
	if !sawMode && sig.Mode != "" {
		out = append(out, domain.CandidateFact{
			Key:        domain.KeyTransportMode,
			Category:   domain.CategoryRouting,
			Value:      domain.TextValue(sig.Mode),
			Confidence: 0.9,
			Excerpt:    sig.Evidence,
		})
	}
	if !sawIncoterm && term != "" {
		out = append(out, domain.CandidateFact{
			Key:        domain.KeyIncoterm,
			Category:   domain.CategoryRouting,
			Value:      domain.TextValue(term),
			Confidence: 0.85,
			Excerpt:    termExcerpt,
		})
	}

	return out
}
