package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
	"github.com/custodia-labs/caseintake/internal/extract"
)

// HSOutcome is the result kind of a resolution ladder run.
type HSOutcome string

const (
	// HSUnique means exactly one nomenclature entry matched.
	HSUnique HSOutcome = "unique"

	// HSAmbiguous means several entries share the 6-digit prefix.
	HSAmbiguous HSOutcome = "ambiguous"

	// HSNotFound means nothing matched at any rung.
	HSNotFound HSOutcome = "not_found"
)

// hsCandidateLimit bounds the ambiguous candidate set fetched from
// the nomenclature; gaps carry at most five as hints.
const hsCandidateLimit = 10

// ExactMatchConfidence and PrefixMatchConfidence are the confidences
// recorded on resolved code facts.
const (
	ExactMatchConfidence  = 1.0
	PrefixMatchConfidence = 0.98
)

// HSResolution is the outcome of resolving one free-form code.
type HSResolution struct {
	Outcome    HSOutcome
	Code       string
	Label      string
	Confidence float64
	Candidates []driven.NomenclatureEntry
}

// HSResolver resolves free-form commodity codes against the national
// 10-digit nomenclature.
type HSResolver struct {
	nomenclature driven.Nomenclature
}

// NewHSResolver creates a new resolver.
func NewHSResolver(nomenclature driven.Nomenclature) *HSResolver {
	return &HSResolver{nomenclature: nomenclature}
}

// Resolve runs the ladder: a full 10-digit exact match first when the
// input carries at least ten digits, then a 6-digit prefix search.
// Ambiguity and absence are designed outcomes, not errors.
func (r *HSResolver) Resolve(ctx context.Context, freeform string) (HSResolution, error) {
	digits := extract.DigitsOnly(freeform)
	if len(digits) < 4 {
		return HSResolution{Outcome: HSNotFound}, nil
	}

	if len(digits) >= 10 {
		entry, err := r.nomenclature.Exact(ctx, digits[:10])
		switch {
		case err == nil:
			return HSResolution{
				Outcome:    HSUnique,
				Code:       entry.Code,
				Label:      entry.Label,
				Confidence: ExactMatchConfidence,
			}, nil
		case !errors.Is(err, domain.ErrNotFound):
			return HSResolution{}, fmt.Errorf("nomenclature exact match: %w", err)
		}
		// A miss falls through to the prefix rung.
	}

	prefix := digits
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	entries, err := r.nomenclature.ByPrefix(ctx, prefix, hsCandidateLimit)
	if err != nil {
		return HSResolution{}, fmt.Errorf("nomenclature prefix search: %w", err)
	}

	switch len(entries) {
	case 0:
		return HSResolution{Outcome: HSNotFound}, nil
	case 1:
		return HSResolution{
			Outcome:    HSUnique,
			Code:       entries[0].Code,
			Label:      entries[0].Label,
			Confidence: PrefixMatchConfidence,
		}, nil
	default:
		return HSResolution{Outcome: HSAmbiguous, Candidates: entries}, nil
	}
}

// IsExactCode reports whether a stored code fact is already a
// verified 10-digit nomenclature entry, i.e. needs no re-validation.
func (r *HSResolver) IsExactCode(ctx context.Context, code string) bool {
	digits := extract.DigitsOnly(code)
	if len(digits) != 10 {
		return false
	}
	_, err := r.nomenclature.Exact(ctx, digits)
	return err == nil
}
