package driven

import (
	"context"

	"github.com/custodia-labs/caseintake/internal/core/domain"
)

// Extractor is the fact extraction oracle: one blocking call that
// turns the correspondence thread and attachment text into candidate
// facts. Implementations must not retry internally; the failover
// wrapper substitutes the deterministic extractor on any error.
type Extractor interface {
	// Extract proposes candidate facts from the given texts. Both
	// inputs may be empty.
	Extract(ctx context.Context, threadText, attachmentText string) ([]domain.CandidateFact, error)

	// Name identifies the implementation for audit entries.
	Name() string
}
