package driving

import (
	"context"

	"github.com/custodia-labs/caseintake/internal/core/domain"
)

// AnalysisRequest triggers one bounded analysis pass for a case.
type AnalysisRequest struct {
	// CaseID identifies the case to analyse.
	CaseID string

	// ForceRefresh re-runs extraction even when nothing new arrived
	// since the last pass. Classification, assumption injection and
	// gap analysis always run.
	ForceRefresh bool
}

// CaseAnalyser runs analysis passes and exposes the case surfaces
// consumed downstream (status, gaps, history).
type CaseAnalyser interface {
	// Analyse runs one pass and returns the structured result.
	// Fatal errors (unknown case, authorisation) are returned;
	// per-fact persistence failures are reported inside the result.
	Analyse(ctx context.Context, req AnalysisRequest) (*domain.AnalysisResult, error)

	// Case returns the analyser-owned case record.
	Case(ctx context.Context, caseID string) (*domain.CaseRecord, error)

	// Facts returns the current fact snapshot for a case.
	Facts(ctx context.Context, caseID string) (domain.FactSnapshot, error)

	// FactHistory returns all version rows for one key, oldest first.
	FactHistory(ctx context.Context, caseID, key string) ([]domain.Fact, error)

	// OpenGaps returns the open questions for a case.
	OpenGaps(ctx context.Context, caseID string) ([]domain.Gap, error)

	// History returns the audit timeline for a case.
	History(ctx context.Context, caseID string) ([]domain.AuditEntry, error)

	// RecordOperatorFact writes an operator-entered fact through the
	// store's conflict rules (operator authority always wins).
	RecordOperatorFact(ctx context.Context, caseID, key, category string, value domain.FactValue) (domain.WriteResult, error)
}
