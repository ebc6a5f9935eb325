package driven

import (
	"context"

	"github.com/custodia-labs/caseintake/internal/core/domain"
)

// FactStore is the versioned fact store. Supersede is the single
// write primitive; every producer goes through it.
type FactStore interface {
	// Supersede atomically applies one write under the source
	// authority rules, using a single transactional read-modify-write
	// per (case, key). It returns what happened and the id of the
	// current fact for the key afterwards.
	Supersede(ctx context.Context, write domain.FactWrite) (domain.WriteResult, error)

	// Snapshot returns the current fact per key for a case.
	Snapshot(ctx context.Context, caseID string) (domain.FactSnapshot, error)

	// History returns all version rows for a key, oldest first.
	History(ctx context.Context, caseID, key string) ([]domain.Fact, error)

	// Retract flips the current fact for a key off without writing a
	// replacement. Returns false when no current fact existed.
	Retract(ctx context.Context, caseID, key string) (bool, error)
}

// GapStore maintains open questions. At most one open gap exists per
// (case, key); EnsureOpen is the only way to open one.
type GapStore interface {
	// EnsureOpen opens the gap unless one is already open for the
	// same (case, key), in which case the existing gap is returned
	// unchanged. The bool reports whether a new gap was created.
	EnsureOpen(ctx context.Context, gap domain.Gap) (domain.Gap, bool, error)

	// Resolve closes the open gap for (case, key), recording the
	// resolving fact id (may be empty) and a reason. Resolving a key
	// with no open gap is a no-op returning false.
	Resolve(ctx context.Context, caseID, key, factID, reason string) (bool, error)

	// OpenGaps returns all open gaps for a case, highest priority
	// first.
	OpenGaps(ctx context.Context, caseID string) ([]domain.Gap, error)

	// ListGaps returns all gaps for a case regardless of status.
	ListGaps(ctx context.Context, caseID string) ([]domain.Gap, error)
}

// CaseStore persists the analyser-owned case fields.
type CaseStore interface {
	// Get retrieves a case. Returns domain.ErrCaseNotFound when the
	// case does not exist.
	Get(ctx context.Context, id string) (*domain.CaseRecord, error)

	// Save stores or updates a case record.
	Save(ctx context.Context, rec *domain.CaseRecord) error
}

// AuditLog records best-effort timeline entries. Implementations must
// never let a failed audit write abort the surrounding mutation;
// callers log and continue on error.
type AuditLog interface {
	// Record appends one entry.
	Record(ctx context.Context, entry domain.AuditEntry) error

	// List returns all entries for a case, oldest first.
	List(ctx context.Context, caseID string) ([]domain.AuditEntry, error)
}
