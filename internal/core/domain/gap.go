package domain

import "time"

// GapStatus is the lifecycle state of a gap.
type GapStatus string

const (
	GapOpen     GapStatus = "open"
	GapResolved GapStatus = "resolved"
)

// GapPriority orders open gaps for the client-communication surface.
type GapPriority int

const (
	PriorityLow    GapPriority = 1
	PriorityMedium GapPriority = 2
	PriorityHigh   GapPriority = 3
)

// ResolutionNotRequired is the resolution reason recorded when a gap's
// key stops being mandatory after a flow reclassification.
const ResolutionNotRequired = "not required for this flow"

// Gap is an open question about a case: a mandatory fact that is
// missing or only assumed. At most one gap per (case, key) is open.
type Gap struct {
	// ID is the unique identifier.
	ID string

	// CaseID links to the owning case.
	CaseID string

	// Key is the fact key the question is about.
	Key string

	// Category mirrors the fact category for grouping.
	Category string

	// Question is the localized question text shown to the client.
	Question string

	// Priority orders the open-gap list.
	Priority GapPriority

	// Blocking marks gaps that prevent the case from reaching a
	// price-ready status.
	Blocking bool

	// Status is open or resolved.
	Status GapStatus

	// Hints optionally carries candidate values, e.g. ambiguous HS
	// nomenclature entries (at most five).
	Hints []string

	// ResolvedByFactID links the fact that answered the question,
	// when one did.
	ResolvedByFactID string

	// ResolutionReason explains resolutions not caused by a fact.
	ResolutionReason string

	// CreatedAt is when the gap was opened.
	CreatedAt time.Time

	// ResolvedAt is when the gap was resolved, nil while open.
	ResolvedAt *time.Time
}
