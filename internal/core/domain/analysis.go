package domain

import "time"

// Message is one piece of correspondence on a case, with the raw body
// as received (possibly multipart, encoded or HTML).
type Message struct {
	ID      string
	CaseID  string
	From    string
	Subject string
	RawBody string
	SentAt  time.Time
}

// ArticleLine is one priced line item of a quotation-sheet attachment.
type ArticleLine struct {
	Code        string  `json:"code"`
	Value       float64 `json:"value"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
}

// AttachmentDocument is a stored attachment with pre-extracted
// content. Fields holds the structured key/value pairs the document
// pipeline recognised; Text is the flat extracted text.
type AttachmentDocument struct {
	ID        string
	CaseID    string
	Filename  string
	Fields    map[string]string
	LineItems []ArticleLine
	Text      string
	AddedAt   time.Time
}

// HasContent reports whether extraction produced anything usable.
func (a AttachmentDocument) HasContent() bool {
	return len(a.Fields) > 0 || len(a.LineItems) > 0 || a.Text != ""
}

// FailedFact records a mandatory or optional fact that could not be
// persisted during a pass.
type FailedFact struct {
	// Key is the fact key that failed.
	Key string

	// Critical is true when the key is mandatory for the detected
	// flow; critical failures force a partial status.
	Critical bool

	// Reason is a short operator-facing description.
	Reason string
}

// AnalysisResult is the outcome of one bounded analysis pass.
type AnalysisResult struct {
	CaseID          string
	NewStatus       CaseStatus
	RequestType     RequestType
	FactsAdded      int
	FactsUpdated    int
	GapsIdentified  int
	CompletenessPct int
	ReadyToPrice    bool

	// FailedFacts lists per-key persistence failures. Non-empty with
	// any Critical entry means the pass completed partially.
	FailedFacts []FailedFact
}

// Partial reports whether a critical fact failed to persist.
func (r AnalysisResult) Partial() bool {
	for _, f := range r.FailedFacts {
		if f.Critical {
			return true
		}
	}
	return false
}

// AuditEntry is one best-effort timeline record. Audit writes never
// abort the fact or gap mutation they describe.
type AuditEntry struct {
	ID        string
	CaseID    string
	Event     string
	Detail    string
	CreatedAt time.Time
}

// Audit event names.
const (
	AuditFactWritten      = "fact_written"
	AuditFactRejected     = "fact_rejected"
	AuditFactRetracted    = "fact_retracted"
	AuditFactWriteFailed  = "fact_write_failed"
	AuditAssumptionAdded  = "assumption_added"
	AuditGapOpened        = "gap_opened"
	AuditGapResolved      = "gap_resolved"
	AuditFlowClassified   = "flow_classified"
	AuditStatusChanged    = "status_changed"
	AuditOracleFallback   = "oracle_fallback"
	AuditAnalysisComplete = "analysis_complete"
)
