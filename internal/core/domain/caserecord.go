package domain

import "time"

// CaseStatus is the derived state of a quotation case.
type CaseStatus string

const (
	// StatusNew is the initial status before any analysis pass.
	StatusNew CaseStatus = "new"

	// StatusNeedsInfo means at least one gap is open.
	StatusNeedsInfo CaseStatus = "needs_info"

	// StatusPartial means the case has neither open gaps nor enough
	// facts to price, or a critical fact failed to persist.
	StatusPartial CaseStatus = "partial"

	// StatusReady means no blocking gap is open and at least one
	// current fact exists: the case can be priced.
	StatusReady CaseStatus = "ready"

	// Frozen statuses. Analysis passes keep recording facts and gaps
	// underneath but never auto-transition a frozen case.
	StatusSent     CaseStatus = "sent"
	StatusAccepted CaseStatus = "accepted"
	StatusDeclined CaseStatus = "declined"
	StatusArchived CaseStatus = "archived"
)

// IsFrozen reports whether the status is owned by the quotation
// workflow rather than the analyser.
func (s CaseStatus) IsFrozen() bool {
	switch s {
	case StatusSent, StatusAccepted, StatusDeclined, StatusArchived:
		return true
	default:
		return false
	}
}

// RequestType is the classified shipment scenario. It drives which
// facts are mandatory and which assumptions are injected.
type RequestType string

const (
	RequestSeaFCLImport    RequestType = "SEA_FCL_IMPORT"
	RequestSeaLCLImport    RequestType = "SEA_LCL_IMPORT"
	RequestAirImport       RequestType = "AIR_IMPORT"
	RequestBreakbulk       RequestType = "BREAKBULK_PROJECT"
	RequestExportDJ        RequestType = "EXPORT_DJ"
	RequestTransitEthiopia RequestType = "TRANSIT_ETHIOPIA"
	RequestPending         RequestType = "PENDING"
	RequestUnknown         RequestType = "UNKNOWN"
)

// CaseRecord is the analyser-owned view of a quotation case. Client
// details and document metadata live elsewhere.
type CaseRecord struct {
	// ID is the case identifier.
	ID string

	// Status is the derived case status.
	Status CaseStatus

	// RequestType is the latest flow classification result.
	RequestType RequestType

	// FactsCount is the number of current facts.
	FactsCount int

	// OpenGapsCount is the number of open gaps.
	OpenGapsCount int

	// CompletenessPct is the mandatory-fact coverage, 0..100.
	CompletenessPct int

	// SenderDomain is the email domain the request came from, used
	// for the known-contact match. May be empty.
	SenderDomain string

	// CreatedAt is when the case was opened.
	CreatedAt time.Time

	// AnalysedAt is when the last analysis pass completed, zero if
	// never analysed.
	AnalysedAt time.Time
}

// AttachmentState summarises a case's attachments for the PENDING
// escalation policy of the flow classifier.
type AttachmentState int

const (
	// AttachmentsNone means the case has no attachments.
	AttachmentsNone AttachmentState = iota

	// AttachmentsAwaitingExtraction means attachments exist but none
	// has extracted content yet.
	AttachmentsAwaitingExtraction

	// AttachmentsExtracted means at least one attachment has
	// extracted content.
	AttachmentsExtracted
)
