package driven

import (
	"context"

	"github.com/custodia-labs/caseintake/internal/core/domain"
)

// NomenclatureEntry is one row of the national 10-digit HS table.
type NomenclatureEntry struct {
	// Code is the full 10-digit code, digits only.
	Code string

	// Label is the official goods description.
	Label string
}

// Nomenclature is the read-only national HS code table.
type Nomenclature interface {
	// Exact returns the entry for a full 10-digit code, or
	// domain.ErrNotFound.
	Exact(ctx context.Context, code10 string) (*NomenclatureEntry, error)

	// ByPrefix returns all entries whose code starts with the given
	// 6-digit prefix, capped at limit.
	ByPrefix(ctx context.Context, prefix6 string, limit int) ([]NomenclatureEntry, error)
}

// NomenclatureLoader bulk-loads the national HS table. Used by the
// seeding surface, never during analysis.
type NomenclatureLoader interface {
	// LoadEntries upserts nomenclature rows.
	LoadEntries(ctx context.Context, entries []NomenclatureEntry) error
}

// ContactDirectory maps sender email domains to client codes for the
// known-contact match.
type ContactDirectory interface {
	// ClientCode returns the client code registered for an email
	// domain, or "" when the domain is unknown.
	ClientCode(domain string) string
}

// CorrespondenceStore provides the raw message thread of a case.
type CorrespondenceStore interface {
	// Messages returns all messages for a case, oldest first.
	Messages(ctx context.Context, caseID string) ([]domain.Message, error)
}

// AttachmentStore provides attachments with pre-extracted content.
type AttachmentStore interface {
	// Documents returns all attachments for a case, oldest first.
	Documents(ctx context.Context, caseID string) ([]domain.AttachmentDocument, error)
}

// Inbox accepts incoming correspondence and attachments. The intake
// service writes through it; analysis only ever reads.
type Inbox interface {
	// AddMessage appends one message to a case's thread.
	AddMessage(ctx context.Context, msg domain.Message) error

	// AddAttachment stores one attachment with its extracted content.
	AddAttachment(ctx context.Context, doc domain.AttachmentDocument) error
}
