package driving

import (
	"context"

	"github.com/custodia-labs/caseintake/internal/core/domain"
)

// CaseIntake opens cases and records incoming correspondence and
// attachments. It never analyses; callers trigger a pass through
// CaseAnalyser afterwards.
type CaseIntake interface {
	// OpenCase creates a new empty case. The sender domain may be
	// empty when the request arrived outside email.
	OpenCase(ctx context.Context, senderDomain string) (*domain.CaseRecord, error)

	// AddMessage appends one message to a case's thread and returns
	// the message id.
	AddMessage(ctx context.Context, caseID string, msg domain.Message) (string, error)

	// AddAttachment stores one attachment with its pre-extracted
	// content and returns the attachment id.
	AddAttachment(ctx context.Context, caseID string, doc domain.AttachmentDocument) (string, error)
}
