package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
	"github.com/custodia-labs/caseintake/internal/core/ports/driving"
	"github.com/custodia-labs/caseintake/internal/logger"
)

var _ driving.CaseIntake = (*Intake)(nil)

// Intake opens cases and records incoming material. It writes no
// facts; analysis picks up the new input on the next pass.
type Intake struct {
	cases driven.CaseStore
	inbox driven.Inbox
	audit driven.AuditLog
}

// NewIntake creates the intake service.
func NewIntake(cases driven.CaseStore, inbox driven.Inbox, audit driven.AuditLog) *Intake {
	return &Intake{cases: cases, inbox: inbox, audit: audit}
}

// OpenCase creates an empty case in the initial status.
func (s *Intake) OpenCase(ctx context.Context, senderDomain string) (*domain.CaseRecord, error) {
	rec := &domain.CaseRecord{
		ID:           uuid.NewString(),
		Status:       domain.StatusNew,
		RequestType:  domain.RequestUnknown,
		SenderDomain: senderDomain,
		CreatedAt:    time.Now(),
	}
	if err := s.cases.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving case: %w", err)
	}

	logger.Info("Opened case %s (sender domain %q)", rec.ID, senderDomain)
	return rec, nil
}

// AddMessage appends one message to an existing case's thread.
func (s *Intake) AddMessage(ctx context.Context, caseID string, msg domain.Message) (string, error) {
	if _, err := s.cases.Get(ctx, caseID); err != nil {
		return "", err
	}

	msg.CaseID = caseID
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}

	if err := s.inbox.AddMessage(ctx, msg); err != nil {
		return "", fmt.Errorf("storing message: %w", err)
	}
	return msg.ID, nil
}

// AddAttachment stores one attachment for an existing case.
func (s *Intake) AddAttachment(ctx context.Context, caseID string, doc domain.AttachmentDocument) (string, error) {
	if _, err := s.cases.Get(ctx, caseID); err != nil {
		return "", err
	}

	doc.CaseID = caseID
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.AddedAt.IsZero() {
		doc.AddedAt = time.Now()
	}

	if err := s.inbox.AddAttachment(ctx, doc); err != nil {
		return "", fmt.Errorf("storing attachment: %w", err)
	}
	return doc.ID, nil
}
