package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseintake/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/caseintake/internal/core/domain"
)

func newTestIntake() (*Intake, *memory.CaseStore, *memory.CorrespondenceStore, *memory.AttachmentStore) {
	cases := memory.NewCaseStore()
	correspondence := memory.NewCorrespondenceStore()
	attachments := memory.NewAttachmentStore()
	inbox := &memory.Inbox{Correspondence: correspondence, Attachments: attachments}
	return NewIntake(cases, inbox, memory.NewAuditLog()), cases, correspondence, attachments
}

// TestIntake_OpenCase tests that a new case starts empty and
// unclassified.
func TestIntake_OpenCase(t *testing.T) {
	svc, cases, _, _ := newTestIntake()
	ctx := context.Background()

	rec, err := svc.OpenCase(ctx, "horizon-trading.dj")
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	stored, err := cases.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, stored.Status)
	assert.Equal(t, domain.RequestUnknown, stored.RequestType)
	assert.Equal(t, "horizon-trading.dj", stored.SenderDomain)
	assert.False(t, stored.CreatedAt.IsZero())
}

// TestIntake_AddMessage tests that messages land in the thread with
// generated ids and timestamps.
func TestIntake_AddMessage(t *testing.T) {
	svc, _, correspondence, _ := newTestIntake()
	ctx := context.Background()

	rec, err := svc.OpenCase(ctx, "")
	require.NoError(t, err)

	id, err := svc.AddMessage(ctx, rec.ID, domain.Message{
		From:    "ops@horizon-trading.dj",
		Subject: "Demande de cotation",
		RawBody: "2 x 40HC depuis Shanghai",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	msgs, err := correspondence.Messages(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.Equal(t, rec.ID, msgs[0].CaseID)
	assert.False(t, msgs[0].SentAt.IsZero())
}

// TestIntake_AddMessage_UnknownCase tests that messages cannot be
// attached to cases that do not exist.
func TestIntake_AddMessage_UnknownCase(t *testing.T) {
	svc, _, _, _ := newTestIntake()

	_, err := svc.AddMessage(context.Background(), "missing", domain.Message{RawBody: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCaseNotFound)
}

// TestIntake_AddAttachment tests the attachment path including
// pre-extracted structured fields.
func TestIntake_AddAttachment(t *testing.T) {
	svc, _, _, attachments := newTestIntake()
	ctx := context.Background()

	rec, err := svc.OpenCase(ctx, "")
	require.NoError(t, err)

	id, err := svc.AddAttachment(ctx, rec.ID, domain.AttachmentDocument{
		Filename: "packing-list.pdf",
		Fields:   map[string]string{"poids_brut_kg": "5240"},
	})
	require.NoError(t, err)

	docs, err := attachments.Documents(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
	assert.Equal(t, "5240", docs[0].Fields["poids_brut_kg"])
	assert.True(t, docs[0].HasContent())
}
