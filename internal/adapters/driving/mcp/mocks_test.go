package mcp

import (
	"context"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driving"
)

// mockAnalyser is a mock implementation of driving.CaseAnalyser.
type mockAnalyser struct {
	result      *domain.AnalysisResult
	record      *domain.CaseRecord
	snapshot    domain.FactSnapshot
	history     []domain.Fact
	gaps        []domain.Gap
	audit       []domain.AuditEntry
	writeResult domain.WriteResult
	err         error

	lastRequest driving.AnalysisRequest
	lastKey     string
	lastValue   domain.FactValue
}

func (m *mockAnalyser) Analyse(_ context.Context, req driving.AnalysisRequest) (*domain.AnalysisResult, error) {
	m.lastRequest = req
	return m.result, m.err
}

func (m *mockAnalyser) Case(_ context.Context, _ string) (*domain.CaseRecord, error) {
	return m.record, m.err
}

func (m *mockAnalyser) Facts(_ context.Context, _ string) (domain.FactSnapshot, error) {
	return m.snapshot, m.err
}

func (m *mockAnalyser) FactHistory(_ context.Context, _, _ string) ([]domain.Fact, error) {
	return m.history, m.err
}

func (m *mockAnalyser) OpenGaps(_ context.Context, _ string) ([]domain.Gap, error) {
	return m.gaps, m.err
}

func (m *mockAnalyser) History(_ context.Context, _ string) ([]domain.AuditEntry, error) {
	return m.audit, m.err
}

func (m *mockAnalyser) RecordOperatorFact(_ context.Context, _, key, _ string, value domain.FactValue) (domain.WriteResult, error) {
	m.lastKey = key
	m.lastValue = value
	return m.writeResult, m.err
}

// mockIntake is a mock implementation of driving.CaseIntake.
type mockIntake struct {
	record    *domain.CaseRecord
	messageID string
	docID     string
	err       error

	lastMessage domain.Message
}

func (m *mockIntake) OpenCase(_ context.Context, _ string) (*domain.CaseRecord, error) {
	return m.record, m.err
}

func (m *mockIntake) AddMessage(_ context.Context, _ string, msg domain.Message) (string, error) {
	m.lastMessage = msg
	return m.messageID, m.err
}

func (m *mockIntake) AddAttachment(_ context.Context, _ string, _ domain.AttachmentDocument) (string, error) {
	return m.docID, m.err
}
