package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCaseStatus_IsFrozen tests which statuses block auto-transitions
func TestCaseStatus_IsFrozen(t *testing.T) {
	frozen := []CaseStatus{StatusSent, StatusAccepted, StatusDeclined, StatusArchived}
	for _, s := range frozen {
		assert.True(t, s.IsFrozen(), "%s should be frozen", s)
	}

	live := []CaseStatus{StatusNew, StatusNeedsInfo, StatusPartial, StatusReady}
	for _, s := range live {
		assert.False(t, s.IsFrozen(), "%s should not be frozen", s)
	}
}

// TestAnalysisResult_Partial tests the partial-result signal
func TestAnalysisResult_Partial(t *testing.T) {
	r := AnalysisResult{}
	assert.False(t, r.Partial())

	r.FailedFacts = []FailedFact{{Key: KeyDescription, Critical: false, Reason: "disk full"}}
	assert.False(t, r.Partial(), "non-critical failures do not make the pass partial")

	r.FailedFacts = append(r.FailedFacts, FailedFact{Key: KeyGrossWeightKg, Critical: true, Reason: "disk full"})
	assert.True(t, r.Partial())
}

// TestAttachmentDocument_HasContent tests the extraction-state check
func TestAttachmentDocument_HasContent(t *testing.T) {
	assert.False(t, AttachmentDocument{}.HasContent())
	assert.True(t, AttachmentDocument{Text: "packing list"}.HasContent())
	assert.True(t, AttachmentDocument{Fields: map[string]string{"GROSS WEIGHT": "12 T"}}.HasContent())
	assert.True(t, AttachmentDocument{LineItems: []ArticleLine{{Code: "8471"}}}.HasContent())
}
