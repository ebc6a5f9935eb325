package sqlite

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseintake/internal/core/domain"
)

func weightWrite(source domain.SourceType, kg float64) domain.FactWrite {
	return domain.FactWrite{
		CaseID:     "case-1",
		Key:        domain.KeyGrossWeightKg,
		Category:   domain.CategoryCargo,
		Value:      domain.NumberValue(kg),
		Source:     source,
		Confidence: 0.8,
	}
}

// TestFactStore_SupersedeMatrix tests the write outcomes across the
// authority ranks
func TestFactStore_SupersedeMatrix(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestCase(t, store, "case-1")
	facts := store.FactStore()

	// First write creates.
	res, err := facts.Supersede(ctx, weightWrite(domain.SourceAIExtraction, 5000))
	require.NoError(t, err)
	assert.Equal(t, domain.WriteCreated, res.Outcome)
	firstID := res.FactID

	// Same value at the same rank is a no-op.
	res, err = facts.Supersede(ctx, weightWrite(domain.SourceAIExtraction, 5000))
	require.NoError(t, err)
	assert.Equal(t, domain.WriteUnchanged, res.Outcome)
	assert.Equal(t, firstID, res.FactID)

	// Same value at a higher rank upgrades the provenance.
	res, err = facts.Supersede(ctx, weightWrite(domain.SourceAttachmentExtracted, 5000))
	require.NoError(t, err)
	assert.Equal(t, domain.WriteSuperseded, res.Outcome)
	assert.NotEqual(t, firstID, res.FactID)

	// A lower rank never displaces a higher one.
	res, err = facts.Supersede(ctx, weightWrite(domain.SourceAIAssumption, 9999))
	require.NoError(t, err)
	assert.Equal(t, domain.WriteRejected, res.Outcome)

	// Operator overwrites anything.
	res, err = facts.Supersede(ctx, weightWrite(domain.SourceOperator, 5240))
	require.NoError(t, err)
	assert.Equal(t, domain.WriteSuperseded, res.Outcome)

	snap, err := facts.Snapshot(ctx, "case-1")
	require.NoError(t, err)
	weight, ok := snap.Number(domain.KeyGrossWeightKg)
	require.True(t, ok)
	assert.Equal(t, 5240.0, weight)
	assert.Equal(t, domain.SourceOperator, snap[domain.KeyGrossWeightKg].Source)
}

// TestFactStore_SingleCurrentInvariant tests that history grows while
// exactly one row stays current
func TestFactStore_SingleCurrentInvariant(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestCase(t, store, "case-1")
	facts := store.FactStore()

	_, err := facts.Supersede(ctx, weightWrite(domain.SourceAIExtraction, 5000))
	require.NoError(t, err)
	_, err = facts.Supersede(ctx, weightWrite(domain.SourceAttachmentExtracted, 5240))
	require.NoError(t, err)
	_, err = facts.Supersede(ctx, weightWrite(domain.SourceOperator, 5300))
	require.NoError(t, err)

	history, err := facts.History(ctx, "case-1", domain.KeyGrossWeightKg)
	require.NoError(t, err)
	require.Len(t, history, 3)

	current := 0
	for _, f := range history {
		if f.IsCurrent {
			current++
		}
	}
	assert.Equal(t, 1, current)
	assert.True(t, history[len(history)-1].IsCurrent)
	assert.Equal(t, domain.SourceOperator, history[len(history)-1].Source)
}

// TestFactStore_ValueKinds tests persistence of each union kind
func TestFactStore_ValueKinds(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestCase(t, store, "case-1")
	facts := store.FactStore()

	containers := json.RawMessage(`[{"count":2,"size":"40","type":"HC"}]`)
	writes := []domain.FactWrite{
		{CaseID: "case-1", Key: domain.KeyIncoterm, Value: domain.TextValue("CIF"), Source: domain.SourceDocumentRegex},
		{CaseID: "case-1", Key: domain.KeyVolumeCbm, Value: domain.NumberValue(12.5), Source: domain.SourceDocumentRegex},
		{CaseID: "case-1", Key: domain.KeyContainers, Value: domain.StructuredValue(containers), Source: domain.SourceDocumentRegex},
	}
	for _, w := range writes {
		_, err := facts.Supersede(ctx, w)
		require.NoError(t, err)
	}

	snap, err := facts.Snapshot(ctx, "case-1")
	require.NoError(t, err)

	incoterm, _ := snap.Text(domain.KeyIncoterm)
	assert.Equal(t, "CIF", incoterm)
	volume, _ := snap.Number(domain.KeyVolumeCbm)
	assert.Equal(t, 12.5, volume)
	assert.JSONEq(t, string(containers), string(snap[domain.KeyContainers].Value.Structured))
}

// TestFactStore_Retract tests the retraction path
func TestFactStore_Retract(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestCase(t, store, "case-1")
	facts := store.FactStore()

	_, err := facts.Supersede(ctx, weightWrite(domain.SourceAIExtraction, 5000))
	require.NoError(t, err)

	ok, err := facts.Retract(ctx, "case-1", domain.KeyGrossWeightKg)
	require.NoError(t, err)
	assert.True(t, ok)

	snap, err := facts.Snapshot(ctx, "case-1")
	require.NoError(t, err)
	assert.False(t, snap.Has(domain.KeyGrossWeightKg))

	// The retracted row stays in history.
	history, err := facts.History(ctx, "case-1", domain.KeyGrossWeightKg)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].IsCurrent)

	// Retracting again is a no-op.
	ok, err = facts.Retract(ctx, "case-1", domain.KeyGrossWeightKg)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestGapStore_OpenResolveCycle tests the single-open-gap invariant
func TestGapStore_OpenResolveCycle(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestCase(t, store, "case-1")
	gaps := store.GapStore()

	gap := domain.Gap{
		CaseID:   "case-1",
		Key:      domain.KeyHSCode,
		Category: domain.CategoryCargo,
		Question: "Quel est le code SH ?",
		Priority: domain.PriorityHigh,
		Blocking: true,
		Hints:    []string{"8504402000 — Static converters", "8504403000 — Rectifiers"},
	}

	created, isNew, err := gaps.EnsureOpen(ctx, gap)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotEmpty(t, created.ID)

	// A second ensure returns the existing gap untouched.
	again, isNew, err := gaps.EnsureOpen(ctx, domain.Gap{CaseID: "case-1", Key: domain.KeyHSCode, Question: "different text"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "Quel est le code SH ?", again.Question)
	assert.Equal(t, gap.Hints, again.Hints)

	ok, err := gaps.Resolve(ctx, "case-1", domain.KeyHSCode, "fact-42", "")
	require.NoError(t, err)
	assert.True(t, ok)

	open, err := gaps.OpenGaps(ctx, "case-1")
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := gaps.ListGaps(ctx, "case-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.GapResolved, all[0].Status)
	assert.Equal(t, "fact-42", all[0].ResolvedByFactID)
	assert.NotNil(t, all[0].ResolvedAt)

	// Resolving with nothing open is a no-op.
	ok, err = gaps.Resolve(ctx, "case-1", domain.KeyHSCode, "", "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	// The key can open again after resolution.
	_, isNew, err = gaps.EnsureOpen(ctx, gap)
	require.NoError(t, err)
	assert.True(t, isNew)
}
