package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseintake/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/caseintake/internal/core/domain"
)

// TestAssumptionEngine_InjectsDefaults tests the first pass over an
// empty case
func TestAssumptionEngine_InjectsDefaults(t *testing.T) {
	facts := memory.NewFactStore()
	audit := memory.NewAuditLog()
	engine := NewAssumptionEngine(facts, audit)
	ctx := context.Background()

	created, updated, err := engine.Apply(ctx, "case-1", domain.RequestSeaFCLImport)
	require.NoError(t, err)
	assert.Equal(t, 4, created)
	assert.Zero(t, updated)

	snap, err := facts.Snapshot(ctx, "case-1")
	require.NoError(t, err)
	currency, ok := snap.Text(domain.KeyCurrency)
	require.True(t, ok)
	assert.Equal(t, "USD", currency)
	assert.True(t, snap[domain.KeyCurrency].IsAssumption())

	entries, err := audit.List(ctx, "case-1")
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.Equal(t, domain.AuditAssumptionAdded, entries[0].Event)
}

// TestAssumptionEngine_Idempotent tests that a second pass writes
// nothing
func TestAssumptionEngine_Idempotent(t *testing.T) {
	facts := memory.NewFactStore()
	engine := NewAssumptionEngine(facts, nil)
	ctx := context.Background()

	_, _, err := engine.Apply(ctx, "case-1", domain.RequestAirImport)
	require.NoError(t, err)

	created, updated, err := engine.Apply(ctx, "case-1", domain.RequestAirImport)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Zero(t, updated)
}

// TestAssumptionEngine_NeverOverwritesProtected tests the authority
// boundary
func TestAssumptionEngine_NeverOverwritesProtected(t *testing.T) {
	facts := memory.NewFactStore()
	engine := NewAssumptionEngine(facts, nil)
	ctx := context.Background()

	_, err := facts.Supersede(ctx, domain.FactWrite{
		CaseID:     "case-1",
		Key:        domain.KeyIncoterm,
		Category:   domain.CategoryRouting,
		Value:      domain.TextValue("EXW"),
		Source:     domain.SourceAIExtraction,
		Confidence: 0.8,
	})
	require.NoError(t, err)

	_, _, err = engine.Apply(ctx, "case-1", domain.RequestSeaFCLImport)
	require.NoError(t, err)

	snap, err := facts.Snapshot(ctx, "case-1")
	require.NoError(t, err)
	incoterm, _ := snap.Text(domain.KeyIncoterm)
	assert.Equal(t, "EXW", incoterm)
	assert.Equal(t, domain.SourceAIExtraction, snap[domain.KeyIncoterm].Source)
}

// TestAssumptionEngine_ReplacesPriorAssumption tests the flow-change
// path where one assumption table replaces another's differing value
func TestAssumptionEngine_ReplacesPriorAssumption(t *testing.T) {
	facts := memory.NewFactStore()
	engine := NewAssumptionEngine(facts, nil)
	ctx := context.Background()

	_, _, err := engine.Apply(ctx, "case-1", domain.RequestSeaFCLImport)
	require.NoError(t, err)

	// Reclassified as LCL: the service level default changes, the
	// identical currency and tax defaults do not rewrite.
	created, updated, err := engine.Apply(ctx, "case-1", domain.RequestSeaLCLImport)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, 1, updated)

	snap, err := facts.Snapshot(ctx, "case-1")
	require.NoError(t, err)
	level, _ := snap.Text(domain.KeyServiceLevel)
	assert.Equal(t, "port_to_port", level)

	history, err := facts.History(ctx, "case-1", domain.KeyServiceLevel)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

// TestAssumptionEngine_UnclassifiedFlowIsNoop tests that PENDING and
// UNKNOWN carry no defaults
func TestAssumptionEngine_UnclassifiedFlowIsNoop(t *testing.T) {
	facts := memory.NewFactStore()
	engine := NewAssumptionEngine(facts, nil)
	ctx := context.Background()

	for _, flow := range []domain.RequestType{domain.RequestPending, domain.RequestUnknown} {
		created, updated, err := engine.Apply(ctx, "case-1", flow)
		require.NoError(t, err)
		assert.Zero(t, created)
		assert.Zero(t, updated)
	}
}
