package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseintake/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
)

func testNomenclature() *memory.Nomenclature {
	return memory.NewNomenclature(
		driven.NomenclatureEntry{Code: "8504402000", Label: "Static converters"},
		driven.NomenclatureEntry{Code: "8504403000", Label: "Rectifiers"},
		driven.NomenclatureEntry{Code: "0901210000", Label: "Coffee, roasted, not decaffeinated"},
	)
}

// TestHSResolver_ExactMatch tests the top rung of the ladder
func TestHSResolver_ExactMatch(t *testing.T) {
	r := NewHSResolver(testNomenclature())

	res, err := r.Resolve(context.Background(), "8504.40.20.00")
	require.NoError(t, err)
	assert.Equal(t, HSUnique, res.Outcome)
	assert.Equal(t, "8504402000", res.Code)
	assert.Equal(t, ExactMatchConfidence, res.Confidence)
}

// TestHSResolver_ExactMissFallsToPrefix tests that an unknown
// 10-digit code still tries its 6-digit family
func TestHSResolver_ExactMissFallsToPrefix(t *testing.T) {
	r := NewHSResolver(testNomenclature())

	// 0901219999 is not in the table but 090121 has one entry.
	res, err := r.Resolve(context.Background(), "0901219999")
	require.NoError(t, err)
	assert.Equal(t, HSUnique, res.Outcome)
	assert.Equal(t, "0901210000", res.Code)
	assert.Equal(t, PrefixMatchConfidence, res.Confidence)
}

// TestHSResolver_PrefixAmbiguous tests the ambiguity outcome
func TestHSResolver_PrefixAmbiguous(t *testing.T) {
	r := NewHSResolver(testNomenclature())

	res, err := r.Resolve(context.Background(), "850440")
	require.NoError(t, err)
	assert.Equal(t, HSAmbiguous, res.Outcome)
	assert.Len(t, res.Candidates, 2)
	assert.Empty(t, res.Code)
}

// TestHSResolver_NotFound tests both not-found paths
func TestHSResolver_NotFound(t *testing.T) {
	r := NewHSResolver(testNomenclature())

	res, err := r.Resolve(context.Background(), "999999")
	require.NoError(t, err)
	assert.Equal(t, HSNotFound, res.Outcome)

	// Fewer than four digits never reaches the table.
	res, err = r.Resolve(context.Background(), "85")
	require.NoError(t, err)
	assert.Equal(t, HSNotFound, res.Outcome)
}

// TestHSResolver_IsExactCode tests the re-validation check
func TestHSResolver_IsExactCode(t *testing.T) {
	r := NewHSResolver(testNomenclature())

	assert.True(t, r.IsExactCode(context.Background(), "8504402000"))
	assert.False(t, r.IsExactCode(context.Background(), "8504409999"))
	assert.False(t, r.IsExactCode(context.Background(), "850440"))
}
