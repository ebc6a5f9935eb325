package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/caseintake/internal/core/domain"
)

func snapWith(facts map[string]domain.FactValue) domain.FactSnapshot {
	snap := make(domain.FactSnapshot)
	for key, value := range facts {
		snap[key] = domain.Fact{
			CaseID:    "case-1",
			Key:       key,
			Value:     value,
			Source:    domain.SourceAIExtraction,
			IsCurrent: true,
		}
	}
	return snap
}

func containerValue(t *testing.T, count int, size, kind string) domain.FactValue {
	t.Helper()
	raw, err := json.Marshal([]map[string]any{{"count": count, "size": size, "type": kind}})
	assert.NoError(t, err)
	return domain.StructuredValue(raw)
}

// TestClassifyFlow_TransitHub tests rule 1: an Ethiopian destination
// wins over everything else
func TestClassifyFlow_TransitHub(t *testing.T) {
	snap := snapWith(map[string]domain.FactValue{
		domain.KeyDestinationCountry: domain.TextValue("ET"),
		domain.KeyContainers:         containerValue(t, 4, "40", "HC"),
		domain.KeyGrossWeightKg:      domain.NumberValue(80000),
	})

	c := ClassifyFlow(snap, domain.AttachmentsNone, DefaultClassifierConfig())
	assert.Equal(t, domain.RequestTransitEthiopia, c.RequestType)
	assert.Equal(t, c.RequestType, c.AssumptionFlow)
}

// TestClassifyFlow_TransitHubViaCity tests country resolution through
// the city ladder
func TestClassifyFlow_TransitHubViaCity(t *testing.T) {
	snap := snapWith(map[string]domain.FactValue{
		domain.KeyDestinationCity: domain.TextValue("Addis Ababa"),
	})

	c := ClassifyFlow(snap, domain.AttachmentsNone, DefaultClassifierConfig())
	assert.Equal(t, domain.RequestTransitEthiopia, c.RequestType)
}

// TestClassifyFlow_Export tests rule 2
func TestClassifyFlow_Export(t *testing.T) {
	snap := snapWith(map[string]domain.FactValue{
		domain.KeyOriginCountry:      domain.TextValue("Djibouti"),
		domain.KeyDestinationCountry: domain.TextValue("FR"),
	})

	c := ClassifyFlow(snap, domain.AttachmentsNone, DefaultClassifierConfig())
	assert.Equal(t, domain.RequestExportDJ, c.RequestType)
}

// TestClassifyFlow_Breakbulk tests rule 3: heavy uncontainerised
// cargo, by weight or by vocabulary
func TestClassifyFlow_Breakbulk(t *testing.T) {
	byWeight := snapWith(map[string]domain.FactValue{
		domain.KeyGrossWeightKg: domain.NumberValue(45000),
	})
	c := ClassifyFlow(byWeight, domain.AttachmentsNone, DefaultClassifierConfig())
	assert.Equal(t, domain.RequestBreakbulk, c.RequestType)

	byVocabulary := snapWith(map[string]domain.FactValue{
		domain.KeyDescription:   domain.TextValue("two transformer units, out of gauge"),
		domain.KeyGrossWeightKg: domain.NumberValue(12000),
	})
	c = ClassifyFlow(byVocabulary, domain.AttachmentsNone, DefaultClassifierConfig())
	assert.Equal(t, domain.RequestBreakbulk, c.RequestType)

	// Containers suppress the breakbulk rule regardless of weight.
	containerised := snapWith(map[string]domain.FactValue{
		domain.KeyGrossWeightKg:      domain.NumberValue(45000),
		domain.KeyContainers:         containerValue(t, 2, "40", "HC"),
		domain.KeyDestinationCountry: domain.TextValue("DJ"),
	})
	c = ClassifyFlow(containerised, domain.AttachmentsNone, DefaultClassifierConfig())
	assert.Equal(t, domain.RequestSeaFCLImport, c.RequestType)
}

// TestClassifyFlow_ImportVariants tests rule 4 and its mode split
func TestClassifyFlow_ImportVariants(t *testing.T) {
	fcl := snapWith(map[string]domain.FactValue{
		domain.KeyDestinationCountry: domain.TextValue("DJ"),
		domain.KeyContainers:         containerValue(t, 1, "20", "GP"),
	})
	c := ClassifyFlow(fcl, domain.AttachmentsNone, DefaultClassifierConfig())
	assert.Equal(t, domain.RequestSeaFCLImport, c.RequestType)

	air := snapWith(map[string]domain.FactValue{
		domain.KeyDestinationCountry: domain.TextValue("DJ"),
		domain.KeyGrossWeightKg:      domain.NumberValue(6000),
		domain.KeyTransportMode:      domain.TextValue(domain.ModeAir),
	})
	c = ClassifyFlow(air, domain.AttachmentsNone, DefaultClassifierConfig())
	assert.Equal(t, domain.RequestAirImport, c.RequestType)

	lcl := snapWith(map[string]domain.FactValue{
		domain.KeyDestinationCountry: domain.TextValue("DJ"),
		domain.KeyGrossWeightKg:      domain.NumberValue(6000),
	})
	c = ClassifyFlow(lcl, domain.AttachmentsNone, DefaultClassifierConfig())
	assert.Equal(t, domain.RequestSeaLCLImport, c.RequestType)
}

// TestClassifyFlow_PendingEscalation tests the rule 5 sub-states
func TestClassifyFlow_PendingEscalation(t *testing.T) {
	snap := snapWith(map[string]domain.FactValue{
		domain.KeyDestinationCountry: domain.TextValue("DJ"),
		domain.KeyGrossWeightKg:      domain.NumberValue(800),
	})
	cfg := DefaultClassifierConfig()

	c := ClassifyFlow(snap, domain.AttachmentsNone, cfg)
	assert.Equal(t, domain.RequestUnknown, c.RequestType)

	c = ClassifyFlow(snap, domain.AttachmentsAwaitingExtraction, cfg)
	assert.Equal(t, domain.RequestPending, c.RequestType)

	c = ClassifyFlow(snap, domain.AttachmentsExtracted, cfg)
	assert.Equal(t, domain.RequestSeaLCLImport, c.RequestType)
}

// TestClassifyFlow_AirOverrideSteersAssumptions tests that an
// explicit air flag changes assumption selection but not the stored
// flow when the table yields UNKNOWN
func TestClassifyFlow_AirOverrideSteersAssumptions(t *testing.T) {
	snap := snapWith(map[string]domain.FactValue{
		domain.KeyTransportMode: domain.TextValue(domain.ModeAir),
	})

	c := ClassifyFlow(snap, domain.AttachmentsNone, DefaultClassifierConfig())
	assert.Equal(t, domain.RequestUnknown, c.RequestType)
	assert.Equal(t, domain.RequestAirImport, c.AssumptionFlow)
}

// TestClassifyFlow_EmptySnapshot tests the bottom of the table
func TestClassifyFlow_EmptySnapshot(t *testing.T) {
	c := ClassifyFlow(domain.FactSnapshot{}, domain.AttachmentsNone, DefaultClassifierConfig())
	assert.Equal(t, domain.RequestUnknown, c.RequestType)
	assert.Equal(t, domain.RequestUnknown, c.AssumptionFlow)
}
