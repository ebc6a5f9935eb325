package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestArbitrateMode_MaritimeOverridesAir tests that explicit sea
// signals always beat air inference
func TestArbitrateMode_MaritimeOverridesAir(t *testing.T) {
	text := "Please quote 2 x 40HC from Shanghai. Routing via ADD - JIB if faster."
	sig := ArbitrateMode(text, ParseContainers(text))

	assert.Equal(t, "sea", sig.Mode)
	assert.True(t, sig.Explicit)
}

// TestArbitrateMode_AirTriggerPhrase tests explicit air phrases
func TestArbitrateMode_AirTriggerPhrase(t *testing.T) {
	sig := ArbitrateMode("urgent shipment by air, 300 kg of spare parts", nil)

	assert.Equal(t, "air", sig.Mode)
	assert.True(t, sig.Explicit)
	assert.Equal(t, "by air", sig.Evidence)
}

// TestArbitrateMode_IATAPairWhitelist tests the code-pair inference
func TestArbitrateMode_IATAPairWhitelist(t *testing.T) {
	// Both codes whitelisted: accepted as an inferred air signal.
	sig := ArbitrateMode("routing DXB - JIB next week", nil)
	assert.Equal(t, "air", sig.Mode)
	assert.False(t, sig.Explicit)

	// FOB collides with an incoterm and is not in the whitelist.
	sig = ArbitrateMode("terms FOB - JIB arrival", nil)
	assert.Equal(t, "", sig.Mode)

	// A coincidental non-whitelisted pair never establishes air.
	sig = ArbitrateMode("ref ABC - XYZ", nil)
	assert.Equal(t, "", sig.Mode)
}

// TestArbitrateMode_VesselKeyword tests maritime vocabulary
func TestArbitrateMode_VesselKeyword(t *testing.T) {
	sig := ArbitrateMode("the vessel arrives Monday, by air otherwise", nil)
	assert.Equal(t, "sea", sig.Mode)
	assert.Equal(t, "vessel", sig.Evidence)
}

// TestArbitrateMode_NoSignal tests silence
func TestArbitrateMode_NoSignal(t *testing.T) {
	sig := ArbitrateMode("hello, can you send your rates", nil)
	assert.Equal(t, "", sig.Mode)
}

// TestParseContainers tests container list parsing
func TestParseContainers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []ContainerSpec
	}{
		{"standard", "2 x 40HC ex Shanghai", []ContainerSpec{{Count: 2, Size: "40", Type: "HC"}}},
		{"lowercase x no type", "1x20' container", []ContainerSpec{{Count: 1, Size: "20", Type: ""}}},
		{"dv alias", "3 X 40DV", []ContainerSpec{{Count: 3, Size: "40", Type: "GP"}}},
		{"hq alias", "1 x 40 HQ", []ContainerSpec{{Count: 1, Size: "40", Type: "HC"}}},
		{"none", "5000 kg loose cargo", nil},
		{"not a container size", "2 x 35 pallets", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseContainers(tt.text))
		})
	}
}
