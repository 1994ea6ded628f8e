package risk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expectedDegrees = map[int]int{
	1: 2, 2: 2, 3: 1, 4: 3, 5: 1, 6: 3, 7: 2, 8: 3, 9: 5, 10: 5,
	11: 1, 12: 1, 13: 5, 14: 2, 15: 5, 16: 2, 17: 1, 18: 2, 19: 1, 20: 1,
	21: 1, 22: 2, 23: 3, 24: 3, 25: 1, 26: 2, 27: 1, 28: 2, 29: 1, 30: 1,
	31: 1, 32: 3, 33: 3, 34: 5, 35: 5, 36: 2, 37: 1, 38: 4, 39: 1, 40: 1,
	41: 1, 42: 1, 43: 3, 44: 4, 45: 4, 46: 3, 47: 3, 48: 3, 49: 3, 50: 2,
	51: 3, 52: 1, 53: 3, 54: 1, 55: 2, 56: 1, 57: 3, 58: 4, 59: 1, 60: 3,
	61: 3, 62: 3, 63: 4, 64: 1, 65: 5, 66: 1, 67: 4, 68: 2, 69: 5, 70: 3,
	71: 4, 72: 2, 73: 2, 74: 1, 75: 5, 76: 1, 77: 2, 78: 1, 79: 1, 80: 3,
	81: 3,
}

func TestTierOf_KnownProvinces(t *testing.T) {
	require.Len(t, expectedDegrees, 81)
	for id, degree := range expectedDegrees {
		assert.Equal(t, degree, TierOf(id).Degree(), "province %d", id)
	}
}

func TestTierOf_UnknownFallsBackToTier3(t *testing.T) {
	for _, id := range []int{0, -1, 82, 999} {
		assert.Equal(t, Tier3, TierOf(id), "province %d", id)
	}
}

func TestTier_ZeroValueIsDefault(t *testing.T) {
	var zero Tier
	assert.Equal(t, DefaultTier, zero)
	assert.Equal(t, 3, zero.Degree())
}

func TestTier_ColorsAndLabelsAreDistinct(t *testing.T) {
	colors := map[string]int{}
	labels := map[string]int{}
	for _, tier := range Tiers() {
		require.NotEmpty(t, tier.Color())
		require.NotEmpty(t, tier.Label())
		colors[tier.Color()]++
		labels[tier.Label()]++
	}
	assert.Len(t, colors, 5)
	assert.Len(t, labels, 5)
}

func TestTier_Palette(t *testing.T) {
	assert.Equal(t, "#DC2626", Tier1.Color())
	assert.Equal(t, "#D1FAE5", Tier5.Color())
	assert.Equal(t, "3. Derece - Orta Risk", Tier3.Label())
}

func TestParseTier(t *testing.T) {
	for degree := 1; degree <= 5; degree++ {
		tier, err := ParseTier(degree)
		require.NoError(t, err)
		assert.Equal(t, degree, tier.Degree())
	}

	_, err := ParseTier(0)
	assert.ErrorIs(t, err, ErrTierOutOfRange)
	_, err = ParseTier(6)
	assert.ErrorIs(t, err, ErrTierOutOfRange)
}

func TestTier_JSON(t *testing.T) {
	data, err := json.Marshal(Province{ID: 40, Name: "İstanbul", Tier: Tier1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":40,"name":"İstanbul","tier":1}`, string(data))

	var p Province
	require.NoError(t, json.Unmarshal([]byte(`{"id":9,"name":"Ardahan","tier":5}`), &p))
	assert.Equal(t, Tier5, p.Tier)

	assert.Error(t, json.Unmarshal([]byte(`{"tier":7}`), &p))
}

func TestProvinces_ReturnsCopy(t *testing.T) {
	first := Provinces()
	require.Len(t, first, 81)
	for i, p := range first {
		assert.Equal(t, i+1, p.ID)
	}

	first[0].Tier = Tier5
	assert.Equal(t, Tier2, TierOf(1), "mutating the copy must not touch the table")
}

func TestLegend(t *testing.T) {
	legend := Legend()
	require.Len(t, legend, 5)
	assert.Equal(t, LegendEntry{Degree: 1, Color: "#DC2626", Label: "1. Derece - En Yüksek Risk"}, legend[0])
	assert.Equal(t, 5, legend[4].Degree)
}
