package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoIntel/internal/domain/models"
)

var detectNow = time.UnixMilli(1756630000000)

func kindsOf(signals []models.Signal) []models.SignalKind {
	kinds := make([]models.SignalKind, 0, len(signals))
	for _, s := range signals {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}

func TestDetectEmptyInput(t *testing.T) {
	assert.Empty(t, DetectAt(nil, nil, detectNow))
	assert.Empty(t, DetectAt([]models.MarketAsset{}, []models.VolumeEntry{}, detectNow))
}

func TestVolumeAnomalySeverityBands(t *testing.T) {
	view := []models.VolumeEntry{
		{Symbol: "AAA", Volume: 1e9, VolumeChange: 40},   // below floor, silent
		{Symbol: "BBB", Volume: 2e9, VolumeChange: 60},   // medium band
		{Symbol: "ABC", Volume: 3e9, VolumeChange: 120},  // high band
		{Symbol: "DDD", Volume: 4e9, VolumeChange: -130}, // high band, negative
	}

	out := DetectAt(nil, view, detectNow)
	require.Len(t, out, 3)

	// Severity sort puts the two high signals first, in emission order.
	assert.Equal(t, "ABC", out[0].Symbol)
	assert.Equal(t, models.SeverityHigh, out[0].Severity)
	assert.Equal(t, models.SignalVolumeAnomaly, out[0].Kind)
	assert.Contains(t, out[0].Message, "+120.00%")

	assert.Equal(t, "DDD", out[1].Symbol)
	assert.Contains(t, out[1].Message, "-130.00%")

	assert.Equal(t, "BBB", out[2].Symbol)
	assert.Equal(t, models.SeverityMedium, out[2].Severity)
	assert.Equal(t, 2e9, out[2].Data["volume"])
}

func TestDivergenceWithoutMomentumBelowCapFloor(t *testing.T) {
	assets := []models.MarketAsset{
		{Symbol: "xyz", Change24h: 22, Change7d: -3, MarketCap: 50_000_000},
	}

	out := DetectAt(assets, nil, detectNow)
	require.Len(t, out, 1)
	assert.Equal(t, models.SignalDivergence, out[0].Kind)
	assert.Equal(t, models.SeverityMedium, out[0].Severity)
	assert.Equal(t, "XYZ", out[0].Symbol)
	assert.Contains(t, out[0].Message, "+22.00%")
	assert.Contains(t, out[0].Message, "Bullish divergence")
	assert.Equal(t, 22.0, out[0].Data["price24h"])
	assert.Equal(t, -3.0, out[0].Data["price7d"])
}

func TestBearishDivergence(t *testing.T) {
	assets := []models.MarketAsset{
		{Symbol: "def", Change24h: -12.5, Change7d: 4, MarketCap: 2_000_000_000, ATHChangePct: -20},
	}

	out := DetectAt(assets, nil, detectNow)
	require.Len(t, out, 1)
	assert.Equal(t, models.SignalDivergence, out[0].Kind)
	assert.Contains(t, out[0].Message, "Bearish divergence")
	assert.Contains(t, out[0].Message, "-12.50%")
}

func TestMomentumRequiresLargeCap(t *testing.T) {
	assets := []models.MarketAsset{
		{Symbol: "small", Change24h: 30, Change7d: 10, MarketCap: 1_000_000_000, ATHChangePct: -20},
		{Symbol: "big", Change24h: -18, Change7d: -5, MarketCap: 5_000_000_000, ATHChangePct: -20},
	}

	out := DetectAt(assets, nil, detectNow)
	require.Len(t, out, 1, "a 30 percent move at the cap floor must stay silent")
	assert.Equal(t, models.SignalMomentum, out[0].Kind)
	assert.Equal(t, models.SeverityHigh, out[0].Severity)
	assert.Equal(t, "BIG", out[0].Symbol)
	assert.Contains(t, out[0].Message, "downward")
	assert.Contains(t, out[0].Message, "-18.00%")
}

func TestSupportResistanceBandsAreExclusive(t *testing.T) {
	assets := []models.MarketAsset{
		{Symbol: "near", Price: 98, ATH: 100, ATHChangePct: -2},
		{Symbol: "deep", Price: 20, ATH: 100, ATHChangePct: -80},
		{Symbol: "mid", Price: 70, ATH: 100, ATHChangePct: -30},
	}

	out := DetectAt(assets, nil, detectNow)
	require.Len(t, out, 2)

	perSymbol := map[string]int{}
	for _, s := range out {
		require.Equal(t, models.SignalSupportResistance, s.Kind)
		perSymbol[s.Symbol]++
	}
	assert.Equal(t, map[string]int{"NEAR": 1, "DEEP": 1}, perSymbol)

	assert.Equal(t, models.SeverityHigh, out[0].Severity)
	assert.Contains(t, out[0].Message, "Approaching ATH")
	assert.Contains(t, out[0].Message, "2.00%")

	assert.Equal(t, models.SeverityMedium, out[1].Severity)
	assert.Contains(t, out[1].Message, "Deep correction")
	assert.Contains(t, out[1].Message, "80.00%")
}

func TestSeverityOrderingAcrossRules(t *testing.T) {
	assets := []models.MarketAsset{
		{Symbol: "div", Change24h: 15, Change7d: -1, MarketCap: 500_000_000, ATHChangePct: -20},
		{Symbol: "mom", Change24h: 20, Change7d: 5, MarketCap: 3_000_000_000, ATHChangePct: -20},
	}
	view := []models.VolumeEntry{
		{Symbol: "VOL", Volume: 1e9, VolumeChange: 70},
	}

	out := DetectAt(assets, view, detectNow)
	require.Len(t, out, 3)

	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Severity.Rank(), out[i].Severity.Rank())
	}
	// Within the medium tier, volume anomalies precede divergences.
	assert.Equal(t,
		[]models.SignalKind{models.SignalMomentum, models.SignalVolumeAnomaly, models.SignalDivergence},
		kindsOf(out))
}

func TestDetectAtIsDeterministic(t *testing.T) {
	assets := []models.MarketAsset{
		{Symbol: "aaa", Change24h: 16, Change7d: -2, MarketCap: 2_000_000_000, ATHChangePct: -3},
		{Symbol: "bbb", Change24h: -11, Change7d: 1, MarketCap: 800_000_000, ATHChangePct: -60},
	}
	view := []models.VolumeEntry{
		{Symbol: "AAA", Volume: 5e9, VolumeChange: 110},
	}

	first := DetectAt(assets, view, detectNow)
	second := DetectAt(assets, view, detectNow)
	assert.Equal(t, first, second)
}
