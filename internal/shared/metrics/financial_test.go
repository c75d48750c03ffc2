package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestMarginPctMatchesFormula(t *testing.T) {
	pairs := [][2]float64{
		{1500000, 1200000},
		{100000, 96000},
		{39500000, 36000000},
		{1, 2},
		{250.5, 0},
		{0.01, 0.009},
	}
	for _, p := range pairs {
		got, ok := MarginPct(f64(p[0]), f64(p[1]))
		require.True(t, ok)
		assert.InDelta(t, (p[0]-p[1])/p[0]*100, got, 1e-9)
	}
}

func TestMarginPctUndefined(t *testing.T) {
	cases := []struct {
		name      string
		bid, cost *float64
	}{
		{"nil bid", nil, f64(100)},
		{"zero bid", f64(0), f64(100)},
		{"negative bid", f64(-5), f64(1)},
		{"nil cost", f64(100), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pct, ok := MarginPct(tc.bid, tc.cost)
			assert.False(t, ok)
			assert.Zero(t, pct)
			assert.Equal(t, MarginTier(""), MarginTierOf(pct, ok))
			assert.Equal(t, NotComputable, FormatMargin(pct, ok))
		})
	}
}

func TestMarginScenarios(t *testing.T) {
	pct, ok := BidMargin(BidRecord{BidAmount: f64(1500000), EstimatedCost: f64(1200000)})
	require.True(t, ok)
	assert.InDelta(t, 20.0, pct, 1e-9)
	assert.Equal(t, MarginPositive, MarginTierOf(pct, ok))
	assert.Equal(t, "20.0%", FormatMargin(pct, ok))

	pct, ok = BidMargin(BidRecord{BidAmount: f64(100000), EstimatedCost: f64(96000)})
	require.True(t, ok)
	assert.InDelta(t, 4.0, pct, 1e-9)
	assert.Equal(t, MarginNegative, MarginTierOf(pct, ok))
}

func TestClassifyMarginThresholds(t *testing.T) {
	assert.Equal(t, MarginPositive, ClassifyMargin(15))
	assert.Equal(t, MarginPositive, ClassifyMargin(42.3))
	assert.Equal(t, MarginLow, ClassifyMargin(14.999))
	assert.Equal(t, MarginLow, ClassifyMargin(5))
	assert.Equal(t, MarginNegative, ClassifyMargin(4.999))
	assert.Equal(t, MarginNegative, ClassifyMargin(0))
	assert.Equal(t, MarginNegative, ClassifyMargin(-12))
}

func TestBudgetUtilization(t *testing.T) {
	pct := BudgetUtilizationPct(f64(1050000), f64(1000000))
	assert.Equal(t, 105, pct)
	assert.Equal(t, UtilizationOver, ClassifyUtilization(pct))

	assert.Equal(t, 0, BudgetUtilizationPct(nil, f64(100)))
	assert.Equal(t, 0, BudgetUtilizationPct(f64(50), nil))
	assert.Equal(t, 0, BudgetUtilizationPct(f64(50), f64(0)))

	// round, not truncate
	assert.Equal(t, 87, BudgetUtilizationPct(f64(866), f64(1000)))
	assert.Equal(t, 86, BudgetUtilizationPct(f64(864), f64(1000)))
}

func TestClassifyUtilizationOrder(t *testing.T) {
	assert.Equal(t, UtilizationOver, ClassifyUtilization(101))
	assert.Equal(t, UtilizationWarning, ClassifyUtilization(100))
	assert.Equal(t, UtilizationWarning, ClassifyUtilization(86))
	assert.Equal(t, UtilizationWithin, ClassifyUtilization(85))
	assert.Equal(t, UtilizationWithin, ClassifyUtilization(0))
}
