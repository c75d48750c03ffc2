package metrics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMonthlyEquivalent(t *testing.T) {
	assert.InDelta(t, 1200.0, ToMonthlyEquivalent(1200, FrequencyMonthly), 1e-9)
	assert.InDelta(t, 400.0, ToMonthlyEquivalent(1200, FrequencyQuarterly), 1e-9)
	assert.InDelta(t, 200.0, ToMonthlyEquivalent(1200, FrequencySemiAnnual), 1e-9)
	assert.InDelta(t, 100.0, ToMonthlyEquivalent(1200, FrequencyAnnual), 1e-9)
	assert.Zero(t, ToMonthlyEquivalent(1200, FrequencyOneTime))
	assert.Zero(t, ToMonthlyEquivalent(1200, Frequency("weekly")))
}

func TestMonthlyEquivalentRoundTrip(t *testing.T) {
	for _, x := range []float64{0.01, 1, 999.99, 1440000, 960000, 12345.678} {
		assert.InDelta(t, x, ToMonthlyEquivalent(x, FrequencyAnnual)*12, 1e-9)
		assert.Zero(t, ToMonthlyEquivalent(x, FrequencyOneTime))
	}
}

func TestQuarterlyScenario(t *testing.T) {
	batch := []PropertyExpenseRecord{{ID: "e1", PropertyID: "prop-1", Amount: 1200, Frequency: FrequencyQuarterly}}
	assert.Equal(t, 400.00, RoundCents(MonthlyRunRate(batch)))
	assert.Equal(t, 4800.00, RoundCents(AnnualTotal(batch)))
}

func TestSummarizeExpensesOverFilteredSet(t *testing.T) {
	batch := []PropertyExpenseRecord{
		{ID: "1", PropertyID: "a", ExpenseType: "utilities", Amount: 28000, Frequency: FrequencyMonthly},
		{ID: "2", PropertyID: "a", ExpenseType: "insurance", Amount: 960000, Frequency: FrequencyAnnual},
		{ID: "3", PropertyID: "b", ExpenseType: "utilities", Amount: 12000, Frequency: FrequencyMonthly},
		{ID: "4", PropertyID: "a", ExpenseType: "capex", Amount: 50000, Frequency: FrequencyOneTime},
	}

	all := SummarizeExpenses(batch, ExpenseFilter{})
	assert.Equal(t, 4, all.Count)
	assert.InDelta(t, 28000+80000+12000, all.MonthlyRunRate, 1e-6)
	assert.InDelta(t, 12*(28000+80000+12000), all.AnnualTotal, 1e-6)
	assert.InDelta(t, 50000, all.OneTimeTotal, 1e-9)
	require.Len(t, all.ByType, 3)
	assert.Equal(t, "capex", all.ByType[0].ExpenseType)
	assert.Zero(t, all.ByType[0].Monthly)
	assert.InDelta(t, 50000, all.ByType[0].OneTime, 1e-9)

	propA := SummarizeExpenses(batch, ExpenseFilter{PropertyID: "a"})
	assert.Equal(t, 3, propA.Count)
	assert.InDelta(t, 108000, propA.MonthlyRunRate, 1e-6)

	util := SummarizeExpenses(batch, ExpenseFilter{ExpenseType: "utilities"})
	assert.Equal(t, 2, util.Count)
	assert.InDelta(t, 40000*12, util.AnnualTotal, 1e-6)

	none := SummarizeExpenses(batch, ExpenseFilter{PropertyID: "zzz"})
	assert.Zero(t, none.Count)
	assert.Zero(t, none.AnnualTotal)
	assert.Empty(t, none.ByType)

	// 过滤不改动原始金额
	assert.Equal(t, 960000.0, batch[1].Amount)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "$400.00", FormatCurrency(400))
	assert.Equal(t, "$1,500,000.00", FormatCurrency(1500000))
	assert.Equal(t, "$1,234.57", FormatCurrency(1234.567))
	assert.Equal(t, "-$96,000.50", FormatCurrency(-96000.5))
	assert.Equal(t, "$999.99", FormatCurrency(999.99))
	assert.Equal(t, "4.0%", FormatPercent(4, 1))
	assert.Equal(t, "105%", FormatPercent(105, 0))
}

func TestFilterHelpers(t *testing.T) {
	bids := []BidRecord{
		{ID: "1", Status: BidStatusSubmitted, DueDate: at(refNow.AddDate(0, 0, 1))},
		{ID: "2", Status: BidStatusSubmitted, BidAmount: f64(100), EstimatedCost: f64(80)},
		{ID: "3", Status: BidStatusWon, DueDate: at(refNow.AddDate(0, 0, 1))},
	}
	soon := Filter(bids, BidFilter{Window: WindowDueSoon}.Predicate(refNow))
	require.Len(t, soon, 1)
	assert.Equal(t, "1", soon[0].ID)

	positive := Filter(bids, BidFilter{MarginTier: MarginPositive}.Predicate(refNow))
	require.Len(t, positive, 1)
	assert.Equal(t, "2", positive[0].ID)

	reqs := []MaintenanceRequestRecord{
		{ID: "1", Status: MaintenanceSubmitted, Priority: PriorityEmergency},
		{ID: "2", Status: MaintenanceClosed, Priority: PriorityEmergency},
	}
	open := Filter(reqs, MaintenanceFilter{Priority: PriorityEmergency, OpenOnly: true}.Predicate())
	require.Len(t, open, 1)
	assert.Equal(t, "1", open[0].ID)
	assert.Equal(t, 1, MaintenanceKPIs(open, refNow).Total)
}

func TestNullDecimalConversion(t *testing.T) {
	assert.Nil(t, FromNullDecimal(decimal.NullDecimal{}))
	v := FromNullDecimal(decimal.NewNullDecimal(decimal.RequireFromString("1500000.25")))
	require.NotNil(t, v)
	assert.Equal(t, 1500000.25, *v)

	assert.False(t, ToNullDecimal(nil).Valid)
	assert.Equal(t, "12.35", ToNullDecimal(f64(12.345)).Decimal.String())
}
