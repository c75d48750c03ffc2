package service

import (
	"testing"
	"time"

	"github.com/bitfantasy/nimo-build/internal/crm/entity"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func newTestService() *BidService {
	return NewBidService(nil, Deps{Now: func() time.Time { return fixedNow }})
}

func TestAnnotatePositiveMargin(t *testing.T) {
	due := fixedNow.AddDate(0, 0, 3)
	v := newTestService().annotate(entity.Bid{
		ID:            "b1",
		BidAmount:     money("1500000"),
		EstimatedCost: money("1200000"),
		DueDate:       &due,
		Status:        string(metrics.BidStatusSubmitted),
	})

	require.NotNil(t, v.MarginPct)
	assert.InDelta(t, 20.0, *v.MarginPct, 1e-9)
	assert.Equal(t, metrics.MarginPositive, v.MarginTier)
	assert.Equal(t, "20.0%", v.MarginDisplay)
	assert.Equal(t, metrics.WindowDueSoon, v.Window)
	assert.Equal(t, "$1,500,000.00", v.BidAmountDisplay)
}

func TestAnnotateMissingAmounts(t *testing.T) {
	past := fixedNow.AddDate(0, 0, -1)
	v := newTestService().annotate(entity.Bid{ID: "b2", DueDate: &past, Status: string(metrics.BidStatusInProgress)})

	assert.Nil(t, v.MarginPct)
	assert.Empty(t, v.MarginTier)
	assert.Equal(t, metrics.NotComputable, v.MarginDisplay)
	assert.Equal(t, metrics.NotComputable, v.BidAmountDisplay)
	assert.Equal(t, metrics.WindowOverdue, v.Window)
}

func TestApplyStatusStamps(t *testing.T) {
	b := &entity.Bid{Status: string(metrics.BidStatusInProgress)}
	b.ApplyStatus(string(metrics.BidStatusSubmitted), fixedNow)
	require.NotNil(t, b.SubmittedAt)
	assert.Nil(t, b.DecidedAt)

	later := fixedNow.Add(time.Hour)
	b.ApplyStatus(string(metrics.BidStatusWon), later)
	require.NotNil(t, b.DecidedAt)
	assert.Equal(t, later, *b.DecidedAt)

	b.ApplyStatus(string(metrics.BidStatusWon), later.Add(time.Hour))
	assert.Equal(t, later, *b.DecidedAt, "same status keeps stamp")
}

func TestBidFromRow(t *testing.T) {
	row := importer.Row{Line: 2, Values: map[string]string{
		"project_name":   "Harbor Clinic",
		"client_name":    "City Health",
		"bid_amount":     "$100,000",
		"estimated_cost": "96000",
		"due_date":       "02/15/2026",
		"status":         "No Bid",
	}}
	bid, err := bidFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, "no_bid", bid.Status)
	assert.Equal(t, "100000", bid.BidAmount.Decimal.String())
	assert.Equal(t, "2026-02-15", bid.DueDate.Format("2006-01-02"))

	pct, ok := metrics.BidMargin(bid.Record())
	require.True(t, ok)
	assert.Equal(t, metrics.MarginNegative, metrics.ClassifyMargin(pct))
}

func TestBidFromRowErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing project": {"project_name": ""},
		"bad status":      {"project_name": "x", "status": "pending"},
		"bad amount":      {"project_name": "x", "bid_amount": "lots"},
		"bad date":        {"project_name": "x", "due_date": "soon"},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := bidFromRow(importer.Row{Line: 3, Values: values})
			assert.Error(t, err)
		})
	}
}

func TestListFilterSplitsDBAndDerived(t *testing.T) {
	f := BidListFilter{Status: "won", Search: "tower", Window: metrics.WindowOverdue}
	db := f.dbFilters()
	assert.Equal(t, "won", db["status"])
	assert.Equal(t, "tower", db["search"])
	assert.NotContains(t, db, "window")
}
