package service

import (
	"testing"
	"time"

	"github.com/bitfantasy/nimo-build/internal/property/entity"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func row(values map[string]string) importer.Row {
	return importer.Row{Line: 2, Values: values}
}

func TestAnnotateExpenseMonthlyEquivalent(t *testing.T) {
	v := annotateExpense(entity.PropertyExpense{Amount: decimal.RequireFromString("1200"), Frequency: "quarterly"})
	assert.Equal(t, 400.0, v.MonthlyEquivalent)
	assert.Equal(t, "$400.00", v.MonthlyDisplay)

	v = annotateExpense(entity.PropertyExpense{Amount: decimal.RequireFromString("50000"), Frequency: "one_time"})
	assert.Zero(t, v.MonthlyEquivalent)
}

func TestExpenseFromRow(t *testing.T) {
	e, err := expenseFromRow(row(map[string]string{
		"expense_type":   "Property Tax",
		"description":    "Annual Property Tax",
		"amount":         "$1,440,000",
		"frequency":      "Annual",
		"effective_date": "2025-01-15",
		"end_date":       "2025-12-31",
		"vendor_name":    "Tarrant County Tax Assessor",
	}))
	require.NoError(t, err)
	assert.Equal(t, entity.ExpensePropertyTax, e.ExpenseType)
	assert.Equal(t, "annual", e.Frequency)
	assert.True(t, e.Amount.Equal(decimal.RequireFromString("1440000")))
	require.NotNil(t, e.EffectiveDate)

	e, err = expenseFromRow(row(map[string]string{"expense_type": "cam", "amount": "600", "frequency": "semi-annual"}))
	require.NoError(t, err)
	assert.Equal(t, "semi_annual", e.Frequency)

	e, err = expenseFromRow(row(map[string]string{"expense_type": "utilities", "amount": "10"}))
	require.NoError(t, err)
	assert.Equal(t, "monthly", e.Frequency, "frequency defaults to monthly")
}

func TestExpenseFromRowErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown type":      {"expense_type": "parking", "amount": "10"},
		"unknown frequency": {"expense_type": "cam", "amount": "10", "frequency": "weekly"},
		"missing amount":    {"expense_type": "cam", "amount": ""},
		"bad amount":        {"expense_type": "cam", "amount": "ten"},
		"zero amount":       {"expense_type": "cam", "amount": "0"},
		"negative amount":   {"expense_type": "cam", "amount": "-25"},
		"bad date":          {"expense_type": "cam", "amount": "10", "effective_date": "someday"},
		"reversed dates":    {"expense_type": "cam", "amount": "10", "effective_date": "2025-06-01", "end_date": "2025-01-01"},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := expenseFromRow(row(values))
			assert.Error(t, err)
		})
	}
}

func TestMaintenanceFromRow(t *testing.T) {
	m, err := maintenanceFromRow(row(map[string]string{
		"title":          "Fire Alarm Panel - Trouble Signal",
		"priority":       "critical",
		"category":       "Fire Protection",
		"scheduled_date": "2026-01-12",
		"estimated_cost": "650",
	}))
	require.NoError(t, err)
	assert.Equal(t, string(metrics.PriorityEmergency), m.Priority)
	assert.True(t, m.EstimatedCost.Valid)

	m, err = maintenanceFromRow(row(map[string]string{"title": "Gym Equipment"}))
	require.NoError(t, err)
	assert.Equal(t, string(metrics.PriorityMedium), m.Priority)

	_, err = maintenanceFromRow(row(map[string]string{"title": ""}))
	assert.Error(t, err)
	_, err = maintenanceFromRow(row(map[string]string{"title": "x", "priority": "whenever"}))
	assert.Error(t, err)
}

func TestResolveProperty(t *testing.T) {
	names := map[string]string{"the meridian": "p1"}

	id, err := resolveProperty(names, "  The Meridian ", "")
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	id, err = resolveProperty(names, "", "p9")
	require.NoError(t, err)
	assert.Equal(t, "p9", id)

	_, err = resolveProperty(names, "", "")
	assert.Error(t, err)
	_, err = resolveProperty(names, "Harbor View", "p9")
	assert.EqualError(t, err, `unknown property "Harbor View"`)
}

func TestMaintenanceCompletedAt(t *testing.T) {
	m := &entity.MaintenanceRequest{Status: string(metrics.MaintenanceAssigned)}
	m.ApplyStatus(string(metrics.MaintenanceCompleted), fixedNow)
	require.NotNil(t, m.CompletedAt)

	m.ApplyStatus(string(metrics.MaintenanceClosed), fixedNow.Add(time.Hour))
	assert.Equal(t, fixedNow, *m.CompletedAt, "closing keeps the completion time")

	m.ApplyStatus(string(metrics.MaintenanceInProgress), fixedNow)
	assert.Nil(t, m.CompletedAt)
}

func TestMaintenanceAnnotate(t *testing.T) {
	svc := NewMaintenanceService(nil, nil, Deps{Now: func() time.Time { return fixedNow }})
	scheduled := fixedNow.AddDate(0, 0, -2)
	v := svc.annotate(entity.MaintenanceRequest{
		Status:        string(metrics.MaintenanceAssigned),
		ScheduledDate: &scheduled,
		CreatedAt:     fixedNow.AddDate(0, 0, -5),
	})
	assert.Equal(t, metrics.WindowOverdue, v.Window)
	assert.Equal(t, 5, v.DaysOpen)
}

func TestRoundSummary(t *testing.T) {
	s := roundSummary(metrics.ExpenseSummary{
		MonthlyRunRate: 100.0 / 3,
		AnnualTotal:    400,
		ByType:         []metrics.ExpenseTypeTotal{{Monthly: 2.0 / 3}},
	})
	assert.Equal(t, 33.33, s.MonthlyRunRate)
	assert.Equal(t, 0.67, s.ByType[0].Monthly)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, paginate(items, 1, 2))
	assert.Equal(t, []int{5}, paginate(items, 3, 2))
	assert.Empty(t, paginate(items, 4, 2))
}
