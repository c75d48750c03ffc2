package main

import (
	"fmt"
	"strings"

	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/report"
	"github.com/spf13/cobra"
)

type expenseRow struct {
	description string
	vendor      string
	rec         metrics.PropertyExpenseRecord
}

func newExpensesCmd(opts *rootOptions) *cobra.Command {
	var in, property, expenseType string
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Monthly equivalents, run rate and annual totals for property expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := readTable(in)
			if err != nil {
				return err
			}
			if err := t.RequireColumns("expense_type", "amount"); err != nil {
				return err
			}
			rows, res := parseExpenses(t)
			reportSkipped(cmd.ErrOrStderr(), res)
			f := metrics.ExpenseFilter{PropertyID: property, ExpenseType: normalizeKey(expenseType)}
			return runExpenses(cmd, rows, f, opts.out)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Expenses CSV/XLSX file (required)")
	cmd.Flags().StringVar(&property, "property", "", "Only this property_name")
	cmd.Flags().StringVar(&expenseType, "type", "", "Only this expense_type")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// normalizeKey "Property Tax" / "semi-annual" 转为下划线小写
func normalizeKey(s string) string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
}

func parseExpenses(t *importer.Table) ([]expenseRow, *importer.Result) {
	res := &importer.Result{Total: len(t.Rows)}
	rows := make([]expenseRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		e, err := expenseFromRow(r)
		if err != nil {
			res.Fail(r.Line, err)
			continue
		}
		res.OK()
		rows = append(rows, *e)
	}
	return rows, res
}

func expenseFromRow(r importer.Row) (*expenseRow, error) {
	expenseType := normalizeKey(r.Get("expense_type"))
	if expenseType == "" {
		return nil, fmt.Errorf("expense_type is required")
	}
	freq := metrics.Frequency(normalizeKey(r.Get("frequency")))
	if freq == "" {
		freq = metrics.FrequencyMonthly
	}
	if !freq.Valid() {
		return nil, fmt.Errorf("unknown frequency %q", freq)
	}
	amount, err := importer.ParseMoney(r.Get("amount"))
	if err != nil {
		return nil, err
	}
	if !amount.Valid {
		return nil, fmt.Errorf("amount is required")
	}
	if !amount.Decimal.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than zero")
	}
	return &expenseRow{
		description: r.Get("description"),
		vendor:      r.Get("vendor_name"),
		rec: metrics.PropertyExpenseRecord{
			ID:          fmt.Sprintf("line-%d", r.Line),
			PropertyID:  r.Get("property_name"),
			ExpenseType: expenseType,
			Amount:      amount.Decimal.InexactFloat64(),
			Frequency:   freq,
		},
	}, nil
}

func runExpenses(cmd *cobra.Command, rows []expenseRow, f metrics.ExpenseFilter, out string) error {
	detail := report.Sheet{
		Name: "Expenses",
		Columns: []report.Column{
			{Header: "Property", Width: 28}, {Header: "Type", Width: 16}, {Header: "Description", Width: 36},
			{Header: "Vendor", Width: 24}, {Header: "Frequency", Width: 12}, {Header: "Amount", Width: 16},
			{Header: "Monthly Equivalent", Width: 18},
		},
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "PROPERTY\tTYPE\tDESCRIPTION\tFREQUENCY\tAMOUNT\tMONTHLY")
	records := make([]metrics.PropertyExpenseRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.rec)
		if !f.Match(r.rec) {
			continue
		}
		monthly := metrics.RoundCents(metrics.ToMonthlyEquivalent(r.rec.Amount, r.rec.Frequency))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", orDash(r.rec.PropertyID), r.rec.ExpenseType, orDash(r.description),
			r.rec.Frequency, metrics.FormatCurrency(r.rec.Amount), metrics.FormatCurrency(monthly))
		detail.AddRow(r.rec.PropertyID, r.rec.ExpenseType, r.description, r.vendor, string(r.rec.Frequency),
			r.rec.Amount, monthly)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := metrics.SummarizeExpenses(records, f)
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\nExpenses: %d  Monthly run rate: %s  Annual total: %s  One-time: %s\n", s.Count,
		metrics.FormatCurrency(s.MonthlyRunRate), metrics.FormatCurrency(s.AnnualTotal), metrics.FormatCurrency(s.OneTimeTotal))

	totals := report.Sheet{
		Name: "Summary",
		Columns: []report.Column{
			{Header: "Expense Type", Width: 18}, {Header: "Count", Width: 8}, {Header: "Monthly", Width: 16},
			{Header: "Annual", Width: 16}, {Header: "One-Time", Width: 16},
		},
	}
	tw = newTable(w)
	fmt.Fprintln(tw, "TYPE\tCOUNT\tMONTHLY\tANNUAL\tONE-TIME")
	for _, bt := range s.ByType {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", bt.ExpenseType, bt.Count, metrics.FormatCurrency(bt.Monthly),
			metrics.FormatCurrency(bt.Annual), metrics.FormatCurrency(bt.OneTime))
		totals.AddRow(bt.ExpenseType, bt.Count, metrics.RoundCents(bt.Monthly), metrics.RoundCents(bt.Annual), metrics.RoundCents(bt.OneTime))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	detail.Summary = []interface{}{"Total", fmt.Sprintf("%d expenses", s.Count), "", "", "", "", metrics.RoundCents(s.MonthlyRunRate)}
	totals.Summary = []interface{}{"Total", s.Count, metrics.RoundCents(s.MonthlyRunRate), metrics.RoundCents(s.AnnualTotal), metrics.RoundCents(s.OneTimeTotal)}
	return writeReport(out, detail, totals)
}
