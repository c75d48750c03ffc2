package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/report"
	"github.com/spf13/cobra"
)

type bidRow struct {
	project string
	client  string
	rec     metrics.BidRecord
}

func newBidsCmd(opts *rootOptions) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "bids",
		Short: "Margin, tier and due window per bid plus the pipeline summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			t, err := readTable(in)
			if err != nil {
				return err
			}
			if err := t.RequireColumns("project_name"); err != nil {
				return err
			}
			rows, res := parseBids(t)
			reportSkipped(cmd.ErrOrStderr(), res)
			return runBids(cmd, rows, now, opts.out)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Bids CSV/XLSX file (required)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func parseBids(t *importer.Table) ([]bidRow, *importer.Result) {
	res := &importer.Result{Total: len(t.Rows)}
	rows := make([]bidRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		b, err := bidFromRow(r)
		if err != nil {
			res.Fail(r.Line, err)
			continue
		}
		res.OK()
		rows = append(rows, *b)
	}
	return rows, res
}

func bidFromRow(r importer.Row) (*bidRow, error) {
	if r.Get("project_name") == "" {
		return nil, fmt.Errorf("project_name is required")
	}
	status := metrics.BidStatus(strings.ToLower(strings.ReplaceAll(r.Get("status"), " ", "_")))
	if status == "" {
		status = metrics.BidStatusInProgress
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	amount, err := importer.ParseMoney(r.Get("bid_amount"))
	if err != nil {
		return nil, err
	}
	cost, err := importer.ParseMoney(r.Get("estimated_cost"))
	if err != nil {
		return nil, err
	}
	due, err := importer.ParseDate(r.Get("due_date"))
	if err != nil {
		return nil, err
	}
	return &bidRow{
		project: r.Get("project_name"),
		client:  r.Get("client_name"),
		rec: metrics.BidRecord{
			ID:            r.Get("code"),
			BidAmount:     metrics.FromNullDecimal(amount),
			EstimatedCost: metrics.FromNullDecimal(cost),
			DueDate:       due,
			Status:        status,
		},
	}, nil
}

func money(v *float64) string {
	if v == nil {
		return "-"
	}
	return metrics.FormatCurrency(*v)
}

// cellNum 空值写空单元格
func cellNum(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return metrics.RoundCents(*v)
}

func runBids(cmd *cobra.Command, rows []bidRow, now time.Time, out string) error {
	sheet := report.Sheet{
		Name: "Bids",
		Columns: []report.Column{
			{Header: "Project", Width: 32}, {Header: "Client", Width: 24}, {Header: "Status", Width: 12},
			{Header: "Bid Amount", Width: 16}, {Header: "Estimated Cost", Width: 16},
			{Header: "Margin", Width: 10}, {Header: "Tier", Width: 10}, {Header: "Window", Width: 10},
		},
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "PROJECT\tSTATUS\tBID\tCOST\tMARGIN\tTIER\tWINDOW")
	records := make([]metrics.BidRecord, 0, len(rows))
	for _, r := range rows {
		pct, ok := metrics.BidMargin(r.rec)
		tier := metrics.MarginTierOf(pct, ok)
		window := metrics.BidWindow(r.rec, now)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.project, r.rec.Status, money(r.rec.BidAmount),
			money(r.rec.EstimatedCost), metrics.FormatMargin(pct, ok), orDash(string(tier)), window)
		sheet.AddRow(r.project, r.client, string(r.rec.Status), cellNum(r.rec.BidAmount), cellNum(r.rec.EstimatedCost),
			metrics.FormatMargin(pct, ok), string(tier), string(window))
		records = append(records, r.rec)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	p := metrics.SummarizeBids(records, now)
	winRate, avgMargin := metrics.NotComputable, metrics.NotComputable
	if p.WinRate != nil {
		winRate = metrics.FormatPercent(*p.WinRate, 1)
	}
	if p.AverageMargin != nil {
		avgMargin = metrics.FormatPercent(*p.AverageMargin, 1)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nBids: %d  Total value: %s  Won: %s  Win rate: %s  Avg margin: %s  Due soon: %d  Overdue: %d\n",
		p.Total, metrics.FormatCurrency(p.TotalValue), metrics.FormatCurrency(p.WonValue), winRate, avgMargin, p.DueSoon, p.Overdue)

	sheet.Summary = []interface{}{"Total", fmt.Sprintf("%d bids", p.Total), "", metrics.RoundCents(p.TotalValue), "", avgMargin}
	return writeReport(out, sheet)
}
