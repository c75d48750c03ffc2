// Package main implements buildctl, an offline tool that runs the derived
// metrics over CSV/XLSX exports without a database.
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/report"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions 所有子命令共享的参数
type rootOptions struct {
	now string
	out string
}

// clock --now 未指定时取当前时间
func (o *rootOptions) clock() (time.Time, error) {
	if o.now == "" {
		return time.Now(), nil
	}
	t, err := importer.ParseDate(o.now)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now: %w", err)
	}
	return *t, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "buildctl",
		Short:         "Derived construction and property metrics from CSV/XLSX files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.now, "now", "", "Reference date for due windows (YYYY-MM-DD, default today)")
	root.PersistentFlags().StringVarP(&opts.out, "out", "o", "", "Also write the report to this .xlsx file")

	root.AddCommand(newBidsCmd(opts), newExpensesCmd(opts), newScheduleCmd(opts))
	return root
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func readTable(path string) (*importer.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := importer.Read(f, path, 0)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// reportSkipped 无效行不中断，打印到stderr
func reportSkipped(w io.Writer, res *importer.Result) {
	for _, e := range res.Errors {
		fmt.Fprintf(w, "skipped line %d: %s\n", e.Line, e.Message)
	}
}

func writeReport(path string, sheets ...report.Sheet) error {
	if path == "" {
		return nil
	}
	data, err := report.Bytes(sheets...)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
