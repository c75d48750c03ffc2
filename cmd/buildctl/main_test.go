package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

const bidsCSV = `project_name,client_name,bid_amount,estimated_cost,due_date,status
Riverside Medical,Acme,"$1,500,000","$1,200,000",2026-01-12,submitted
Harbor Logistics,Beta,100000,96000,2025-12-01,lost
Oak Tower,Gamma,,,2026-01-05,In Progress
,Nameless,1,1,,submitted
`

func TestBidsCommand(t *testing.T) {
	in := writeFile(t, "bids.csv", bidsCSV)
	out := filepath.Join(t.TempDir(), "bids.xlsx")

	stdout, stderr, err := run(t, "bids", "--in", in, "--now", "2026-01-10", "--out", out)
	require.NoError(t, err)

	assert.Contains(t, stderr, "skipped line 5: project_name is required")
	assert.Regexp(t, `Riverside Medical\s+submitted\s+\$1,500,000.00\s+\$1,200,000.00\s+20.0%\s+positive\s+due_soon`, stdout)
	assert.Regexp(t, `Harbor Logistics\s+lost\s+.*4.0%\s+negative\s+normal`, stdout)
	assert.Regexp(t, `Oak Tower\s+in_progress\s+-\s+-\s+N/A\s+-\s+overdue`, stdout)
	assert.Contains(t, stdout, "Bids: 3  Total value: $1,600,000.00  Won: $0.00  Win rate: 0.0%  Avg margin: 12.0%  Due soon: 1  Overdue: 1")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Bids")
	require.NoError(t, err)
	// header + 3 bids + summary
	assert.Len(t, rows, 5)
	assert.Equal(t, "Riverside Medical", rows[1][0])
}

func TestBidsCommandRequiresInput(t *testing.T) {
	_, _, err := run(t, "bids")
	require.Error(t, err)

	_, _, err = run(t, "bids", "--in", writeFile(t, "bids.txt", "x"))
	require.Error(t, err)

	_, _, err = run(t, "bids", "--in", writeFile(t, "bids.csv", bidsCSV), "--now", "someday")
	require.Error(t, err)
}

const expensesCSV = `expense_type,description,amount,frequency,effective_date,end_date,vendor_name,property_name
insurance,All-Risk Coverage,960000,annual,2025-01-01,2025-12-31,Marsh McLennan,The Meridian
utilities,Common Area Electricity,28000,monthly,2025-01-01,2025-12-31,Oncor Electric,The Meridian
CAM,Roof Drain Cleaning,1200,quarterly,,,Drain Co,Harbor View
capex,Boiler replacement,50000,one-time,,,Mech Co,The Meridian
utilities,Water,abc,monthly,,,City,Harbor View
`

func TestExpensesCommand(t *testing.T) {
	in := writeFile(t, "expenses.csv", expensesCSV)

	stdout, stderr, err := run(t, "expenses", "--in", in)
	require.NoError(t, err)
	assert.Contains(t, stderr, "skipped line 6")
	assert.Contains(t, stdout, "Expenses: 4  Monthly run rate: $108,400.00  Annual total: $1,300,800.00  One-time: $50,000.00")
	assert.Regexp(t, `Harbor View\s+cam\s+Roof Drain Cleaning\s+quarterly\s+\$1,200.00\s+\$400.00`, stdout)

	stdout, _, err = run(t, "expenses", "--in", in, "--property", "The Meridian")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Expenses: 3  Monthly run rate: $108,000.00")
	assert.NotContains(t, stdout, "Harbor View")

	out := filepath.Join(t.TempDir(), "expenses.xlsx")
	stdout, _, err = run(t, "expenses", "--in", in, "--type", "cam", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Expenses: 1  Monthly run rate: $400.00  Annual total: $4,800.00  One-time: $0.00")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "cam", rows[1][0])
}

func TestScheduleCommand(t *testing.T) {
	phases := writeFile(t, "phases.csv", "id,name,sort_order\np2,Structure,2\np1,Site Prep,1\n")
	tasks := writeFile(t, "tasks.csv", `id,phase_id,name,status,completion_pct,is_milestone,is_critical_path,start_date,end_date
t1,p1,Clear site,completed,80,,yes,2025-11-01,2025-11-30
t2,p1,Excavate,in_progress,50%,,,2025-12-01,2026-02-01
t3,p2,Topping out,not_started,0,yes,yes,,2026-01-05
t4,ghost,Permits,blocked,20,,,,
t5,p1,Bad row,in_progress,140,,,,
`)

	stdout, stderr, err := run(t, "schedule", "--phases", phases, "--tasks", tasks, "--now", "2026-01-10")
	require.NoError(t, err)
	assert.Contains(t, stderr, "skipped line 6: completion_pct 140 out of range 0-100")
	assert.Regexp(t, `1\s+Site Prep\s+2\s+1\s+75%`, stdout)
	assert.Regexp(t, `2\s+Structure\s+1\s+0\s+0%`, stdout)
	assert.Contains(t, stdout, "Unassigned tasks: 1")
	assert.Regexp(t, `Topping out\s+-\s+2026-01-05\s+not_started\s+overdue`, stdout)
	assert.Contains(t, stdout, "Tasks: 4  Not started: 1  In progress: 1  Completed: 1  Blocked: 1  Critical path: 2  Overdue: 1  Completion: 43%")
}

func TestExpensesCommandSkipsZeroAmount(t *testing.T) {
	in := writeFile(t, "expenses.csv", "expense_type,description,amount,frequency,property_name\n"+
		"utilities,Water,0,monthly,The Meridian\n"+
		"utilities,Power,300,monthly,The Meridian\n")

	stdout, stderr, err := run(t, "expenses", "--in", in)
	require.NoError(t, err)
	assert.Contains(t, stderr, "skipped line 2")
	assert.Contains(t, stdout, "Expenses: 1  Monthly run rate: $300.00")
}
