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

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	var phasesPath, tasksPath string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Phase rollups, milestones and schedule summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			pt, err := readTable(phasesPath)
			if err != nil {
				return err
			}
			if err := pt.RequireColumns("id", "name"); err != nil {
				return err
			}
			tt, err := readTable(tasksPath)
			if err != nil {
				return err
			}
			if err := tt.RequireColumns("id", "name"); err != nil {
				return err
			}

			phases, pres := parsePhases(pt)
			reportSkipped(cmd.ErrOrStderr(), pres)
			tasks, names, tres := parseTasks(tt)
			reportSkipped(cmd.ErrOrStderr(), tres)
			return runSchedule(cmd, phases, tasks, names, now, opts.out)
		},
	}
	cmd.Flags().StringVar(&phasesPath, "phases", "", "Phases CSV/XLSX file: id,name,sort_order (required)")
	cmd.Flags().StringVar(&tasksPath, "tasks", "", "Tasks CSV/XLSX file (required)")
	_ = cmd.MarkFlagRequired("phases")
	_ = cmd.MarkFlagRequired("tasks")
	return cmd
}

func parsePhases(t *importer.Table) ([]metrics.PhaseRecord, *importer.Result) {
	res := &importer.Result{Total: len(t.Rows)}
	out := make([]metrics.PhaseRecord, 0, len(t.Rows))
	for i, r := range t.Rows {
		if r.Get("id") == "" {
			res.Fail(r.Line, fmt.Errorf("id is required"))
			continue
		}
		// 未给顺序时按文件顺序
		order, err := importer.ParseInt(r.Get("sort_order"), i+1)
		if err != nil {
			res.Fail(r.Line, err)
			continue
		}
		res.OK()
		out = append(out, metrics.PhaseRecord{ID: r.Get("id"), Name: r.Get("name"), Order: order})
	}
	return out, res
}

func parseTasks(t *importer.Table) ([]metrics.TaskRecord, map[string]string, *importer.Result) {
	res := &importer.Result{Total: len(t.Rows)}
	out := make([]metrics.TaskRecord, 0, len(t.Rows))
	names := make(map[string]string, len(t.Rows))
	for _, r := range t.Rows {
		task, err := taskFromRow(r)
		if err != nil {
			res.Fail(r.Line, err)
			continue
		}
		res.OK()
		out = append(out, *task)
		names[task.ID] = r.Get("name")
	}
	return out, names, res
}

func taskFromRow(r importer.Row) (*metrics.TaskRecord, error) {
	if r.Get("id") == "" {
		return nil, fmt.Errorf("id is required")
	}
	status := metrics.TaskStatus(normalizeKey(r.Get("status")))
	if status == "" {
		status = metrics.TaskStatusNotStarted
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	pct, err := importer.ParseInt(strings.TrimSuffix(r.Get("completion_pct"), "%"), 0)
	if err != nil {
		return nil, err
	}
	if pct < 0 || pct > 100 {
		return nil, fmt.Errorf("completion_pct %d out of range 0-100", pct)
	}
	if status == metrics.TaskStatusCompleted {
		pct = 100
	}
	start, err := importer.ParseDate(r.Get("start_date"))
	if err != nil {
		return nil, err
	}
	end, err := importer.ParseDate(r.Get("end_date"))
	if err != nil {
		return nil, err
	}
	task := &metrics.TaskRecord{
		ID:             r.Get("id"),
		CompletionPct:  pct,
		Status:         status,
		IsMilestone:    importer.ParseBool(r.Get("is_milestone")),
		IsCriticalPath: importer.ParseBool(r.Get("is_critical_path")),
		StartDate:      start,
		EndDate:        end,
	}
	if pid := r.Get("phase_id"); pid != "" {
		task.PhaseID = &pid
	}
	return task, nil
}

func runSchedule(cmd *cobra.Command, phases []metrics.PhaseRecord, tasks []metrics.TaskRecord, names map[string]string, now time.Time, out string) error {
	w := cmd.OutOrStdout()
	rollups := metrics.RollupPhases(phases, tasks)
	phaseSheet := report.Sheet{
		Name: "Phases",
		Columns: []report.Column{
			{Header: "Order", Width: 8}, {Header: "Phase", Width: 28}, {Header: "Tasks", Width: 8},
			{Header: "Completed", Width: 10}, {Header: "Completion %", Width: 12},
		},
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ORDER\tPHASE\tTASKS\tDONE\tCOMPLETION")
	for _, r := range rollups {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d%%\n", r.Order, r.Name, r.TaskCount, r.CompletedTask, r.Completion)
		phaseSheet.AddRow(r.Order, r.Name, r.TaskCount, r.CompletedTask, r.Completion)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	// 指向不存在阶段的任务与未分配任务一起列出
	known := make(map[string]bool, len(phases))
	for _, p := range phases {
		known[p.ID] = true
	}
	unassigned := 0
	for _, t := range tasks {
		if t.PhaseID == nil || !known[*t.PhaseID] {
			unassigned++
		}
	}
	fmt.Fprintf(w, "Unassigned tasks: %d\n", unassigned)

	milestones := metrics.Milestones(tasks)
	mileSheet := report.Sheet{
		Name: "Milestones",
		Columns: []report.Column{
			{Header: "Milestone", Width: 32}, {Header: "Start", Width: 12}, {Header: "End", Width: 12},
			{Header: "Status", Width: 12}, {Header: "Window", Width: 10},
		},
	}
	if len(milestones) > 0 {
		fmt.Fprintln(w, "\nMilestones:")
		tw = newTable(w)
		fmt.Fprintln(tw, "NAME\tSTART\tEND\tSTATUS\tWINDOW")
		for _, m := range milestones {
			window := metrics.TaskWindow(m, now)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", names[m.ID], orDash(report.Date(m.StartDate)),
				orDash(report.Date(m.EndDate)), m.Status, window)
			mileSheet.AddRow(names[m.ID], report.Date(m.StartDate), report.Date(m.EndDate), string(m.Status), string(window))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	s := metrics.SummarizeSchedule(tasks, now)
	fmt.Fprintf(w, "\nTasks: %d  Not started: %d  In progress: %d  Completed: %d  Blocked: %d  Critical path: %d  Overdue: %d  Completion: %d%%\n",
		s.TotalTasks, s.NotStarted, s.InProgress, s.Completed, s.Blocked, s.CriticalPath, s.Overdue, s.Completion)
	phaseSheet.Summary = []interface{}{"", "Overall", s.TotalTasks, s.Completed, s.Completion}

	return writeReport(out, phaseSheet, mileSheet)
}
