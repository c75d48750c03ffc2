package metrics

import (
	"math"
	"sort"
	"time"
)

// === 阶段/任务汇总 ===

// PhaseCompletion 阶段内任务完成度的算术平均（四舍五入），无任务时为0
func PhaseCompletion(phaseID string, tasks []TaskRecord) int {
	sum, n := 0, 0
	for _, t := range tasks {
		if t.PhaseID != nil && *t.PhaseID == phaseID {
			sum += t.CompletionPct
			n++
		}
	}
	return meanRounded(sum, n)
}

// PhaseRollup 阶段汇总
type PhaseRollup struct {
	PhaseID       string `json:"phase_id"`
	Name          string `json:"name"`
	Order         int    `json:"order"`
	TaskCount     int    `json:"task_count"`
	CompletedTask int    `json:"completed_tasks"`
	Completion    int    `json:"completion"`
}

// RollupPhases 按Order排序输出每个阶段的完成度
func RollupPhases(phases []PhaseRecord, tasks []TaskRecord) []PhaseRollup {
	type acc struct{ sum, n, done int }
	byPhase := make(map[string]*acc, len(phases))
	for _, t := range tasks {
		if t.PhaseID == nil {
			continue
		}
		a := byPhase[*t.PhaseID]
		if a == nil {
			a = &acc{}
			byPhase[*t.PhaseID] = a
		}
		a.sum += t.CompletionPct
		a.n++
		if t.Status == TaskStatusCompleted {
			a.done++
		}
	}

	out := make([]PhaseRollup, 0, len(phases))
	for _, p := range phases {
		r := PhaseRollup{PhaseID: p.ID, Name: p.Name, Order: p.Order}
		if a := byPhase[p.ID]; a != nil {
			r.TaskCount = a.n
			r.CompletedTask = a.done
			r.Completion = meanRounded(a.sum, a.n)
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// TaskGroups 按阶段分组，无阶段的任务进入Unassigned
type TaskGroups struct {
	ByPhase    map[string][]TaskRecord
	Unassigned []TaskRecord
}

// GroupTasksByPhase 每个任务恰好出现在一个分组中，组内保持原顺序
func GroupTasksByPhase(tasks []TaskRecord) TaskGroups {
	g := TaskGroups{ByPhase: make(map[string][]TaskRecord)}
	for _, t := range tasks {
		if t.PhaseID == nil {
			g.Unassigned = append(g.Unassigned, t)
			continue
		}
		g.ByPhase[*t.PhaseID] = append(g.ByPhase[*t.PhaseID], t)
	}
	return g
}

// Len 所有分组的任务总数
func (g TaskGroups) Len() int {
	n := len(g.Unassigned)
	for _, ts := range g.ByPhase {
		n += len(ts)
	}
	return n
}

// Milestones 里程碑按开始日期（缺省用结束日期）升序，无日期的排在最前
func Milestones(tasks []TaskRecord) []TaskRecord {
	var out []TaskRecord
	for _, t := range tasks {
		if t.IsMilestone {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return milestoneKey(out[i]) < milestoneKey(out[j])
	})
	return out
}

// milestoneKey ISO日期字符串比较，空串最小
func milestoneKey(t TaskRecord) string {
	if t.StartDate != nil {
		return t.StartDate.Format("2006-01-02")
	}
	if t.EndDate != nil {
		return t.EndDate.Format("2006-01-02")
	}
	return ""
}

// ScheduleSummary 项目进度汇总
type ScheduleSummary struct {
	TotalTasks   int `json:"total_tasks"`
	NotStarted   int `json:"not_started"`
	InProgress   int `json:"in_progress"`
	Completed    int `json:"completed"`
	Blocked      int `json:"blocked"`
	CriticalPath int `json:"critical_path"`
	Milestones   int `json:"milestones"`
	Overdue      int `json:"overdue"`
	Completion   int `json:"completion"`
}

// SummarizeSchedule 整体完成度为全部任务完成度的平均值
func SummarizeSchedule(tasks []TaskRecord, now time.Time) ScheduleSummary {
	s := ScheduleSummary{TotalTasks: len(tasks)}
	sum := 0
	for _, t := range tasks {
		sum += t.CompletionPct
		switch t.Status {
		case TaskStatusNotStarted:
			s.NotStarted++
		case TaskStatusInProgress:
			s.InProgress++
		case TaskStatusCompleted:
			s.Completed++
		case TaskStatusBlocked:
			s.Blocked++
		}
		if t.IsCriticalPath {
			s.CriticalPath++
		}
		if t.IsMilestone {
			s.Milestones++
		}
		if TaskWindow(t, now) == WindowOverdue {
			s.Overdue++
		}
	}
	s.Completion = meanRounded(sum, len(tasks))
	return s
}

// === 维修KPI ===

// MaintenanceKPI 维修工单统计
type MaintenanceKPI struct {
	Total     int `json:"total"`
	Open      int `json:"open"`
	Completed int `json:"completed"`
	Emergency int `json:"emergency"`
	Overdue   int `json:"overdue"`
}

// MaintenanceKPIs 单次遍历；open/completed互斥，emergency与状态无关
func MaintenanceKPIs(reqs []MaintenanceRequestRecord, now time.Time) MaintenanceKPI {
	k := MaintenanceKPI{Total: len(reqs)}
	for _, r := range reqs {
		switch {
		case r.Status.Open():
			k.Open++
		case r.Status.Terminal():
			k.Completed++
		}
		if r.Priority == PriorityEmergency {
			k.Emergency++
		}
		if MaintenanceWindow(r, now) == WindowOverdue {
			k.Overdue++
		}
	}
	return k
}

// === 送审KPI ===

// SubmittalKPI 送审统计，Overdue独立于状态计数
type SubmittalKPI struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	UnderReview int `json:"under_review"`
	Approved    int `json:"approved"`
	Resubmit    int `json:"resubmit"`
	Rejected    int `json:"rejected"`
	Overdue     int `json:"overdue"`
	DueSoon     int `json:"due_soon"`
}

// SubmittalKPIs 送审按状态计数，另计逾期（截止日已过且未批准/驳回）
func SubmittalKPIs(subs []SubmittalRecord, now time.Time) SubmittalKPI {
	k := SubmittalKPI{Total: len(subs)}
	for _, s := range subs {
		switch s.Status {
		case SubmittalPending:
			k.Pending++
		case SubmittalUnderReview:
			k.UnderReview++
		case SubmittalApproved:
			k.Approved++
		case SubmittalResubmit:
			k.Resubmit++
		case SubmittalRejected:
			k.Rejected++
		}
		switch SubmittalWindow(s, now) {
		case WindowOverdue:
			k.Overdue++
		case WindowDueSoon:
			k.DueSoon++
		}
	}
	return k
}

// === 投标管道 ===

// BidPipeline 投标管道汇总
type BidPipeline struct {
	Total         int               `json:"total"`
	ByStatus      map[BidStatus]int `json:"by_status"`
	TotalValue    float64           `json:"total_value"`
	WonValue      float64           `json:"won_value"`
	WinRate       *float64          `json:"win_rate"`
	AverageMargin *float64          `json:"average_margin"`
	DueSoon       int               `json:"due_soon"`
	Overdue       int               `json:"overdue"`
}

// SummarizeBids 胜率=won/(won+lost)，无决标记录时为nil；平均毛利只统计可计算的投标
func SummarizeBids(bids []BidRecord, now time.Time) BidPipeline {
	p := BidPipeline{Total: len(bids), ByStatus: make(map[BidStatus]int)}
	marginSum, marginN := 0.0, 0
	for _, b := range bids {
		p.ByStatus[b.Status]++
		if b.BidAmount != nil {
			p.TotalValue += *b.BidAmount
			if b.Status == BidStatusWon {
				p.WonValue += *b.BidAmount
			}
		}
		if m, ok := BidMargin(b); ok {
			marginSum += m
			marginN++
		}
		switch BidWindow(b, now) {
		case WindowOverdue:
			p.Overdue++
		case WindowDueSoon:
			p.DueSoon++
		}
	}
	if decided := p.ByStatus[BidStatusWon] + p.ByStatus[BidStatusLost]; decided > 0 {
		rate := float64(p.ByStatus[BidStatusWon]) / float64(decided) * 100
		p.WinRate = &rate
	}
	if marginN > 0 {
		avg := marginSum / float64(marginN)
		p.AverageMargin = &avg
	}
	return p
}

func meanRounded(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}
