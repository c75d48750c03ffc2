package metrics

import "time"

// Window 日期窗口分类
type Window string

const (
	WindowOverdue Window = "overdue"
	WindowDueSoon Window = "due_soon"
	WindowNormal  Window = "normal"
)

// DueSoonHorizon 临期窗口，闭区间 [now, now+7d]
const DueSoonHorizon = 7 * 24 * time.Hour

// Classify 按默认7天窗口分类
func Classify(date *time.Time, terminal bool, now time.Time) Window {
	return ClassifyWithin(date, terminal, now, DueSoonHorizon)
}

// ClassifyWithin 空日期和终态记录一律为normal
func ClassifyWithin(date *time.Time, terminal bool, now time.Time, horizon time.Duration) Window {
	if date == nil || terminal {
		return WindowNormal
	}
	if date.Before(now) {
		return WindowOverdue
	}
	if !date.After(now.Add(horizon)) {
		return WindowDueSoon
	}
	return WindowNormal
}

// IsOverdue 截止日早于now且非终态
func IsOverdue(date *time.Time, terminal bool, now time.Time) bool {
	return Classify(date, terminal, now) == WindowOverdue
}

// IsDueSoon 截止日落在 [now, now+7d]
func IsDueSoon(date *time.Time, terminal bool, now time.Time) bool {
	return Classify(date, terminal, now) == WindowDueSoon
}

// DaysOpen 创建至今（或至解决时间）的整天数，不小于0。
// 只有终态且resolvedAt非空时才以resolvedAt为终点。
func DaysOpen(createdAt time.Time, terminal bool, resolvedAt *time.Time, now time.Time) int {
	end := now
	if terminal && resolvedAt != nil {
		end = *resolvedAt
	}
	d := end.Sub(createdAt)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// BidWindow 投标截止窗口
func BidWindow(b BidRecord, now time.Time) Window {
	return Classify(b.DueDate, b.Status.Terminal(), now)
}

// TaskWindow 任务以结束日期判断
func TaskWindow(t TaskRecord, now time.Time) Window {
	return Classify(t.EndDate, t.Status.Terminal(), now)
}

// MaintenanceWindow 工单以计划日期判断
func MaintenanceWindow(m MaintenanceRequestRecord, now time.Time) Window {
	return Classify(m.ScheduledDate, m.Status.Terminal(), now)
}

func SubmittalWindow(s SubmittalRecord, now time.Time) Window {
	return Classify(s.DueDate, s.Status.Terminal(), now)
}

func RFIWindow(r RFIRecord, now time.Time) Window {
	return Classify(r.DueDate, r.Status.Terminal(), now)
}

// SubmittalDaysOpen 审阅完成后停止计时
func SubmittalDaysOpen(s SubmittalRecord, now time.Time) int {
	return DaysOpen(s.CreatedAt, s.Status.Terminal(), s.ReviewedAt, now)
}

func RFIDaysOpen(r RFIRecord, now time.Time) int {
	return DaysOpen(r.CreatedAt, r.Status.Terminal(), r.AnsweredAt, now)
}

func MaintenanceDaysOpen(m MaintenanceRequestRecord, now time.Time) int {
	return DaysOpen(m.CreatedAt, m.Status.Terminal(), m.CompletedAt, now)
}
