package metrics

import "time"

// Filter 返回满足keep的记录，顺序不变
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// BidFilter 投标列表过滤
type BidFilter struct {
	Status     BidStatus
	Window     Window
	MarginTier MarginTier
}

// Predicate 生成过滤函数，now用于窗口判断
func (f BidFilter) Predicate(now time.Time) func(BidRecord) bool {
	return func(b BidRecord) bool {
		if f.Status != "" && b.Status != f.Status {
			return false
		}
		if f.Window != "" && BidWindow(b, now) != f.Window {
			return false
		}
		if f.MarginTier != "" && MarginTierOf(BidMargin(b)) != f.MarginTier {
			return false
		}
		return true
	}
}

// MaintenanceFilter 工单过滤，OpenOnly与Status同时设置时两者都需满足
type MaintenanceFilter struct {
	Status   MaintenanceStatus
	Priority MaintenancePriority
	OpenOnly bool
}

func (f MaintenanceFilter) Predicate() func(MaintenanceRequestRecord) bool {
	return func(m MaintenanceRequestRecord) bool {
		if f.Status != "" && m.Status != f.Status {
			return false
		}
		if f.Priority != "" && m.Priority != f.Priority {
			return false
		}
		if f.OpenOnly && !m.Status.Open() {
			return false
		}
		return true
	}
}

// SubmittalFilter 送审过滤
type SubmittalFilter struct {
	Status      SubmittalStatus
	OverdueOnly bool
}

func (f SubmittalFilter) Predicate(now time.Time) func(SubmittalRecord) bool {
	return func(s SubmittalRecord) bool {
		if f.Status != "" && s.Status != f.Status {
			return false
		}
		if f.OverdueOnly && SubmittalWindow(s, now) != WindowOverdue {
			return false
		}
		return true
	}
}
