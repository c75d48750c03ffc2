package metrics

import "time"

// 以下记录均为只读快照，由数据层转换后传入，引擎不做修改。

// BidRecord 投标
type BidRecord struct {
	ID            string
	BidAmount     *float64
	EstimatedCost *float64
	DueDate       *time.Time
	Status        BidStatus
}

// TaskRecord 任务
type TaskRecord struct {
	ID             string
	PhaseID        *string
	CompletionPct  int
	Status         TaskStatus
	IsMilestone    bool
	IsCriticalPath bool
	StartDate      *time.Time
	EndDate        *time.Time
}

// PhaseRecord 阶段，完成度不存储，由任务推导
type PhaseRecord struct {
	ID    string
	Name  string
	Order int
}

// MaintenanceRequestRecord 维修工单
type MaintenanceRequestRecord struct {
	ID            string
	Priority      MaintenancePriority
	Status        MaintenanceStatus
	ScheduledDate *time.Time
	EstimatedCost *float64
	ActualCost    *float64
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// SubmittalRecord 送审
type SubmittalRecord struct {
	ID         string
	Status     SubmittalStatus
	DueDate    *time.Time
	CreatedAt  time.Time
	ReviewedAt *time.Time
}

// RFIRecord 技术问询
type RFIRecord struct {
	ID         string
	Status     RFIStatus
	DueDate    *time.Time
	CreatedAt  time.Time
	AnsweredAt *time.Time
}

// PropertyExpenseRecord 物业运营费用
type PropertyExpenseRecord struct {
	ID          string
	PropertyID  string
	ExpenseType string
	Amount      float64
	Frequency   Frequency
}
