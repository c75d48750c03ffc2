package metrics

// BidStatus 投标状态
type BidStatus string

const (
	BidStatusInProgress BidStatus = "in_progress"
	BidStatusSubmitted  BidStatus = "submitted"
	BidStatusWon        BidStatus = "won"
	BidStatusLost       BidStatus = "lost"
	BidStatusNoBid      BidStatus = "no_bid"
)

// Terminal 已决标（won/lost/no_bid）的投标不再参与截止日判断
func (s BidStatus) Terminal() bool {
	return s == BidStatusWon || s == BidStatusLost || s == BidStatusNoBid
}

// Valid 是否为已知状态
func (s BidStatus) Valid() bool {
	switch s {
	case BidStatusInProgress, BidStatusSubmitted, BidStatusWon, BidStatusLost, BidStatusNoBid:
		return true
	}
	return false
}

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
)

func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	}
	return false
}

// MaintenancePriority 维修优先级
type MaintenancePriority string

const (
	PriorityLow       MaintenancePriority = "low"
	PriorityMedium    MaintenancePriority = "medium"
	PriorityHigh      MaintenancePriority = "high"
	PriorityEmergency MaintenancePriority = "emergency"
)

func (p MaintenancePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

// MaintenanceStatus 维修工单状态
type MaintenanceStatus string

const (
	MaintenanceSubmitted  MaintenanceStatus = "submitted"
	MaintenanceAssigned   MaintenanceStatus = "assigned"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceClosed     MaintenanceStatus = "closed"
)

// Open 未完结工单
func (s MaintenanceStatus) Open() bool {
	return s == MaintenanceSubmitted || s == MaintenanceAssigned || s == MaintenanceInProgress
}

func (s MaintenanceStatus) Terminal() bool {
	return s == MaintenanceCompleted || s == MaintenanceClosed
}

func (s MaintenanceStatus) Valid() bool {
	return s.Open() || s.Terminal()
}

// SubmittalStatus 送审状态
type SubmittalStatus string

const (
	SubmittalPending     SubmittalStatus = "pending"
	SubmittalUnderReview SubmittalStatus = "under_review"
	SubmittalApproved    SubmittalStatus = "approved"
	SubmittalResubmit    SubmittalStatus = "resubmit"
	SubmittalRejected    SubmittalStatus = "rejected"
)

// SubmittalStatuses 按展示顺序排列
var SubmittalStatuses = []SubmittalStatus{
	SubmittalPending, SubmittalUnderReview, SubmittalApproved, SubmittalResubmit, SubmittalRejected,
}

func (s SubmittalStatus) Terminal() bool {
	return s == SubmittalApproved || s == SubmittalRejected
}

func (s SubmittalStatus) Valid() bool {
	for _, v := range SubmittalStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// RFIStatus RFI状态
type RFIStatus string

const (
	RFIOpen     RFIStatus = "open"
	RFIAnswered RFIStatus = "answered"
	RFIClosed   RFIStatus = "closed"
)

func (s RFIStatus) Terminal() bool {
	return s == RFIAnswered || s == RFIClosed
}

func (s RFIStatus) Valid() bool {
	return s == RFIOpen || s.Terminal()
}

// Frequency 费用周期
type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiAnnual Frequency = "semi_annual"
	FrequencyAnnual     Frequency = "annual"
	FrequencyOneTime    Frequency = "one_time"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencySemiAnnual, FrequencyAnnual, FrequencyOneTime:
		return true
	}
	return false
}
