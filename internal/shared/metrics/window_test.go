package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var refNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func TestClassifyWindowBoundaries(t *testing.T) {
	cases := []struct {
		name     string
		date     *time.Time
		terminal bool
		want     Window
	}{
		{"nil date", nil, false, WindowNormal},
		{"nil date terminal", nil, true, WindowNormal},
		{"exactly now", at(refNow), false, WindowDueSoon},
		{"one second ago", at(refNow.Add(-time.Second)), false, WindowOverdue},
		{"exactly seven days", at(refNow.Add(7 * 24 * time.Hour)), false, WindowDueSoon},
		{"seven days plus one second", at(refNow.Add(7*24*time.Hour + time.Second)), false, WindowNormal},
		{"far future", at(refNow.AddDate(0, 2, 0)), false, WindowNormal},
		{"past but terminal", at(refNow.AddDate(0, 0, -30)), true, WindowNormal},
		{"due soon but terminal", at(refNow.Add(time.Hour)), true, WindowNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.date, tc.terminal, refNow))
		})
	}
}

func TestTerminalStatusesNeverOverdue(t *testing.T) {
	past := at(refNow.AddDate(-1, 0, 0))

	for _, s := range []BidStatus{BidStatusWon, BidStatusLost, BidStatusNoBid} {
		assert.NotEqual(t, WindowOverdue, BidWindow(BidRecord{DueDate: past, Status: s}, refNow), s)
	}
	for _, s := range []SubmittalStatus{SubmittalApproved, SubmittalRejected} {
		assert.False(t, IsOverdue(past, s.Terminal(), refNow), s)
	}
	for _, s := range []MaintenanceStatus{MaintenanceCompleted, MaintenanceClosed} {
		assert.NotEqual(t, WindowOverdue, MaintenanceWindow(MaintenanceRequestRecord{ScheduledDate: past, Status: s}, refNow), s)
	}
	assert.NotEqual(t, WindowOverdue, TaskWindow(TaskRecord{EndDate: past, Status: TaskStatusCompleted}, refNow))

	assert.Equal(t, WindowOverdue, BidWindow(BidRecord{DueDate: past, Status: BidStatusSubmitted}, refNow))
}

func TestSubmittalOverdueScenario(t *testing.T) {
	yesterday := at(refNow.AddDate(0, 0, -1))

	s := SubmittalRecord{ID: "sub-1", Status: SubmittalUnderReview, DueDate: yesterday}
	assert.Equal(t, WindowOverdue, SubmittalWindow(s, refNow))

	s.Status = SubmittalApproved
	assert.NotEqual(t, WindowOverdue, SubmittalWindow(s, refNow))
}

func TestDaysOpen(t *testing.T) {
	created := refNow.AddDate(0, 0, -10).Add(-3 * time.Hour)

	assert.Equal(t, 10, DaysOpen(created, false, nil, refNow))

	resolved := created.Add(4*24*time.Hour + 23*time.Hour)
	assert.Equal(t, 4, DaysOpen(created, true, &resolved, refNow), "terminal with resolvedAt stops the clock")
	assert.Equal(t, 10, DaysOpen(created, false, &resolved, refNow), "non-terminal ignores resolvedAt")
	assert.Equal(t, 10, DaysOpen(created, true, nil, refNow), "terminal without resolvedAt counts to now")

	future := refNow.AddDate(0, 0, 3)
	assert.Equal(t, 0, DaysOpen(future, false, nil, refNow), "never negative")

	before := created.Add(-time.Hour)
	assert.Equal(t, 0, DaysOpen(created, true, &before, refNow))
}

func TestRecordDaysOpenHelpers(t *testing.T) {
	created := refNow.AddDate(0, 0, -6)
	reviewed := refNow.AddDate(0, 0, -2)

	assert.Equal(t, 4, SubmittalDaysOpen(SubmittalRecord{Status: SubmittalApproved, CreatedAt: created, ReviewedAt: &reviewed}, refNow))
	assert.Equal(t, 6, SubmittalDaysOpen(SubmittalRecord{Status: SubmittalResubmit, CreatedAt: created, ReviewedAt: &reviewed}, refNow))
	assert.Equal(t, 4, RFIDaysOpen(RFIRecord{Status: RFIAnswered, CreatedAt: created, AnsweredAt: &reviewed}, refNow))
	assert.Equal(t, 6, MaintenanceDaysOpen(MaintenanceRequestRecord{Status: MaintenanceAssigned, CreatedAt: created}, refNow))
}

func TestClassifyWithinCustomHorizon(t *testing.T) {
	d := at(refNow.Add(10 * 24 * time.Hour))
	assert.Equal(t, WindowNormal, Classify(d, false, refNow))
	assert.Equal(t, WindowDueSoon, ClassifyWithin(d, false, refNow, 14*24*time.Hour))
}
