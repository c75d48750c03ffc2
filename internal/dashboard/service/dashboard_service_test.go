package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	crmsvc "github.com/bitfantasy/nimo-build/internal/crm/service"
	propsvc "github.com/bitfantasy/nimo-build/internal/property/service"
	"github.com/bitfantasy/nimo-build/internal/shared/cache"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSources struct {
	calls   atomic.Int32
	expErr  error
	winRate float64
}

func (f *fakeSources) Summary(ctx context.Context, companyID string, _ crmsvc.BidListFilter) (*metrics.BidPipeline, error) {
	f.calls.Add(1)
	return &metrics.BidPipeline{Total: 4, WinRate: &f.winRate}, nil
}

func (f *fakeSources) KPIs(ctx context.Context, companyID string, _ propsvc.MaintenanceListFilter) (*metrics.MaintenanceKPI, error) {
	f.calls.Add(1)
	return &metrics.MaintenanceKPI{Total: 5, Open: 3, Completed: 2}, nil
}

func (f *fakeSources) CompanySubmittalKPIs(ctx context.Context, companyID string) (*metrics.SubmittalKPI, error) {
	f.calls.Add(1)
	return &metrics.SubmittalKPI{Total: 2, Overdue: 1}, nil
}

func (f *fakeSources) CompanySummary(ctx context.Context, companyID string) (*metrics.ScheduleSummary, error) {
	f.calls.Add(1)
	return &metrics.ScheduleSummary{TotalTasks: 3, Completion: 40}, nil
}

type fakeExpenses struct{ f *fakeSources }

func (e fakeExpenses) Summary(ctx context.Context, companyID string, _ propsvc.ExpenseListFilter) (*metrics.ExpenseSummary, error) {
	e.f.calls.Add(1)
	if e.f.expErr != nil {
		return nil, e.f.expErr
	}
	return &metrics.ExpenseSummary{Count: 1, MonthlyRunRate: 400, AnnualTotal: 4800}, nil
}

func newTestService(f *fakeSources, c *cache.Cache) *DashboardService {
	s := NewDashboardService(Sources{
		Bids: f, Maintenance: f, Submittals: f, Schedule: f, Expenses: fakeExpenses{f},
	}, c, time.Minute, nil)
	s.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestOverviewCombinesSources(t *testing.T) {
	f := &fakeSources{winRate: 50}
	ov, err := newTestService(f, cache.New(nil, "buildpro")).Overview(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, int32(5), f.calls.Load())
	assert.Equal(t, "c1", ov.CompanyID)
	assert.Equal(t, 4, ov.Bids.Total)
	assert.Equal(t, 3, ov.Maintenance.Open)
	assert.Equal(t, 1, ov.Submittals.Overdue)
	assert.Equal(t, 40, ov.Schedule.Completion)
	assert.Equal(t, 4800.0, ov.Expenses.AnnualTotal)
	assert.Equal(t, "$400.00", ov.RunRate)
	assert.False(t, ov.Cached)
}

func TestOverviewPropagatesSourceError(t *testing.T) {
	f := &fakeSources{expErr: errors.New("db down")}
	_, err := newTestService(f, cache.New(nil, "buildpro")).Overview(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expense summary")
}

func TestOverviewDegradesWhenRedisUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	f := &fakeSources{}
	ov, err := newTestService(f, cache.New(rdb, "buildpro")).Overview(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 4, ov.Bids.Total)
}
