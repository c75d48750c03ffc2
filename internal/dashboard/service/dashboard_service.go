package service

import (
	"context"
	"fmt"
	"time"

	crmsvc "github.com/bitfantasy/nimo-build/internal/crm/service"
	pmsvc "github.com/bitfantasy/nimo-build/internal/pm/service"
	propsvc "github.com/bitfantasy/nimo-build/internal/property/service"
	"github.com/bitfantasy/nimo-build/internal/shared/cache"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 各数据源只需要汇总接口，便于测试替换
type (
	BidSummarizer interface {
		Summary(ctx context.Context, companyID string, f crmsvc.BidListFilter) (*metrics.BidPipeline, error)
	}
	MaintenanceSummarizer interface {
		KPIs(ctx context.Context, companyID string, f propsvc.MaintenanceListFilter) (*metrics.MaintenanceKPI, error)
	}
	SubmittalSummarizer interface {
		CompanySubmittalKPIs(ctx context.Context, companyID string) (*metrics.SubmittalKPI, error)
	}
	ExpenseSummarizer interface {
		Summary(ctx context.Context, companyID string, f propsvc.ExpenseListFilter) (*metrics.ExpenseSummary, error)
	}
	ScheduleSummarizer interface {
		CompanySummary(ctx context.Context, companyID string) (*metrics.ScheduleSummary, error)
	}
)

// Sources 看板数据来源
type Sources struct {
	Bids        BidSummarizer
	Maintenance MaintenanceSummarizer
	Submittals  SubmittalSummarizer
	Expenses    ExpenseSummarizer
	Schedule    ScheduleSummarizer
}

// Overview 公司看板
type Overview struct {
	CompanyID   string                  `json:"company_id"`
	Bids        metrics.BidPipeline     `json:"bids"`
	Maintenance metrics.MaintenanceKPI  `json:"maintenance"`
	Submittals  metrics.SubmittalKPI    `json:"submittals"`
	Expenses    metrics.ExpenseSummary  `json:"expenses"`
	Schedule    metrics.ScheduleSummary `json:"schedule"`
	RunRate     string                  `json:"monthly_run_rate_display"`
	GeneratedAt time.Time               `json:"generated_at"`
	Cached      bool                    `json:"cached"`
}

// DashboardService 汇总各模块KPI，结果按公司缓存
type DashboardService struct {
	src    Sources
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewDashboardService(src Sources, c *cache.Cache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{src: src, cache: c, ttl: ttl, logger: logger, now: time.Now}
}

// NewSources 用各领域服务组装数据来源
func NewSources(crm *crmsvc.Services, pm *pmsvc.Services, prop *propsvc.Services) Sources {
	return Sources{
		Bids:        crm.Bid,
		Maintenance: prop.Maintenance,
		Submittals:  pm.Document,
		Expenses:    prop.Expense,
		Schedule:    pm.Schedule,
	}
}

// Overview 先读缓存，未命中时并发加载。缓存读写失败只降级不报错
func (s *DashboardService) Overview(ctx context.Context, companyID string) (*Overview, error) {
	key := s.cache.CompanyKey(companyID, "dashboard")

	var cached Overview
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("Failed to read dashboard cache", zap.String("company_id", companyID), zap.Error(err))
	}
	if hit {
		cached.Cached = true
		return &cached, nil
	}

	ov, err := s.load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, ov, s.ttl); err != nil {
		s.logger.Warn("Failed to write dashboard cache", zap.String("company_id", companyID), zap.Error(err))
	}
	return ov, nil
}

func (s *DashboardService) load(ctx context.Context, companyID string) (*Overview, error) {
	ov := &Overview{CompanyID: companyID, GeneratedAt: s.now()}

	// 每个goroutine只写自己的字段
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.src.Bids.Summary(gctx, companyID, crmsvc.BidListFilter{})
		if err != nil {
			return fmt.Errorf("bid pipeline: %w", err)
		}
		ov.Bids = *p
		return nil
	})
	g.Go(func() error {
		k, err := s.src.Maintenance.KPIs(gctx, companyID, propsvc.MaintenanceListFilter{})
		if err != nil {
			return fmt.Errorf("maintenance kpis: %w", err)
		}
		ov.Maintenance = *k
		return nil
	})
	g.Go(func() error {
		k, err := s.src.Submittals.CompanySubmittalKPIs(gctx, companyID)
		if err != nil {
			return fmt.Errorf("submittal kpis: %w", err)
		}
		ov.Submittals = *k
		return nil
	})
	g.Go(func() error {
		sum, err := s.src.Expenses.Summary(gctx, companyID, propsvc.ExpenseListFilter{})
		if err != nil {
			return fmt.Errorf("expense summary: %w", err)
		}
		ov.Expenses = *sum
		return nil
	})
	g.Go(func() error {
		sum, err := s.src.Schedule.CompanySummary(gctx, companyID)
		if err != nil {
			return fmt.Errorf("schedule summary: %w", err)
		}
		ov.Schedule = *sum
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ov.RunRate = metrics.FormatCurrency(ov.Expenses.MonthlyRunRate)
	return ov, nil
}
