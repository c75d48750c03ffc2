package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bitfantasy/nimo-build/internal/crm/entity"
	"github.com/bitfantasy/nimo-build/internal/crm/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/observability"
	"github.com/bitfantasy/nimo-build/internal/shared/report"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/bitfantasy/nimo-build/internal/shared/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BidService 投标服务
type BidService struct {
	repo *repository.BidRepository
	deps Deps
}

func NewBidService(repo *repository.BidRepository, deps Deps) *BidService {
	return &BidService{repo: repo, deps: deps}
}

// BidView 带派生指标的投标
type BidView struct {
	entity.Bid
	MarginPct        *float64           `json:"margin_pct"`
	MarginTier       metrics.MarginTier `json:"margin_tier,omitempty"`
	MarginDisplay    string             `json:"margin_display"`
	Window           metrics.Window     `json:"window"`
	BidAmountDisplay string             `json:"bid_amount_display"`
}

// BidListFilter 列表过滤。Status/Search/BidType 走数据库，Window/MarginTier 在内存中按派生值过滤
type BidListFilter struct {
	Status     string
	Search     string
	BidType    string
	Window     metrics.Window
	MarginTier metrics.MarginTier
}

func (f BidListFilter) dbFilters() map[string]string {
	return map[string]string{
		"status":   f.Status,
		"search":   f.Search,
		"bid_type": f.BidType,
	}
}

// CreateBidRequest 创建投标请求
type CreateBidRequest struct {
	Code          string   `json:"code"`
	ProjectName   string   `json:"project_name" binding:"required"`
	ClientName    string   `json:"client_name"`
	BidType       string   `json:"bid_type"`
	BidAmount     *float64 `json:"bid_amount" binding:"omitempty,gte=0"`
	EstimatedCost *float64 `json:"estimated_cost" binding:"omitempty,gte=0"`
	DueDate       string   `json:"due_date"`
	Status        string   `json:"status"`
	Notes         string   `json:"notes"`
}

// UpdateBidRequest 更新投标请求，nil字段不修改；ClearDueDate显式清空截止日期
type UpdateBidRequest struct {
	ProjectName   *string  `json:"project_name"`
	ClientName    *string  `json:"client_name"`
	BidType       *string  `json:"bid_type"`
	BidAmount     *float64 `json:"bid_amount" binding:"omitempty,gte=0"`
	EstimatedCost *float64 `json:"estimated_cost" binding:"omitempty,gte=0"`
	DueDate       *string  `json:"due_date"`
	Status        *string  `json:"status"`
	Notes         *string  `json:"notes"`
}

// annotate 计算利润率、区间和展示字段
func (s *BidService) annotate(b entity.Bid) BidView {
	rec := b.Record()
	pct, ok := metrics.BidMargin(rec)
	v := BidView{
		Bid:              b,
		MarginTier:       metrics.MarginTierOf(pct, ok),
		MarginDisplay:    metrics.FormatMargin(pct, ok),
		Window:           metrics.BidWindow(rec, s.deps.now()),
		BidAmountDisplay: metrics.NotComputable,
	}
	if ok {
		v.MarginPct = &pct
	}
	if rec.BidAmount != nil {
		v.BidAmountDisplay = metrics.FormatCurrency(*rec.BidAmount)
	}
	observability.ObserveComputation("bid_margin")
	return v
}

// filtered 查询并按派生字段过滤
func (s *BidService) filtered(ctx context.Context, companyID string, f BidListFilter) ([]entity.Bid, error) {
	bids, err := s.repo.ListAll(ctx, companyID, f.dbFilters())
	if err != nil {
		return nil, err
	}
	if f.Window == "" && f.MarginTier == "" {
		return bids, nil
	}
	keep := metrics.BidFilter{Window: f.Window, MarginTier: f.MarginTier}.Predicate(s.deps.now())
	return metrics.Filter(bids, func(b entity.Bid) bool { return keep(b.Record()) }), nil
}

// List 投标列表（分页）
func (s *BidService) List(ctx context.Context, companyID string, f BidListFilter, page, pageSize int) ([]BidView, int64, error) {
	bids, err := s.filtered(ctx, companyID, f)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(bids))
	start := (page - 1) * pageSize
	if start > len(bids) {
		start = len(bids)
	}
	end := start + pageSize
	if end > len(bids) {
		end = len(bids)
	}
	views := make([]BidView, 0, end-start)
	for _, b := range bids[start:end] {
		views = append(views, s.annotate(b))
	}
	return views, total, nil
}

// Summary 投标管道汇总，基于过滤后的集合
func (s *BidService) Summary(ctx context.Context, companyID string, f BidListFilter) (*metrics.BidPipeline, error) {
	bids, err := s.filtered(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	observability.ObserveComputation("bid_pipeline")
	p := metrics.SummarizeBids(records(bids), s.deps.now())
	return &p, nil
}

// Get 获取投标详情
func (s *BidService) Get(ctx context.Context, companyID, id string) (*BidView, error) {
	bid, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	v := s.annotate(*bid)
	return &v, nil
}

// Create 创建投标
func (s *BidService) Create(ctx context.Context, companyID, userID string, req *CreateBidRequest) (*BidView, error) {
	due, err := importer.ParseDate(req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	status := req.Status
	if status == "" {
		status = string(metrics.BidStatusInProgress)
	}
	if !metrics.BidStatus(status).Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		if code, err = s.repo.GenerateCode(ctx, companyID, s.deps.now()); err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
	}

	bid := &entity.Bid{
		ID:            uuid.New().String()[:32],
		CompanyID:     companyID,
		Code:          code,
		ProjectName:   req.ProjectName,
		ClientName:    req.ClientName,
		BidType:       req.BidType,
		BidAmount:     metrics.ToNullDecimal(req.BidAmount),
		EstimatedCost: metrics.ToNullDecimal(req.EstimatedCost),
		DueDate:       due,
		Notes:         req.Notes,
		CreatedBy:     userID,
	}
	bid.ApplyStatus(status, s.deps.now())

	if err := s.repo.Create(ctx, bid); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: code %q already exists", ErrInvalidInput, code)
		}
		return nil, fmt.Errorf("create bid: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventBidUpdate, bid.ID, "create")

	v := s.annotate(*bid)
	return &v, nil
}

// Update 更新投标
func (s *BidService) Update(ctx context.Context, companyID, id string, req *UpdateBidRequest) (*BidView, error) {
	bid, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if req.ProjectName != nil {
		bid.ProjectName = *req.ProjectName
	}
	if req.ClientName != nil {
		bid.ClientName = *req.ClientName
	}
	if req.BidType != nil {
		bid.BidType = *req.BidType
	}
	if req.BidAmount != nil {
		bid.BidAmount = metrics.ToNullDecimal(req.BidAmount)
	}
	if req.EstimatedCost != nil {
		bid.EstimatedCost = metrics.ToNullDecimal(req.EstimatedCost)
	}
	if req.DueDate != nil {
		due, err := importer.ParseDate(*req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		bid.DueDate = due
	}
	if req.Notes != nil {
		bid.Notes = *req.Notes
	}
	if req.Status != nil {
		if !metrics.BidStatus(*req.Status).Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		bid.ApplyStatus(*req.Status, s.deps.now())
	}

	if err := s.repo.Update(ctx, bid); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: code %q already exists", ErrInvalidInput, bid.Code)
		}
		return nil, fmt.Errorf("update bid: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventBidUpdate, bid.ID, "update")

	v := s.annotate(*bid)
	return &v, nil
}

// Delete 删除投标
func (s *BidService) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventBidUpdate, id, "delete")
	return nil
}

// === 导入导出 ===

type bidImportRow struct {
	ProjectName string `validate:"required,max=200"`
	Status      string `validate:"omitempty,oneof=in_progress submitted won lost no_bid"`
}

// Import 导入CSV/XLSX，按编码覆盖已有投标
func (s *BidService) Import(ctx context.Context, companyID, userID, fileName string, r io.Reader) (*importer.Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	table, err := importer.Read(bytes.NewReader(raw), fileName, s.deps.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := table.RequireColumns("project_name"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	res := &importer.Result{Total: len(table.Rows)}
	now := s.deps.now()
	var bids []entity.Bid
	var needCode []int
	// 同一文件内编码重复时保留首行，后续行记为失败
	seen := make(map[string]int)
	for _, row := range table.Rows {
		bid, err := bidFromRow(row)
		if err != nil {
			res.Fail(row.Line, err)
			continue
		}
		if bid.Code != "" {
			if first, dup := seen[bid.Code]; dup {
				res.Fail(row.Line, fmt.Errorf("duplicate code %q (first at line %d)", bid.Code, first))
				continue
			}
			seen[bid.Code] = row.Line
		}
		bid.ID = uuid.New().String()[:32]
		bid.CompanyID = companyID
		bid.CreatedBy = userID
		status := bid.Status
		bid.Status = ""
		bid.ApplyStatus(status, now)
		if bid.Code == "" {
			needCode = append(needCode, len(bids))
		}
		bids = append(bids, *bid)
		res.OK()
	}

	if len(needCode) > 0 {
		codes, err := s.repo.GenerateCodes(ctx, companyID, len(needCode), now)
		if err != nil {
			return nil, fmt.Errorf("generate codes: %w", err)
		}
		for i, idx := range needCode {
			bids[idx].Code = codes[i]
		}
	}
	if err := s.repo.Upsert(ctx, bids); err != nil {
		return nil, fmt.Errorf("upsert bids: %w", err)
	}

	s.archive(ctx, companyID, "imports", fileName, raw, res)
	if s.deps.Batches != nil {
		if _, err := s.deps.Batches.Record(ctx, companyID, userID, "bid", fileName, res); err != nil {
			s.deps.logger().Warn("Failed to record import batch", zap.Error(err))
		}
	}
	observability.ObserveImport("bid", res.Imported, res.Failed)
	s.deps.Notifier.Changed(ctx, companyID, sse.EventImportFinished, res.BatchID, "bid")
	return res, nil
}

func bidFromRow(row importer.Row) (*entity.Bid, error) {
	status := strings.ToLower(strings.ReplaceAll(row.Get("status"), " ", "_"))
	if status == "" {
		status = string(metrics.BidStatusInProgress)
	}
	if err := importer.Validate(bidImportRow{ProjectName: row.Get("project_name"), Status: status}); err != nil {
		return nil, err
	}
	amount, err := importer.ParseMoney(row.Get("bid_amount"))
	if err != nil {
		return nil, err
	}
	cost, err := importer.ParseMoney(row.Get("estimated_cost"))
	if err != nil {
		return nil, err
	}
	due, err := importer.ParseDate(row.Get("due_date"))
	if err != nil {
		return nil, err
	}
	return &entity.Bid{
		Code:          row.Get("code"),
		ProjectName:   row.Get("project_name"),
		ClientName:    row.Get("client_name"),
		BidType:       row.Get("bid_type"),
		BidAmount:     amount,
		EstimatedCost: cost,
		DueDate:       due,
		Status:        status,
		Notes:         row.Get("notes"),
	}, nil
}

// Export 导出过滤后的投标列表和管道汇总
func (s *BidService) Export(ctx context.Context, companyID string, f BidListFilter) ([]byte, string, error) {
	bids, err := s.filtered(ctx, companyID, f)
	if err != nil {
		return nil, "", err
	}

	sheet := report.Sheet{
		Name: "Bids",
		Columns: []report.Column{
			{Header: "Code", Width: 16}, {Header: "Project", Width: 30}, {Header: "Client", Width: 24},
			{Header: "Type", Width: 12}, {Header: "Status", Width: 12}, {Header: "Bid Amount", Width: 16},
			{Header: "Estimated Cost", Width: 16}, {Header: "Margin", Width: 10}, {Header: "Margin Tier", Width: 12},
			{Header: "Due Date", Width: 12}, {Header: "Window", Width: 10},
		},
	}
	for _, b := range bids {
		v := s.annotate(b)
		sheet.AddRow(b.Code, b.ProjectName, b.ClientName, b.BidType, b.Status,
			report.Money(b.BidAmount), report.Money(b.EstimatedCost), v.MarginDisplay, string(v.MarginTier),
			report.Date(b.DueDate), string(v.Window))
	}

	p := metrics.SummarizeBids(records(bids), s.deps.now())
	sheet.Summary = []interface{}{"Total", fmt.Sprintf("%d bids", p.Total), "", "", "", metrics.RoundCents(p.TotalValue)}

	pipeline := report.Sheet{
		Name:    "Pipeline",
		Columns: []report.Column{{Header: "Metric", Width: 20}, {Header: "Value", Width: 18}},
	}
	pipeline.AddRow("Total Bids", p.Total)
	for _, st := range []metrics.BidStatus{metrics.BidStatusInProgress, metrics.BidStatusSubmitted, metrics.BidStatusWon, metrics.BidStatusLost, metrics.BidStatusNoBid} {
		pipeline.AddRow("Status: "+string(st), p.ByStatus[st])
	}
	pipeline.AddRow("Total Value", metrics.FormatCurrency(p.TotalValue))
	pipeline.AddRow("Won Value", metrics.FormatCurrency(p.WonValue))
	pipeline.AddRow("Win Rate", report.Percent(p.WinRate))
	pipeline.AddRow("Average Margin", report.Percent(p.AverageMargin))
	pipeline.AddRow("Due Soon", p.DueSoon)
	pipeline.AddRow("Overdue", p.Overdue)

	data, err := report.Bytes(sheet, pipeline)
	if err != nil {
		return nil, "", fmt.Errorf("build report: %w", err)
	}

	fileName := fmt.Sprintf("bids_%s.xlsx", s.deps.now().Format("20060102"))
	key := s.archive(ctx, companyID, "reports", fileName, data, nil)
	return data, key, nil
}

// archive 归档到对象存储，失败只记日志
func (s *BidService) archive(ctx context.Context, companyID, kind, fileName string, data []byte, res *importer.Result) string {
	if !s.deps.Store.Enabled() {
		return ""
	}
	key, err := s.deps.Store.PutBytes(ctx, storage.ObjectName(kind, companyID, fileName, s.deps.now()), data, report.ContentTypeFor(fileName))
	if err != nil {
		s.deps.logger().Warn("Failed to archive file", zap.String("file", fileName), zap.Error(err))
		return ""
	}
	if res != nil {
		res.ObjectKey = key
	}
	return key
}

func records(bids []entity.Bid) []metrics.BidRecord {
	out := make([]metrics.BidRecord, len(bids))
	for i := range bids {
		out[i] = bids[i].Record()
	}
	return out
}
