package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bitfantasy/nimo-build/internal/property/entity"
	"github.com/bitfantasy/nimo-build/internal/property/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/observability"
	"github.com/bitfantasy/nimo-build/internal/shared/report"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseService 物业费用服务
type ExpenseService struct {
	properties *repository.PropertyRepository
	repo       *repository.ExpenseRepository
	deps       Deps
}

func NewExpenseService(properties *repository.PropertyRepository, repo *repository.ExpenseRepository, deps Deps) *ExpenseService {
	return &ExpenseService{properties: properties, repo: repo, deps: deps}
}

// ExpenseView 带月度等额的费用
type ExpenseView struct {
	entity.PropertyExpense
	MonthlyEquivalent float64 `json:"monthly_equivalent"`
	MonthlyDisplay    string  `json:"monthly_display"`
}

// ExpenseListFilter 费用过滤
type ExpenseListFilter struct {
	PropertyID  string
	ExpenseType string
	Frequency   string
}

func (f ExpenseListFilter) dbFilters() map[string]string {
	return map[string]string{
		"property_id":  f.PropertyID,
		"expense_type": f.ExpenseType,
		"frequency":    f.Frequency,
	}
}

func (f ExpenseListFilter) engine() metrics.ExpenseFilter {
	return metrics.ExpenseFilter{PropertyID: f.PropertyID, ExpenseType: f.ExpenseType}
}

type CreateExpenseRequest struct {
	PropertyID    string   `json:"property_id" binding:"required"`
	ExpenseType   string   `json:"expense_type" binding:"required"`
	Description   string   `json:"description"`
	Amount        *float64 `json:"amount" binding:"required,gt=0"`
	Frequency     string   `json:"frequency"`
	EffectiveDate string   `json:"effective_date"`
	EndDate       string   `json:"end_date"`
	VendorName    string   `json:"vendor_name"`
}

type UpdateExpenseRequest struct {
	ExpenseType   *string  `json:"expense_type"`
	Description   *string  `json:"description"`
	Amount        *float64 `json:"amount" binding:"omitempty,gt=0"`
	Frequency     *string  `json:"frequency"`
	EffectiveDate *string  `json:"effective_date"`
	EndDate       *string  `json:"end_date"`
	VendorName    *string  `json:"vendor_name"`
}

func annotateExpense(e entity.PropertyExpense) ExpenseView {
	monthly := metrics.ToMonthlyEquivalent(e.Amount.InexactFloat64(), metrics.Frequency(e.Frequency))
	return ExpenseView{
		PropertyExpense:   e,
		MonthlyEquivalent: metrics.RoundCents(monthly),
		MonthlyDisplay:    metrics.FormatCurrency(monthly),
	}
}

// List 费用列表，附月度等额
func (s *ExpenseService) List(ctx context.Context, companyID string, f ExpenseListFilter, page, pageSize int) ([]ExpenseView, int64, error) {
	items, err := s.repo.ListAll(ctx, companyID, f.dbFilters())
	if err != nil {
		return nil, 0, err
	}
	pageItems := paginate(items, page, pageSize)
	views := make([]ExpenseView, 0, len(pageItems))
	for _, e := range pageItems {
		views = append(views, annotateExpense(e))
	}
	return views, int64(len(items)), nil
}

// Summary 费用汇总，基于过滤后的集合
func (s *ExpenseService) Summary(ctx context.Context, companyID string, f ExpenseListFilter) (*metrics.ExpenseSummary, error) {
	items, err := s.repo.ListAll(ctx, companyID, f.dbFilters())
	if err != nil {
		return nil, err
	}
	observability.ObserveComputation("expense_summary")
	summary := roundSummary(metrics.SummarizeExpenses(expenseRecords(items), f.engine()))
	return &summary, nil
}

// roundSummary 金额保留两位小数
func roundSummary(s metrics.ExpenseSummary) metrics.ExpenseSummary {
	s.MonthlyRunRate = metrics.RoundCents(s.MonthlyRunRate)
	s.AnnualTotal = metrics.RoundCents(s.AnnualTotal)
	s.OneTimeTotal = metrics.RoundCents(s.OneTimeTotal)
	for i := range s.ByType {
		s.ByType[i].Monthly = metrics.RoundCents(s.ByType[i].Monthly)
		s.ByType[i].Annual = metrics.RoundCents(s.ByType[i].Annual)
		s.ByType[i].OneTime = metrics.RoundCents(s.ByType[i].OneTime)
	}
	return s
}

func expenseRecords(items []entity.PropertyExpense) []metrics.PropertyExpenseRecord {
	out := make([]metrics.PropertyExpenseRecord, len(items))
	for i := range items {
		out[i] = items[i].Record()
	}
	return out
}

func (s *ExpenseService) Get(ctx context.Context, companyID, id string) (*ExpenseView, error) {
	e, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	v := annotateExpense(*e)
	return &v, nil
}

// Create 创建费用
func (s *ExpenseService) Create(ctx context.Context, companyID, userID string, req *CreateExpenseRequest) (*ExpenseView, error) {
	if _, err := s.properties.FindByID(ctx, companyID, req.PropertyID); err != nil {
		return nil, err
	}
	e := &entity.PropertyExpense{
		ID:          uuid.New().String()[:32],
		CompanyID:   companyID,
		PropertyID:  req.PropertyID,
		ExpenseType: req.ExpenseType,
		Description: req.Description,
		Amount:      decimal.NewFromFloat(*req.Amount).Round(2),
		Frequency:   req.Frequency,
		VendorName:  req.VendorName,
		CreatedBy:   userID,
	}
	if e.Frequency == "" {
		e.Frequency = string(metrics.FrequencyMonthly)
	}
	var err error
	if e.EffectiveDate, err = parseDate(req.EffectiveDate); err != nil {
		return nil, err
	}
	if e.EndDate, err = parseDate(req.EndDate); err != nil {
		return nil, err
	}
	if err := validateExpense(e); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventExpenseUpdate, e.ID, "create")
	v := annotateExpense(*e)
	return &v, nil
}

func (s *ExpenseService) Update(ctx context.Context, companyID, id string, req *UpdateExpenseRequest) (*ExpenseView, error) {
	e, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.ExpenseType != nil {
		e.ExpenseType = *req.ExpenseType
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Amount != nil {
		e.Amount = decimal.NewFromFloat(*req.Amount).Round(2)
	}
	if req.Frequency != nil {
		e.Frequency = *req.Frequency
	}
	if req.EffectiveDate != nil {
		if e.EffectiveDate, err = parseDate(*req.EffectiveDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if e.EndDate, err = parseDate(*req.EndDate); err != nil {
			return nil, err
		}
	}
	if req.VendorName != nil {
		e.VendorName = *req.VendorName
	}
	if err := validateExpense(e); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventExpenseUpdate, e.ID, "update")
	v := annotateExpense(*e)
	return &v, nil
}

func (s *ExpenseService) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventExpenseUpdate, id, "delete")
	return nil
}

func validateExpense(e *entity.PropertyExpense) error {
	if !entity.ValidExpenseType(e.ExpenseType) {
		return invalid("unknown expense_type %q", e.ExpenseType)
	}
	if !metrics.Frequency(e.Frequency).Valid() {
		return invalid("unknown frequency %q", e.Frequency)
	}
	if !e.Amount.IsPositive() {
		return invalid("amount must be > 0")
	}
	if e.EffectiveDate != nil && e.EndDate != nil && e.EndDate.Before(*e.EffectiveDate) {
		return invalid("end_date is before effective_date")
	}
	return nil
}

// === 导入导出 ===

type expenseImportRow struct {
	ExpenseType string `validate:"required,oneof=property_tax insurance management_fee utilities cam marketing legal repairs capex other"`
	Frequency   string `validate:"oneof=monthly quarterly semi_annual annual one_time"`
}

// Import 导入费用。property_name按名称关联物业，为空时使用defaultPropertyID
func (s *ExpenseService) Import(ctx context.Context, companyID, userID, defaultPropertyID, fileName string, r io.Reader) (*importer.Result, error) {
	table, raw, err := s.deps.readUpload(fileName, r, "expense_type", "amount")
	if err != nil {
		return nil, err
	}
	names, err := propertyIndex(ctx, s.properties, companyID, defaultPropertyID)
	if err != nil {
		return nil, err
	}

	res := &importer.Result{Total: len(table.Rows)}
	var items []entity.PropertyExpense
	for _, row := range table.Rows {
		propertyID, err := resolveProperty(names, row.Get("property_name"), defaultPropertyID)
		if err != nil {
			res.Fail(row.Line, err)
			continue
		}
		e, err := expenseFromRow(row)
		if err != nil {
			res.Fail(row.Line, err)
			continue
		}
		e.ID = uuid.New().String()[:32]
		e.CompanyID = companyID
		e.PropertyID = propertyID
		e.CreatedBy = userID
		items = append(items, *e)
		res.OK()
	}
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return nil, fmt.Errorf("create expenses: %w", err)
	}

	s.deps.finishImport(ctx, companyID, userID, "expense", fileName, raw, res)
	return res, nil
}

func expenseFromRow(row importer.Row) (*entity.PropertyExpense, error) {
	expenseType := strings.ToLower(strings.ReplaceAll(row.Get("expense_type"), " ", "_"))
	frequency := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(row.Get("frequency"), "-", "_"), " ", "_"))
	if frequency == "" {
		frequency = string(metrics.FrequencyMonthly)
	}
	if err := importer.Validate(expenseImportRow{ExpenseType: expenseType, Frequency: frequency}); err != nil {
		return nil, err
	}
	amount, err := importer.ParseMoney(row.Get("amount"))
	if err != nil {
		return nil, err
	}
	if !amount.Valid {
		return nil, fmt.Errorf("amount is required")
	}
	effective, err := importer.ParseDate(row.Get("effective_date"))
	if err != nil {
		return nil, err
	}
	end, err := importer.ParseDate(row.Get("end_date"))
	if err != nil {
		return nil, err
	}
	e := &entity.PropertyExpense{
		ExpenseType:   expenseType,
		Description:   row.Get("description"),
		Amount:        amount.Decimal,
		Frequency:     frequency,
		EffectiveDate: effective,
		EndDate:       end,
		VendorName:    row.Get("vendor_name"),
	}
	if err := validateExpense(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Export 导出费用明细与汇总
func (s *ExpenseService) Export(ctx context.Context, companyID string, f ExpenseListFilter) ([]byte, string, error) {
	items, err := s.repo.ListAll(ctx, companyID, f.dbFilters())
	if err != nil {
		return nil, "", err
	}
	props, err := s.properties.FindAll(ctx, companyID, "")
	if err != nil {
		return nil, "", err
	}
	propName := make(map[string]string, len(props))
	for _, p := range props {
		propName[p.ID] = p.Name
	}

	detail := report.Sheet{
		Name: "Expenses",
		Columns: []report.Column{
			{Header: "Property", Width: 28}, {Header: "Type", Width: 16}, {Header: "Description", Width: 40},
			{Header: "Vendor", Width: 24}, {Header: "Frequency", Width: 12}, {Header: "Amount", Width: 16},
			{Header: "Monthly Equivalent", Width: 18}, {Header: "Effective", Width: 12}, {Header: "End", Width: 12},
		},
	}
	for _, e := range items {
		v := annotateExpense(e)
		detail.AddRow(propName[e.PropertyID], e.ExpenseType, e.Description, e.VendorName, e.Frequency,
			e.Amount.InexactFloat64(), v.MonthlyEquivalent, report.Date(e.EffectiveDate), report.Date(e.EndDate))
	}

	summary := roundSummary(metrics.SummarizeExpenses(expenseRecords(items), f.engine()))
	detail.Summary = []interface{}{"Total", fmt.Sprintf("%d expenses", summary.Count), "", "", "", "", summary.MonthlyRunRate}

	totals := report.Sheet{
		Name: "Summary",
		Columns: []report.Column{
			{Header: "Expense Type", Width: 18}, {Header: "Count", Width: 8}, {Header: "Monthly", Width: 16},
			{Header: "Annual", Width: 16}, {Header: "One-Time", Width: 16},
		},
	}
	for _, t := range summary.ByType {
		totals.AddRow(t.ExpenseType, t.Count, t.Monthly, t.Annual, t.OneTime)
	}
	totals.Summary = []interface{}{"Total", summary.Count, summary.MonthlyRunRate, summary.AnnualTotal, summary.OneTimeTotal}

	data, err := report.Bytes(detail, totals)
	if err != nil {
		return nil, "", fmt.Errorf("build report: %w", err)
	}
	fileName := fmt.Sprintf("expenses_%s.xlsx", s.deps.now().Format("20060102"))
	key := s.deps.archive(ctx, companyID, "reports", fileName, data, nil)
	return data, key, nil
}
