package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"github.com/bitfantasy/nimo-build/internal/pm/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/metrics"
	"github.com/bitfantasy/nimo-build/internal/shared/observability"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/google/uuid"
)

// DocumentService 送审与RFI服务
type DocumentService struct {
	projects *repository.ProjectRepository
	repo     *repository.DocumentRepository
	deps     Deps
}

func NewDocumentService(projects *repository.ProjectRepository, repo *repository.DocumentRepository, deps Deps) *DocumentService {
	return &DocumentService{projects: projects, repo: repo, deps: deps}
}

// SubmittalView 带区间和已开天数的送审
type SubmittalView struct {
	entity.Submittal
	Window   metrics.Window `json:"window"`
	DaysOpen int            `json:"days_open"`
}

// SubmittalLog 送审台账
type SubmittalLog struct {
	Items []SubmittalView      `json:"items"`
	KPIs  metrics.SubmittalKPI `json:"kpis"`
}

// RFIView 带区间和已开天数的RFI
type RFIView struct {
	entity.RFI
	Window   metrics.Window `json:"window"`
	DaysOpen int            `json:"days_open"`
}

// RFISummary RFI统计
type RFISummary struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Answered int `json:"answered"`
	Closed   int `json:"closed"`
	Overdue  int `json:"overdue"`
}

// RFILog RFI台账
type RFILog struct {
	Items   []RFIView  `json:"items"`
	Summary RFISummary `json:"summary"`
}

type CreateSubmittalRequest struct {
	Number      string `json:"number"`
	Title       string `json:"title" binding:"required"`
	SpecSection string `json:"spec_section"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
	SubmittedBy string `json:"submitted_by"`
	Notes       string `json:"notes"`
}

type UpdateSubmittalRequest struct {
	Title       *string `json:"title"`
	SpecSection *string `json:"spec_section"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
	SubmittedBy *string `json:"submitted_by"`
	Notes       *string `json:"notes"`
}

type CreateRFIRequest struct {
	Number   string `json:"number"`
	Subject  string `json:"subject" binding:"required"`
	Question string `json:"question"`
	DueDate  string `json:"due_date"`
}

type UpdateRFIRequest struct {
	Subject  *string `json:"subject"`
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
	Status   *string `json:"status"`
	DueDate  *string `json:"due_date"`
}

// === 送审 ===

func (s *DocumentService) submittalView(sub entity.Submittal) SubmittalView {
	now := s.deps.now()
	rec := sub.Record()
	return SubmittalView{
		Submittal: sub,
		Window:    metrics.SubmittalWindow(rec, now),
		DaysOpen:  metrics.SubmittalDaysOpen(rec, now),
	}
}

// SubmittalLog 送审台账，KPI基于过滤后的集合
func (s *DocumentService) SubmittalLog(ctx context.Context, companyID, projectID string, f metrics.SubmittalFilter) (*SubmittalLog, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	subs, err := s.repo.ListSubmittals(ctx, companyID, projectID)
	if err != nil {
		return nil, err
	}
	now := s.deps.now()
	keep := f.Predicate(now)
	subs = metrics.Filter(subs, func(sub entity.Submittal) bool { return keep(sub.Record()) })

	log := &SubmittalLog{Items: make([]SubmittalView, 0, len(subs))}
	for _, sub := range subs {
		log.Items = append(log.Items, s.submittalView(sub))
	}
	log.KPIs = metrics.SubmittalKPIs(submittalRecords(subs), now)
	observability.ObserveComputation("submittal_kpis")
	return log, nil
}

// CompanySubmittalKPIs 公司全部送审KPI
func (s *DocumentService) CompanySubmittalKPIs(ctx context.Context, companyID string) (*metrics.SubmittalKPI, error) {
	subs, err := s.repo.ListCompanySubmittals(ctx, companyID)
	if err != nil {
		return nil, err
	}
	k := metrics.SubmittalKPIs(submittalRecords(subs), s.deps.now())
	return &k, nil
}

func submittalRecords(subs []entity.Submittal) []metrics.SubmittalRecord {
	out := make([]metrics.SubmittalRecord, len(subs))
	for i := range subs {
		out[i] = subs[i].Record()
	}
	return out
}

func (s *DocumentService) GetSubmittal(ctx context.Context, companyID, id string) (*SubmittalView, error) {
	sub, err := s.repo.FindSubmittal(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	v := s.submittalView(*sub)
	return &v, nil
}

// CreateSubmittal 创建送审，编号为空时自动生成 SUB-001
func (s *DocumentService) CreateSubmittal(ctx context.Context, companyID, projectID string, req *CreateSubmittalRequest) (*SubmittalView, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = string(metrics.SubmittalPending)
	}
	if !metrics.SubmittalStatus(status).Valid() {
		return nil, invalid("unknown status %q", status)
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	number := req.Number
	if number == "" {
		if number, err = s.repo.NextSubmittalNumber(ctx, projectID); err != nil {
			return nil, fmt.Errorf("generate number: %w", err)
		}
	}

	sub := &entity.Submittal{
		ID:          uuid.New().String()[:32],
		CompanyID:   companyID,
		ProjectID:   projectID,
		Number:      number,
		Title:       req.Title,
		SpecSection: req.SpecSection,
		DueDate:     due,
		SubmittedBy: req.SubmittedBy,
		Notes:       req.Notes,
	}
	sub.ApplyStatus(status, s.deps.now())
	if err := s.repo.CreateSubmittal(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submittal: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventSubmittalUpdate, sub.ID, "create")
	v := s.submittalView(*sub)
	return &v, nil
}

func (s *DocumentService) UpdateSubmittal(ctx context.Context, companyID, id string, req *UpdateSubmittalRequest) (*SubmittalView, error) {
	sub, err := s.repo.FindSubmittal(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		sub.Title = *req.Title
	}
	if req.SpecSection != nil {
		sub.SpecSection = *req.SpecSection
	}
	if req.DueDate != nil {
		if sub.DueDate, err = parseDate(*req.DueDate); err != nil {
			return nil, err
		}
	}
	if req.SubmittedBy != nil {
		sub.SubmittedBy = *req.SubmittedBy
	}
	if req.Notes != nil {
		sub.Notes = *req.Notes
	}
	if req.Status != nil {
		if !metrics.SubmittalStatus(*req.Status).Valid() {
			return nil, invalid("unknown status %q", *req.Status)
		}
		sub.ApplyStatus(*req.Status, s.deps.now())
	}
	if err := s.repo.UpdateSubmittal(ctx, sub); err != nil {
		return nil, fmt.Errorf("update submittal: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventSubmittalUpdate, sub.ID, "update")
	v := s.submittalView(*sub)
	return &v, nil
}

func (s *DocumentService) DeleteSubmittal(ctx context.Context, companyID, id string) error {
	if err := s.repo.DeleteSubmittal(ctx, companyID, id); err != nil {
		return err
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventSubmittalUpdate, id, "delete")
	return nil
}

// === RFI ===

func (s *DocumentService) rfiView(r entity.RFI) RFIView {
	now := s.deps.now()
	rec := r.Record()
	return RFIView{RFI: r, Window: metrics.RFIWindow(rec, now), DaysOpen: metrics.RFIDaysOpen(rec, now)}
}

// RFILog RFI台账，status为空时返回全部
func (s *DocumentService) RFILog(ctx context.Context, companyID, projectID, status string) (*RFILog, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	rfis, err := s.repo.ListRFIs(ctx, companyID, projectID)
	if err != nil {
		return nil, err
	}
	log := &RFILog{Items: make([]RFIView, 0, len(rfis))}
	for _, r := range rfis {
		if status != "" && r.Status != status {
			continue
		}
		v := s.rfiView(r)
		log.Items = append(log.Items, v)
		log.Summary.Total++
		switch metrics.RFIStatus(r.Status) {
		case metrics.RFIOpen:
			log.Summary.Open++
		case metrics.RFIAnswered:
			log.Summary.Answered++
		case metrics.RFIClosed:
			log.Summary.Closed++
		}
		if v.Window == metrics.WindowOverdue {
			log.Summary.Overdue++
		}
	}
	return log, nil
}

func (s *DocumentService) GetRFI(ctx context.Context, companyID, id string) (*RFIView, error) {
	r, err := s.repo.FindRFI(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	v := s.rfiView(*r)
	return &v, nil
}

// CreateRFI 创建RFI，初始状态open
func (s *DocumentService) CreateRFI(ctx context.Context, companyID, projectID string, req *CreateRFIRequest) (*RFIView, error) {
	if _, err := requireProject(ctx, s.projects, companyID, projectID); err != nil {
		return nil, err
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	number := req.Number
	if number == "" {
		if number, err = s.repo.NextRFINumber(ctx, projectID); err != nil {
			return nil, fmt.Errorf("generate number: %w", err)
		}
	}
	r := &entity.RFI{
		ID:        uuid.New().String()[:32],
		CompanyID: companyID,
		ProjectID: projectID,
		Number:    number,
		Subject:   req.Subject,
		Question:  req.Question,
		Status:    string(metrics.RFIOpen),
		DueDate:   due,
	}
	if err := s.repo.CreateRFI(ctx, r); err != nil {
		return nil, fmt.Errorf("create rfi: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventRFIUpdate, r.ID, "create")
	v := s.rfiView(*r)
	return &v, nil
}

// UpdateRFI 更新RFI；填写回答且未指定状态时自动转为answered
func (s *DocumentService) UpdateRFI(ctx context.Context, companyID, id string, req *UpdateRFIRequest) (*RFIView, error) {
	r, err := s.repo.FindRFI(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Subject != nil {
		r.Subject = *req.Subject
	}
	if req.Question != nil {
		r.Question = *req.Question
	}
	if req.DueDate != nil {
		if r.DueDate, err = parseDate(*req.DueDate); err != nil {
			return nil, err
		}
	}
	status := ""
	if req.Answer != nil {
		r.Answer = *req.Answer
		if r.Answer != "" && r.Status == string(metrics.RFIOpen) {
			status = string(metrics.RFIAnswered)
		}
	}
	if req.Status != nil {
		status = *req.Status
	}
	if status != "" {
		if !metrics.RFIStatus(status).Valid() {
			return nil, invalid("unknown status %q", status)
		}
		r.ApplyStatus(status, s.deps.now())
	}
	if err := s.repo.UpdateRFI(ctx, r); err != nil {
		return nil, fmt.Errorf("update rfi: %w", err)
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventRFIUpdate, r.ID, "update")
	v := s.rfiView(*r)
	return &v, nil
}

func (s *DocumentService) DeleteRFI(ctx context.Context, companyID, id string) error {
	if err := s.repo.DeleteRFI(ctx, companyID, id); err != nil {
		return err
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventRFIUpdate, id, "delete")
	return nil
}
