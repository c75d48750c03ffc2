package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-build/internal/property/entity"
	"github.com/bitfantasy/nimo-build/internal/property/repository"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/google/uuid"
)

// PropertyService 物业服务
type PropertyService struct {
	repo *repository.PropertyRepository
	deps Deps
}

func NewPropertyService(repo *repository.PropertyRepository, deps Deps) *PropertyService {
	return &PropertyService{repo: repo, deps: deps}
}

type CreatePropertyRequest struct {
	Name         string `json:"name" binding:"required,max=200"`
	PropertyType string `json:"property_type"`
	Address      string `json:"address"`
	Units        int    `json:"units" binding:"min=0"`
}

type UpdatePropertyRequest struct {
	Name         *string `json:"name"`
	PropertyType *string `json:"property_type"`
	Address      *string `json:"address"`
	Units        *int    `json:"units" binding:"omitempty,min=0"`
}

func (s *PropertyService) List(ctx context.Context, companyID, search string) ([]entity.Property, error) {
	return s.repo.FindAll(ctx, companyID, search)
}

func (s *PropertyService) Get(ctx context.Context, companyID, id string) (*entity.Property, error) {
	return s.repo.FindByID(ctx, companyID, id)
}

func (s *PropertyService) Create(ctx context.Context, companyID, userID string, req *CreatePropertyRequest) (*entity.Property, error) {
	p := &entity.Property{
		ID:           uuid.New().String()[:32],
		CompanyID:    companyID,
		Name:         req.Name,
		PropertyType: req.PropertyType,
		Address:      req.Address,
		Units:        req.Units,
		CreatedBy:    userID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	return p, nil
}

func (s *PropertyService) Update(ctx context.Context, companyID, id string, req *UpdatePropertyRequest) (*entity.Property, error) {
	p, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.PropertyType != nil {
		p.PropertyType = *req.PropertyType
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.Units != nil {
		p.Units = *req.Units
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	return p, nil
}

// Delete 删除物业，其工单和费用一并删除
func (s *PropertyService) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	s.deps.Notifier.Changed(ctx, companyID, sse.EventExpenseUpdate, id, "property_delete")
	return nil
}
