package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenNSW/landedcost/internal/trade/model"
	"github.com/OpenNSW/landedcost/utils"
)

type ComplianceService struct {
	db *gorm.DB
}

func NewComplianceService(db *gorm.DB) *ComplianceService {
	return &ComplianceService{db: db}
}

func (s *ComplianceService) Create(ctx context.Context, userID string, req *model.ComplianceRequirementDTO) (*model.ComplianceRequirement, error) {
	if req == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	requirement := &model.ComplianceRequirement{UserID: userID}
	req.Apply(requirement)

	if err := s.db.WithContext(ctx).Create(requirement).Error; err != nil {
		return nil, fmt.Errorf("failed to create compliance requirement: %w", err)
	}
	return requirement, nil
}

func (s *ComplianceService) GetByID(ctx context.Context, userID string, id uuid.UUID) (*model.ComplianceRequirement, error) {
	var requirement model.ComplianceRequirement
	if err := findOwned(ctx, s.db, &requirement, id, userID); err != nil {
		return nil, err
	}
	return &requirement, nil
}

// List returns userID's requirements, optionally narrowed to an HS code and country.
func (s *ComplianceService) List(ctx context.Context, userID string, filter model.ComplianceFilter) (*model.ComplianceListResult, error) {
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&model.ComplianceRequirement{}).Where("user_id = ?", userID)
		if filter.HSCode != nil && *filter.HSCode != "" {
			q = q.Where("hs_code = ?", *filter.HSCode)
		}
		if filter.Country != nil && *filter.Country != "" {
			q = q.Where("country = ?", strings.ToUpper(*filter.Country))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count compliance requirements: %w", err)
	}

	page := utils.PageWindow(filter.Offset, filter.Limit)
	requirements := make([]model.ComplianceRequirement, 0)
	if err := base().Order("created_at ASC").Scopes(page.Scope).Find(&requirements).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve compliance requirements: %w", err)
	}

	return &model.ComplianceListResult{
		TotalCount:   total,
		Requirements: requirements,
		Offset:       page.Offset,
		Limit:        page.Limit,
	}, nil
}

func (s *ComplianceService) Update(ctx context.Context, userID string, id uuid.UUID, req *model.ComplianceRequirementDTO) (*model.ComplianceRequirement, error) {
	if req == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}
	requirement, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	req.Apply(requirement)

	if err := s.db.WithContext(ctx).Save(requirement).Error; err != nil {
		return nil, fmt.Errorf("failed to update compliance requirement %s: %w", id, err)
	}
	return requirement, nil
}

func (s *ComplianceService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	requirement, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(requirement).Error; err != nil {
		return fmt.Errorf("failed to delete compliance requirement %s: %w", id, err)
	}
	return nil
}
