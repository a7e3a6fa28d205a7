package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenNSW/landedcost/internal/trade/model"
	"github.com/OpenNSW/landedcost/utils"
)

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) Create(ctx context.Context, userID string, req *model.ProductDTO) (*model.Product, error) {
	if req == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	product := &model.Product{UserID: userID}
	req.Apply(product)

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (s *ProductService) GetByID(ctx context.Context, userID string, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := findOwned(ctx, s.db, &product, id, userID); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) List(ctx context.Context, userID string, filter model.ListFilter) (*model.ProductListResult, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Product{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	page := utils.PageWindow(filter.Offset, filter.Limit)
	products := make([]model.Product, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("name ASC").Scopes(page.Scope).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &model.ProductListResult{
		TotalCount: total,
		Products:   products,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}, nil
}

// Update replaces every editable field of a product.
func (s *ProductService) Update(ctx context.Context, userID string, id uuid.UUID, req *model.ProductDTO) (*model.Product, error) {
	if req == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}
	product, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	req.Apply(product)

	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	product, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(product).Error; err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}
