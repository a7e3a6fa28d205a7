package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenNSW/landedcost/internal/estimator"
	"github.com/OpenNSW/landedcost/internal/events"
	"github.com/OpenNSW/landedcost/internal/trade/model"
	"github.com/OpenNSW/landedcost/utils"
)

// Quoter fetches live rates for a shipment. A nil result means no live rate was obtained.
type Quoter interface {
	Quote(ctx context.Context, in estimator.ShipmentInput) *estimator.RateQuote
}

// CategoryResolver maps an HS code to a rate table category.
type CategoryResolver interface {
	CategoryFor(ctx context.Context, hsCode string) (string, error)
}

type AnalysisService struct {
	db         *gorm.DB
	estimator  *estimator.Estimator
	quoter     Quoter
	categories CategoryResolver
	publisher  events.Publisher
}

// NewAnalysisService wires the estimator to persistence. quoter, categories and publisher
// may be nil.
func NewAnalysisService(db *gorm.DB, est *estimator.Estimator, quoter Quoter, categories CategoryResolver, publisher events.Publisher) *AnalysisService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &AnalysisService{
		db:         db,
		estimator:  est,
		quoter:     quoter,
		categories: categories,
		publisher:  publisher,
	}
}

// Estimator returns the estimator used by the service.
func (s *AnalysisService) Estimator() *estimator.Estimator {
	return s.estimator
}

// Estimate computes a breakdown without persisting it.
func (s *AnalysisService) Estimate(ctx context.Context, in estimator.ShipmentInput) (*model.EstimateResult, error) {
	if err := s.estimator.Validate(in, nil); err != nil {
		return nil, err
	}
	in = s.resolveCategory(ctx, in)
	quote := s.quote(ctx, in)

	breakdown, err := s.estimator.Estimate(in, quote)
	if err != nil && quote != nil {
		slog.WarnContext(ctx, "live quote rejected, using rate table", "error", err)
		quote = nil
		breakdown, err = s.estimator.Estimate(in, nil)
	}
	if err != nil {
		return nil, err
	}

	return &model.EstimateResult{Input: in, Quote: quote, Breakdown: breakdown}, nil
}

// Compare estimates the shipment under every shipping method. A live shipping cost
// is only used for the method the caller asked for; with no method every row uses
// table freight.
func (s *AnalysisService) Compare(ctx context.Context, in estimator.ShipmentInput) ([]model.MethodComparison, error) {
	requested := in.ShippingMethod
	if requested == "" {
		if methods := s.estimator.Table().MethodNames(); len(methods) > 0 {
			in.ShippingMethod = methods[0]
		}
	}
	if err := s.estimator.Validate(in, nil); err != nil {
		return nil, err
	}
	in = s.resolveCategory(ctx, in)
	quote := s.quote(ctx, in)
	in.ShippingMethod = requested
	return CompareMethods(s.estimator, in, quote)
}

// Create estimates the shipment and stores the result for userID.
func (s *AnalysisService) Create(ctx context.Context, userID string, req *model.CreateAnalysisDTO) (*model.Analysis, error) {
	if req == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	in := req.Shipment.ToInput()
	var productID *uuid.UUID
	if req.ProductID != nil && *req.ProductID != "" {
		id, err := uuid.Parse(*req.ProductID)
		if err != nil {
			return nil, estimator.NewValidationError("productId", "must be a valid uuid")
		}
		var product model.Product
		if err := findOwned(ctx, s.db, &product, id, userID); err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		in = req.Shipment.WithProduct(product)
		productID = &id
	}

	result, err := s.Estimate(ctx, in)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = result.Input.ProductName
	}
	analysis := &model.Analysis{
		UserID:     userID,
		ProductID:  productID,
		Name:       name,
		Input:      result.Input,
		Quote:      result.Quote,
		Breakdown:  result.Breakdown,
		TotalCost:  result.Breakdown.TotalCost,
		IsEstimate: result.Breakdown.IsEstimate,
	}
	if err := s.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}

	s.publish(ctx, events.Event{
		Type:       events.AnalysisCreated,
		AnalysisID: analysis.ID.String(),
		UserID:     userID,
		TotalCost:  analysis.TotalCost,
		IsEstimate: analysis.IsEstimate,
	})
	return analysis, nil
}

// GetByID returns an analysis owned by userID.
func (s *AnalysisService) GetByID(ctx context.Context, userID string, id uuid.UUID) (*model.Analysis, error) {
	var analysis model.Analysis
	if err := findOwned(ctx, s.db, &analysis, id, userID); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// List returns userID's analyses, newest first.
func (s *AnalysisService) List(ctx context.Context, userID string, filter model.ListFilter) (*model.AnalysisListResult, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Analysis{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}

	page := utils.PageWindow(filter.Offset, filter.Limit)
	analyses := make([]model.Analysis, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Scopes(page.Scope).
		Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve analyses: %w", err)
	}

	return &model.AnalysisListResult{
		TotalCount: total,
		Analyses:   analyses,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}, nil
}

// Delete removes an analysis owned by userID.
func (s *AnalysisService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	analysis, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(analysis).Error; err != nil {
		return fmt.Errorf("failed to delete analysis %s: %w", id, err)
	}

	s.publish(ctx, events.Event{
		Type:       events.AnalysisDeleted,
		AnalysisID: id.String(),
		UserID:     userID,
	})
	return nil
}

// Drawback reports the duty refundable if the goods of an analysis are re-exported.
func (s *AnalysisService) Drawback(ctx context.Context, userID string, id uuid.UUID) (*model.DrawbackResult, error) {
	analysis, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	result := ComputeDrawback(analysis.Input, analysis.Breakdown, s.estimator.Table().DrawbackRate)
	return &result, nil
}

func (s *AnalysisService) quote(ctx context.Context, in estimator.ShipmentInput) *estimator.RateQuote {
	if s.quoter == nil {
		return nil
	}
	return s.quoter.Quote(ctx, in)
}

// resolveCategory fills ProductCategory from the HS code when the caller left it empty.
func (s *AnalysisService) resolveCategory(ctx context.Context, in estimator.ShipmentInput) estimator.ShipmentInput {
	if in.ProductCategory != "" || in.HSCode == "" || s.categories == nil {
		return in
	}
	category, err := s.categories.CategoryFor(ctx, in.HSCode)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.WarnContext(ctx, "failed to classify hs code", "hsCode", in.HSCode, "error", err)
		}
		return in
	}
	in.ProductCategory = category
	return in
}

func (s *AnalysisService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", e.Type, "analysisID", e.AnalysisID, "error", err)
	}
}

