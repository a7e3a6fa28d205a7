package model

import (
	"github.com/google/uuid"

	"github.com/OpenNSW/landedcost/internal/estimator"
)

// Analysis is a persisted landed-cost estimate. Input, Quote and Breakdown are stored as
// jsonb; the quote is kept only as a record of what the estimate used.
type Analysis struct {
	BaseModel
	UserID     string                  `gorm:"type:varchar(100);column:user_id;not null;index" json:"userId"`
	ProductID  *uuid.UUID              `gorm:"type:uuid;column:product_id" json:"productId,omitempty"`
	Name       string                  `gorm:"type:varchar(255);column:name" json:"name,omitempty"`
	Input      estimator.ShipmentInput `gorm:"type:jsonb;column:input;serializer:json;not null" json:"input"`
	Quote      *estimator.RateQuote    `gorm:"type:jsonb;column:quote;serializer:json" json:"quote,omitempty"`
	Breakdown  estimator.CostBreakdown `gorm:"type:jsonb;column:breakdown;serializer:json;not null" json:"breakdown"`
	TotalCost  float64                 `gorm:"column:total_cost;not null" json:"totalCost"`
	IsEstimate bool                    `gorm:"column:is_estimate;not null" json:"isEstimate"`
}

func (a *Analysis) TableName() string {
	return "analyses"
}

// DimensionsDTO is the request shape of per-unit dimensions.
type DimensionsDTO struct {
	Length float64 `json:"length" binding:"gte=0"`
	Width  float64 `json:"width" binding:"gte=0"`
	Height float64 `json:"height" binding:"gte=0"`
	Unit   string  `json:"unit" binding:"omitempty,oneof=cm mm m in"`
}

func (d DimensionsDTO) ToDimensions() estimator.Dimensions {
	return estimator.Dimensions{Length: d.Length, Width: d.Width, Height: d.Height, Unit: d.Unit}
}

// ShipmentDTO is the request shape of a shipment. Shipping method and urgency are
// checked against the rate table by the estimator. Unit price, weight and dimensions
// are optional so a linked product can supply them.
type ShipmentDTO struct {
	ProductCategory    string        `json:"productCategory" binding:"max=100"`
	ProductName        string        `json:"productName" binding:"max=255"`
	HSCode             string        `json:"hsCode" binding:"max=50"`
	OriginCountry      string        `json:"originCountry" binding:"required,iso3166_1_alpha2"`
	DestinationCountry string        `json:"destinationCountry" binding:"required,iso3166_1_alpha2"`
	UnitPrice          *float64       `json:"unitPrice" binding:"omitempty,gte=0"`
	Quantity           int            `json:"quantity" binding:"gte=0"`
	Weight             *float64       `json:"weight" binding:"omitempty,gte=0"`
	Dimensions         *DimensionsDTO `json:"dimensions"`
	ShippingMethod     string        `json:"shippingMethod" binding:"max=50"`
	UrgencyLevel       string        `json:"urgencyLevel" binding:"max=50"`
}

// ToInput converts the request to estimator input. Absent amounts are zero.
func (s ShipmentDTO) ToInput() estimator.ShipmentInput {
	in := estimator.ShipmentInput{
		ProductCategory:    s.ProductCategory,
		ProductName:        s.ProductName,
		HSCode:             s.HSCode,
		OriginCountry:      s.OriginCountry,
		DestinationCountry: s.DestinationCountry,
		Quantity:           s.Quantity,
		ShippingMethod:     s.ShippingMethod,
		UrgencyLevel:       s.UrgencyLevel,
	}
	if s.UnitPrice != nil {
		in.UnitPrice = *s.UnitPrice
	}
	if s.Weight != nil {
		in.Weight = *s.Weight
	}
	if s.Dimensions != nil {
		in.Dimensions = s.Dimensions.ToDimensions()
	}
	return in
}

// WithProduct converts the request to estimator input, taking descriptive fields and
// any amount the request left out from p.
func (s ShipmentDTO) WithProduct(p Product) estimator.ShipmentInput {
	in := s.ToInput()
	if in.ProductName == "" {
		in.ProductName = p.Name
	}
	if in.HSCode == "" {
		in.HSCode = p.HSCode
	}
	if in.ProductCategory == "" {
		in.ProductCategory = p.Category
	}
	if s.UnitPrice == nil {
		in.UnitPrice = p.UnitPrice
	}
	if s.Weight == nil {
		in.Weight = p.Weight
	}
	if s.Dimensions == nil {
		in.Dimensions = p.Dimensions
	}
	return in
}

// CreateAnalysisDTO is the request body of POST /api/analyses.
type CreateAnalysisDTO struct {
	Name      string      `json:"name" binding:"max=255"`
	ProductID *string     `json:"productId" binding:"omitempty,uuid"`
	Shipment  ShipmentDTO `json:"shipment"`
}

// EstimateResult is an unsaved estimate together with the quote it used.
type EstimateResult struct {
	Input     estimator.ShipmentInput `json:"input"`
	Quote     *estimator.RateQuote    `json:"quote,omitempty"`
	Breakdown estimator.CostBreakdown `json:"breakdown"`
}

// MethodComparison is the estimate for one shipping method.
type MethodComparison struct {
	ShippingMethod string                  `json:"shippingMethod"`
	TransitDays    int                     `json:"transitDays"`
	Breakdown      estimator.CostBreakdown `json:"breakdown"`
}

// DrawbackResult describes the duty refundable when goods are re-exported.
type DrawbackResult struct {
	Eligible         bool    `json:"eligible"`
	Reason           string  `json:"reason,omitempty"`
	DutiesPaid       float64 `json:"dutiesPaid"`
	RefundRate       float64 `json:"refundRate"`
	RefundableAmount float64 `json:"refundableAmount"`
}

// AnalysisListResult represents the result of querying analyses with pagination
type AnalysisListResult struct {
	TotalCount int64      `json:"totalCount"`
	Analyses   []Analysis `json:"analyses"`
	Offset     int        `json:"offset"`
	Limit      int        `json:"limit"`
}
