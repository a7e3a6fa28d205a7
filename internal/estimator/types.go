package estimator

import (
	"strings"
)

// Dimensions are per-unit package dimensions.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"` // cm (default), mm, m or in
}

// ShipmentInput describes one shipment line as entered by the user.
// Weight and Dimensions are per unit; totals are derived from Quantity.
type ShipmentInput struct {
	ProductCategory    string     `json:"productCategory"`
	ProductName        string     `json:"productName"`
	HSCode             string     `json:"hsCode"`
	OriginCountry      string     `json:"originCountry"`
	DestinationCountry string     `json:"destinationCountry"`
	UnitPrice          float64    `json:"unitPrice"`
	Quantity           int        `json:"quantity"`
	Weight             float64    `json:"weight"` // kg per unit
	Dimensions         Dimensions `json:"dimensions"`
	ShippingMethod     string     `json:"shippingMethod"`
	UrgencyLevel       string     `json:"urgencyLevel,omitempty"`
}

// TotalValue is always quantity × unit price; it is never stored on its own.
func (s ShipmentInput) TotalValue() float64 {
	return float64(s.Quantity) * s.UnitPrice
}

// RateQuote carries whatever a live lookup (or a synthesized table lookup) produced.
// Nil fields mean the value was not obtained and the table fallback applies.
type RateQuote struct {
	DutyRate              *float64 `json:"dutyRate,omitempty"`
	ShippingCost          *float64 `json:"shippingCost,omitempty"`
	EstimatedDeliveryDays int      `json:"estimatedDeliveryDays,omitempty"`
	Carrier               string   `json:"carrier,omitempty"`
	Source                string   `json:"source,omitempty"`
	IsEstimate            bool     `json:"isEstimate"`
}

// Live reports whether the quote supplies both duty and shipping from a live source.
func (q *RateQuote) Live() bool {
	return q != nil && !q.IsEstimate && q.DutyRate != nil && q.ShippingCost != nil
}

// CostBreakdown is the landed cost split into its components.
// ProductCost + Freight + Insurance + Duties + Taxes + CustomsClearance + Handling +
// LastMile + Other == TotalCost.
type CostBreakdown struct {
	ProductCost      float64 `json:"productCost"`
	Freight          float64 `json:"freight"`
	Insurance        float64 `json:"insurance"`
	Duties           float64 `json:"duties"`
	Taxes            float64 `json:"taxes"`
	CustomsClearance float64 `json:"customsClearance"`
	Handling         float64 `json:"handling"`
	LastMile         float64 `json:"lastMile"`
	Other            float64 `json:"other"`
	TotalCost        float64 `json:"totalCost"`

	DutyRate              float64 `json:"dutyRate"`
	TaxRate               float64 `json:"taxRate"`
	ActualWeight          float64 `json:"actualWeight"`
	VolumetricWeight      float64 `json:"volumetricWeight"`
	ChargeableWeight      float64 `json:"chargeableWeight"`
	EstimatedDeliveryDays int     `json:"estimatedDeliveryDays"`
	DeMinimisApplied      bool    `json:"deMinimisApplied"`
	IsEstimate            bool    `json:"isEstimate"`
}

// ComponentSum adds every named component. It equals TotalCost for any breakdown
// produced by Estimate.
func (b CostBreakdown) ComponentSum() float64 {
	return b.ProductCost + b.Freight + b.Insurance + b.Duties + b.Taxes +
		b.CustomsClearance + b.Handling + b.LastMile + b.Other
}

// FieldError is a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every invalid field of a request.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records an invalid field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns e when at least one field was recorded, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	ve := &ValidationError{}
	ve.Add(field, message)
	return ve
}
