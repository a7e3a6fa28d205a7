// Package estimator computes landed cost for a shipment.
//
// Estimate is a pure function of its inputs: the shipment, an optional rate quote and
// the rate table. It holds no state and performs no I/O.
package estimator

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/OpenNSW/landedcost/internal/rates"
)

const moneyPlaces = 2

var dimensionFactors = map[string]decimal.Decimal{
	"":   decimal.NewFromInt(1),
	"cm": decimal.NewFromInt(1),
	"mm": decimal.RequireFromString("0.1"),
	"m":  decimal.NewFromInt(100),
	"in": decimal.RequireFromString("2.54"),
}

// Estimator applies a rate table to shipments.
type Estimator struct {
	table *rates.Table
}

func New(table *rates.Table) *Estimator {
	return &Estimator{table: table}
}

// Table returns the rate table the estimator was built with.
func (e *Estimator) Table() *rates.Table {
	return e.table
}

// Validate checks a shipment and an optional quote without computing anything.
func (e *Estimator) Validate(in ShipmentInput, quote *RateQuote) error {
	ve := &ValidationError{}

	checkAmount(ve, "unitPrice", in.UnitPrice)
	checkAmount(ve, "weight", in.Weight)
	checkAmount(ve, "dimensions.length", in.Dimensions.Length)
	checkAmount(ve, "dimensions.width", in.Dimensions.Width)
	checkAmount(ve, "dimensions.height", in.Dimensions.Height)
	if in.Quantity < 0 {
		ve.Add("quantity", "must not be negative")
	}

	if _, ok := unitFactor(in.Dimensions.Unit); !ok {
		ve.Add("dimensions.unit", fmt.Sprintf("unsupported unit %q", in.Dimensions.Unit))
	}
	if strings.TrimSpace(in.ShippingMethod) == "" {
		ve.Add("shippingMethod", "is required")
	} else if _, ok := e.table.Method(in.ShippingMethod); !ok {
		ve.Add("shippingMethod", fmt.Sprintf("unsupported shipping method %q", in.ShippingMethod))
	}
	if _, ok := e.table.UrgencyMultiplier(in.UrgencyLevel); !ok {
		ve.Add("urgencyLevel", fmt.Sprintf("unsupported urgency level %q", in.UrgencyLevel))
	}

	if quote != nil {
		if quote.DutyRate != nil {
			if r := *quote.DutyRate; math.IsNaN(r) || math.IsInf(r, 0) || r < 0 || r > 1 {
				ve.Add("quote.dutyRate", "must be a number between 0 and 1")
			}
		}
		if quote.ShippingCost != nil {
			checkAmount(ve, "quote.shippingCost", *quote.ShippingCost)
		}
	}

	return ve.Err()
}

func checkAmount(ve *ValidationError, field string, v float64) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		ve.Add(field, "must be a finite number")
	case v < 0:
		ve.Add(field, "must not be negative")
	}
}

// Estimate computes the cost breakdown. Duty and shipping come from quote when it
// carries them and from the rate table otherwise; IsEstimate reports the latter.
func (e *Estimator) Estimate(in ShipmentInput, quote *RateQuote) (CostBreakdown, error) {
	if err := e.Validate(in, quote); err != nil {
		return CostBreakdown{}, err
	}

	t := e.table
	qty := decimal.NewFromInt(int64(in.Quantity))
	totalValue := decimal.NewFromFloat(in.UnitPrice).Mul(qty)

	actualWeight := decimal.NewFromFloat(in.Weight).Mul(qty)
	volumetricWeight := volumetricWeight(in.Dimensions, t.Shipping.VolumetricDivisor).Mul(qty)
	chargeableWeight := decimal.Max(actualWeight, volumetricWeight)

	isEstimate := !quote.Live()

	dutyRate := t.DutyRate(in.ProductCategory)
	if quote != nil && quote.DutyRate != nil {
		dutyRate = decimal.NewFromFloat(*quote.DutyRate)
	}
	duties := money(totalValue.Mul(dutyRate))
	deMinimis := false
	if threshold, ok := t.DeMinimisThreshold(in.DestinationCountry); ok && totalValue.LessThanOrEqual(threshold) {
		duties = decimal.Zero
		deMinimis = true
	}

	taxRate := t.TaxRate(in.DestinationCountry)
	taxes := money(totalValue.Mul(taxRate))

	method, _ := t.Method(in.ShippingMethod)
	deliveryDays := method.TransitDays
	var freight decimal.Decimal
	if quote != nil && quote.ShippingCost != nil {
		freight = money(decimal.NewFromFloat(*quote.ShippingCost))
	} else {
		urgency, _ := t.UrgencyMultiplier(in.UrgencyLevel)
		freight = money(chargeableWeight.Mul(t.PerKgRate(method)).Mul(urgency))
	}
	if quote != nil && quote.EstimatedDeliveryDays > 0 {
		deliveryDays = quote.EstimatedDeliveryDays
	}

	productCost := money(totalValue)
	insurance := money(totalValue.Mul(decimal.NewFromFloat(t.InsuranceRate)))
	customs := money(decimal.NewFromFloat(t.Customs.BaseFee).Add(totalValue.Mul(decimal.NewFromFloat(t.Customs.ValueRate))))
	handling := money(decimal.NewFromFloat(t.HandlingFee))
	lastMile := money(decimal.NewFromFloat(t.LastMileFee))
	other := decimal.Zero

	total := decimal.Sum(productCost, freight, insurance, duties, taxes, customs, handling, lastMile, other)

	return CostBreakdown{
		ProductCost:           productCost.InexactFloat64(),
		Freight:               freight.InexactFloat64(),
		Insurance:             insurance.InexactFloat64(),
		Duties:                duties.InexactFloat64(),
		Taxes:                 taxes.InexactFloat64(),
		CustomsClearance:      customs.InexactFloat64(),
		Handling:              handling.InexactFloat64(),
		LastMile:              lastMile.InexactFloat64(),
		Other:                 other.InexactFloat64(),
		TotalCost:             total.InexactFloat64(),
		DutyRate:              dutyRate.InexactFloat64(),
		TaxRate:               taxRate.InexactFloat64(),
		ActualWeight:          actualWeight.InexactFloat64(),
		VolumetricWeight:      volumetricWeight.InexactFloat64(),
		ChargeableWeight:      chargeableWeight.InexactFloat64(),
		EstimatedDeliveryDays: deliveryDays,
		DeMinimisApplied:      deMinimis,
		IsEstimate:            isEstimate,
	}, nil
}

// volumetricWeight is L×W×H (in cm) / divisor for a single unit.
// unitFactor returns the multiplier converting unit to centimetres.
func unitFactor(unit string) (decimal.Decimal, bool) {
	f, ok := dimensionFactors[strings.ToLower(strings.TrimSpace(unit))]
	return f, ok
}

// InCentimeters returns d converted to centimetres. ok is false for an unknown unit.
func (d Dimensions) InCentimeters() (Dimensions, bool) {
	f, ok := unitFactor(d.Unit)
	if !ok {
		return d, false
	}
	conv := func(v float64) float64 { return decimal.NewFromFloat(v).Mul(f).InexactFloat64() }
	return Dimensions{Length: conv(d.Length), Width: conv(d.Width), Height: conv(d.Height), Unit: "cm"}, true
}

func volumetricWeight(d Dimensions, divisor float64) decimal.Decimal {
	factor, _ := unitFactor(d.Unit)
	l := decimal.NewFromFloat(d.Length).Mul(factor)
	w := decimal.NewFromFloat(d.Width).Mul(factor)
	h := decimal.NewFromFloat(d.Height).Mul(factor)
	return l.Mul(w).Mul(h).Div(decimal.NewFromFloat(divisor))
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}
