package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/OpenNSW/landedcost/internal/estimator"
	"github.com/OpenNSW/landedcost/internal/rates"
	"github.com/OpenNSW/landedcost/internal/trade/model"
)

// CompareMethods estimates in under every shipping method of the rate table, cheapest
// first. A live shipping cost only applies to in.ShippingMethod, the method it was
// requested for; the live duty rate applies to all of them. An empty method means the
// shipping cost is ignored.
func CompareMethods(est *estimator.Estimator, in estimator.ShipmentInput, quote *estimator.RateQuote) ([]model.MethodComparison, error) {
	var dutyOnly *estimator.RateQuote
	if quote != nil && quote.DutyRate != nil {
		dutyOnly = &estimator.RateQuote{DutyRate: quote.DutyRate, Source: quote.Source, IsEstimate: quote.IsEstimate}
	}
	quotedMethod := rates.NormalizeKey(in.ShippingMethod)

	methods := est.Table().MethodNames()
	out := make([]model.MethodComparison, 0, len(methods))
	for _, method := range methods {
		variant := in
		variant.ShippingMethod = method

		q := dutyOnly
		if method == quotedMethod && quote != nil {
			q = quote
		}

		b, err := est.Estimate(variant, q)
		if err != nil {
			return nil, fmt.Errorf("failed to estimate %s shipping: %w", method, err)
		}
		out = append(out, model.MethodComparison{
			ShippingMethod: method,
			TransitDays:    b.EstimatedDeliveryDays,
			Breakdown:      b,
		})
	}

	slices.SortStableFunc(out, func(a, b model.MethodComparison) int {
		if c := cmp.Compare(a.Breakdown.TotalCost, b.Breakdown.TotalCost); c != 0 {
			return c
		}
		return cmp.Compare(a.ShippingMethod, b.ShippingMethod)
	})
	return out, nil
}

// ComputeDrawback reports the duty refundable on re-export of the goods in b.
func ComputeDrawback(in estimator.ShipmentInput, b estimator.CostBreakdown, refundRate float64) model.DrawbackResult {
	result := model.DrawbackResult{
		DutiesPaid: b.Duties,
		RefundRate: refundRate,
	}

	switch {
	case b.Duties <= 0:
		result.Reason = "no duties were paid on this shipment"
	case strings.EqualFold(strings.TrimSpace(in.OriginCountry), strings.TrimSpace(in.DestinationCountry)):
		result.Reason = "domestic shipments are not eligible for drawback"
	default:
		result.Eligible = true
		result.RefundableAmount = decimal.NewFromFloat(b.Duties).
			Mul(decimal.NewFromFloat(refundRate)).
			Round(2).
			InexactFloat64()
	}
	return result
}
