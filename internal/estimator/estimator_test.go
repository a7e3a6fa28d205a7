package estimator

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNSW/landedcost/internal/rates"
)

func newTestEstimator(t *testing.T) *Estimator {
	t.Helper()
	table, err := rates.Default()
	require.NoError(t, err)
	return New(table)
}

func ptr(f float64) *float64 { return &f }

func electronicsShipment() ShipmentInput {
	return ShipmentInput{
		ProductCategory:    "Electronics",
		ProductName:        "Bluetooth speaker",
		HSCode:             "8518.22",
		OriginCountry:      "CN",
		DestinationCountry: "DE",
		UnitPrice:          25,
		Quantity:           1000,
		Weight:             0.3,
		Dimensions:         Dimensions{Length: 20, Width: 15, Height: 8, Unit: "cm"},
		ShippingMethod:     "air",
	}
}

func TestEstimate_ElectronicsFallback(t *testing.T) {
	e := newTestEstimator(t)

	b, err := e.Estimate(electronicsShipment(), nil)
	require.NoError(t, err)

	assert.Equal(t, 25000.0, b.ProductCost)
	assert.Equal(t, 0.065, b.DutyRate)
	assert.Equal(t, 1625.0, b.Duties)
	assert.Equal(t, 1750.0, b.Taxes)
	assert.InDelta(t, 300.0, b.ActualWeight, 1e-9)
	assert.InDelta(t, 480.0, b.VolumetricWeight, 1e-9)
	assert.InDelta(t, 480.0, b.ChargeableWeight, 1e-9)
	assert.Equal(t, 2160.0, b.Freight, "480kg x 2.5/kg x air 1.8")
	assert.Equal(t, 500.0, b.Insurance)
	assert.Equal(t, 400.0, b.CustomsClearance, "150 base + 1% of 25000")
	assert.Equal(t, 75.0, b.Handling)
	assert.Equal(t, 31510.0, b.TotalCost)
	assert.Equal(t, 5, b.EstimatedDeliveryDays)
	assert.False(t, b.DeMinimisApplied)
	assert.True(t, b.IsEstimate)
}

func TestEstimate_LiveQuote(t *testing.T) {
	e := newTestEstimator(t)

	quote := &RateQuote{DutyRate: ptr(0.1), ShippingCost: ptr(999.99), EstimatedDeliveryDays: 7, Source: "live"}
	b, err := e.Estimate(electronicsShipment(), quote)
	require.NoError(t, err)

	assert.Equal(t, 2500.0, b.Duties)
	assert.Equal(t, 999.99, b.Freight)
	assert.Equal(t, 7, b.EstimatedDeliveryDays)
	assert.False(t, b.IsEstimate)
	assert.InDelta(t, b.ComponentSum(), b.TotalCost, 1e-6)
}

func TestEstimate_IsEstimateFlag(t *testing.T) {
	e := newTestEstimator(t)
	in := electronicsShipment()

	tests := []struct {
		name  string
		quote *RateQuote
		want  bool
	}{
		{"no quote", nil, true},
		{"duty only", &RateQuote{DutyRate: ptr(0.02)}, true},
		{"shipping only", &RateQuote{ShippingCost: ptr(100)}, true},
		{"synthesized quote", &RateQuote{DutyRate: ptr(0.02), ShippingCost: ptr(100), IsEstimate: true}, true},
		{"live quote", &RateQuote{DutyRate: ptr(0.02), ShippingCost: ptr(100)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := e.Estimate(in, tt.quote)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.IsEstimate)
			assert.Equal(t, !tt.want, tt.quote.Live())
		})
	}
}

func TestEstimate_ZeroValueKeepsFixedFees(t *testing.T) {
	e := newTestEstimator(t)

	t.Run("quantity zero", func(t *testing.T) {
		in := electronicsShipment()
		in.Quantity = 0

		b, err := e.Estimate(in, nil)
		require.NoError(t, err)

		assert.Zero(t, b.ProductCost)
		assert.Zero(t, b.Duties)
		assert.Zero(t, b.Taxes)
		assert.Zero(t, b.Insurance)
		assert.Zero(t, b.Freight)
		assert.Equal(t, 150.0, b.CustomsClearance)
		assert.Equal(t, 75.0, b.Handling)
		assert.Equal(t, 225.0, b.TotalCost)
	})

	t.Run("unit price zero", func(t *testing.T) {
		in := electronicsShipment()
		in.UnitPrice = 0

		b, err := e.Estimate(in, nil)
		require.NoError(t, err)

		assert.Zero(t, b.ProductCost)
		assert.Zero(t, b.Duties)
		assert.Zero(t, b.Taxes)
		assert.Zero(t, b.Insurance)
		assert.Equal(t, 2160.0, b.Freight, "freight depends on weight, not value")
		assert.Equal(t, 150.0, b.CustomsClearance)
		assert.Equal(t, 75.0, b.Handling)
	})
}

func TestEstimate_DeMinimis(t *testing.T) {
	e := newTestEstimator(t)
	in := electronicsShipment()
	in.DestinationCountry = "us"
	in.Quantity = 10
	in.UnitPrice = 50

	b, err := e.Estimate(in, nil)
	require.NoError(t, err)

	assert.True(t, b.DeMinimisApplied)
	assert.Zero(t, b.Duties)
	assert.Equal(t, 35.0, b.Taxes, "tax is not waived by de minimis")
}

func TestEstimate_UnitsAndUrgency(t *testing.T) {
	e := newTestEstimator(t)

	t.Run("inches", func(t *testing.T) {
		in := electronicsShipment()
		in.Quantity = 1
		in.Weight = 1
		in.Dimensions = Dimensions{Length: 10, Width: 10, Height: 10, Unit: "in"}

		b, err := e.Estimate(in, nil)
		require.NoError(t, err)
		assert.InDelta(t, 3.2774128, b.VolumetricWeight, 1e-9)
		assert.InDelta(t, 3.2774128, b.ChargeableWeight, 1e-9)
	})

	t.Run("critical urgency", func(t *testing.T) {
		in := electronicsShipment()
		in.UrgencyLevel = "critical"

		b, err := e.Estimate(in, nil)
		require.NoError(t, err)
		assert.Equal(t, 3456.0, b.Freight)
	})

	t.Run("heavy goods use actual weight", func(t *testing.T) {
		in := electronicsShipment()
		in.Weight = 2

		b, err := e.Estimate(in, nil)
		require.NoError(t, err)
		assert.InDelta(t, 2000.0, b.ChargeableWeight, 1e-9)
	})
}

func TestDimensions_InCentimeters(t *testing.T) {
	got, ok := Dimensions{Length: 10, Width: 2, Height: 1, Unit: " In "}.InCentimeters()
	require.True(t, ok)
	assert.Equal(t, Dimensions{Length: 25.4, Width: 5.08, Height: 2.54, Unit: "cm"}, got)

	got, ok = Dimensions{Length: 30, Width: 20, Height: 10}.InCentimeters()
	require.True(t, ok)
	assert.Equal(t, 30.0, got.Length)

	_, ok = Dimensions{Length: 1, Unit: "furlong"}.InCentimeters()
	assert.False(t, ok)
}

func TestEstimate_Validation(t *testing.T) {
	e := newTestEstimator(t)

	tests := []struct {
		name   string
		mutate func(*ShipmentInput)
		fields []string
	}{
		{"negative weight", func(s *ShipmentInput) { s.Weight = -1 }, []string{"weight"}},
		{"negative dimension", func(s *ShipmentInput) { s.Dimensions.Height = -0.1 }, []string{"dimensions.height"}},
		{"nan price", func(s *ShipmentInput) { s.UnitPrice = math.NaN() }, []string{"unitPrice"}},
		{"infinite length", func(s *ShipmentInput) { s.Dimensions.Length = math.Inf(1) }, []string{"dimensions.length"}},
		{"negative quantity", func(s *ShipmentInput) { s.Quantity = -5 }, []string{"quantity"}},
		{"unknown unit", func(s *ShipmentInput) { s.Dimensions.Unit = "furlong" }, []string{"dimensions.unit"}},
		{"missing method", func(s *ShipmentInput) { s.ShippingMethod = "" }, []string{"shippingMethod"}},
		{"unknown method", func(s *ShipmentInput) { s.ShippingMethod = "teleport" }, []string{"shippingMethod"}},
		{"unknown urgency", func(s *ShipmentInput) { s.UrgencyLevel = "asap" }, []string{"urgencyLevel"}},
		{
			"several fields",
			func(s *ShipmentInput) { s.Weight = -1; s.UnitPrice = -2 },
			[]string{"unitPrice", "weight"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := electronicsShipment()
			tt.mutate(&in)

			_, err := e.Estimate(in, nil)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			got := make([]string, 0, len(ve.Fields))
			for _, f := range ve.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestEstimate_InvalidQuote(t *testing.T) {
	e := newTestEstimator(t)

	_, err := e.Estimate(electronicsShipment(), &RateQuote{DutyRate: ptr(1.5), ShippingCost: ptr(-3)})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields, 2)
	assert.Contains(t, err.Error(), "quote.dutyRate")
}

func TestEstimate_Idempotent(t *testing.T) {
	e := newTestEstimator(t)
	quote := &RateQuote{DutyRate: ptr(0.03), ShippingCost: ptr(1234.5)}

	first, err := e.Estimate(electronicsShipment(), quote)
	require.NoError(t, err)
	second, err := e.Estimate(electronicsShipment(), quote)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEstimate_Properties(t *testing.T) {
	e := newTestEstimator(t)
	rng := rand.New(rand.NewPCG(42, 7))
	methods := e.Table().MethodNames()
	categories := []string{"electronics", "textiles", "toys", "generic", ""}
	countries := []string{"US", "GB", "DE", "JP"}

	for i := 0; i < 500; i++ {
		in := ShipmentInput{
			ProductCategory:    categories[rng.IntN(len(categories))],
			DestinationCountry: countries[rng.IntN(len(countries))],
			UnitPrice:          math.Round(rng.Float64()*10000) / 100,
			Quantity:           rng.IntN(5000),
			Weight:             rng.Float64() * 20,
			Dimensions: Dimensions{
				Length: rng.Float64() * 120,
				Width:  rng.Float64() * 80,
				Height: rng.Float64() * 60,
			},
			ShippingMethod: methods[rng.IntN(len(methods))],
		}
		var quote *RateQuote
		if rng.IntN(2) == 0 {
			quote = &RateQuote{DutyRate: ptr(rng.Float64() * 0.3), ShippingCost: ptr(rng.Float64() * 5000)}
		}

		b, err := e.Estimate(in, quote)
		require.NoError(t, err)

		assert.InDelta(t, b.TotalCost, b.ComponentSum(), 1e-6)
		assert.GreaterOrEqual(t, b.ChargeableWeight, b.ActualWeight)
		assert.GreaterOrEqual(t, b.ChargeableWeight, b.VolumetricWeight)
		assert.Equal(t, math.Max(b.ActualWeight, b.VolumetricWeight), b.ChargeableWeight)
		assert.Equal(t, quote == nil, b.IsEstimate)
	}
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{}
	assert.NoError(t, ve.Err())

	ve.Add("weight", "must not be negative")
	ve.Add("quantity", "must not be negative")
	assert.Equal(t, "validation failed: weight: must not be negative; quantity: must not be negative", ve.Error())

	single := NewValidationError("hsCode", "is required")
	assert.Equal(t, []FieldError{{Field: "hsCode", Message: "is required"}}, single.Fields)
	assert.Error(t, single.Err())
}

func TestShipmentInput_TotalValue(t *testing.T) {
	in := electronicsShipment()
	assert.Equal(t, 25000.0, in.TotalValue())
}
