package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/OpenNSW/landedcost/internal/estimator"
)

func TestCompareMethods_LiveShippingOnlyForQuotedMethod(t *testing.T) {
	est := newTestEstimator(t)
	quote := &estimator.RateQuote{DutyRate: ptr(0.02), ShippingCost: ptr(100.0), Source: "live"}

	results, err := CompareMethods(est, electronicsInput(), quote)
	require.NoError(t, err)
	require.Len(t, results, 4)

	byMethod := map[string]estimator.CostBreakdown{}
	for _, r := range results {
		byMethod[r.ShippingMethod] = r.Breakdown
		assert.Equal(t, 500.0, r.Breakdown.Duties, "live duty applies to every method")
	}
	assert.Equal(t, 100.0, byMethod["air"].Freight)
	assert.False(t, byMethod["air"].IsEstimate)
	assert.Equal(t, 3600.0, byMethod["express"].Freight)
	assert.True(t, byMethod["express"].IsEstimate)
	assert.Equal(t, "air", results[0].ShippingMethod, "the live air quote is the cheapest")
}

func TestAnalysisService_CompareLiveMethod(t *testing.T) {
	ctx := context.Background()
	liveQuote := &estimator.RateQuote{DutyRate: ptr(0.02), ShippingCost: ptr(100.0), Source: "live"}

	t.Run("no method ignores the live shipping cost", func(t *testing.T) {
		quoter := new(MockQuoter)
		quoter.On("Quote", ctx, mock.Anything).Return(liveQuote)
		s := NewAnalysisService(nil, newTestEstimator(t), quoter, nil, nil)

		in := electronicsInput()
		in.ShippingMethod = ""
		results, err := s.Compare(ctx, in)
		require.NoError(t, err)
		require.Len(t, results, 4)
		for _, r := range results {
			assert.NotEqual(t, 100.0, r.Breakdown.Freight, r.ShippingMethod)
			assert.True(t, r.Breakdown.IsEstimate, r.ShippingMethod)
			assert.Equal(t, 500.0, r.Breakdown.Duties, r.ShippingMethod)
		}
		quoter.AssertExpectations(t)
	})

	t.Run("named method gets the live shipping cost", func(t *testing.T) {
		quoter := new(MockQuoter)
		quoter.On("Quote", ctx, mock.Anything).Return(liveQuote)
		s := NewAnalysisService(nil, newTestEstimator(t), quoter, nil, nil)

		in := electronicsInput()
		in.ShippingMethod = "ocean"
		results, err := s.Compare(ctx, in)
		require.NoError(t, err)
		for _, r := range results {
			if r.ShippingMethod == "ocean" {
				assert.Equal(t, 100.0, r.Breakdown.Freight)
				assert.False(t, r.Breakdown.IsEstimate)
			} else {
				assert.True(t, r.Breakdown.IsEstimate, r.ShippingMethod)
			}
		}
	})
}

func TestComputeDrawback(t *testing.T) {
	in := electronicsInput()

	result := ComputeDrawback(in, estimator.CostBreakdown{Duties: 1625}, 0.99)
	assert.True(t, result.Eligible)
	assert.Equal(t, 1608.75, result.RefundableAmount)
	assert.Equal(t, 1625.0, result.DutiesPaid)

	result = ComputeDrawback(in, estimator.CostBreakdown{Duties: 0}, 0.99)
	assert.False(t, result.Eligible)
	assert.Zero(t, result.RefundableAmount)
	assert.NotEmpty(t, result.Reason)

	in.DestinationCountry = "cn"
	result = ComputeDrawback(in, estimator.CostBreakdown{Duties: 100}, 0.99)
	assert.False(t, result.Eligible)
}
