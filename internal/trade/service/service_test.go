package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/OpenNSW/landedcost/internal/estimator"
	"github.com/OpenNSW/landedcost/internal/events"
	"github.com/OpenNSW/landedcost/internal/rates"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, sqlMock
}

func newTestEstimator(t *testing.T) *estimator.Estimator {
	t.Helper()
	table, err := rates.Default()
	require.NoError(t, err)
	return estimator.New(table)
}

// MockQuoter
type MockQuoter struct {
	mock.Mock
}

func (m *MockQuoter) Quote(ctx context.Context, in estimator.ShipmentInput) *estimator.RateQuote {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*estimator.RateQuote)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e events.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

func ptr[T any](v T) *T { return &v }

func electronicsInput() estimator.ShipmentInput {
	return estimator.ShipmentInput{
		ProductCategory:    "electronics",
		ProductName:        "Bluetooth speaker",
		HSCode:             "8518.22",
		OriginCountry:      "CN",
		DestinationCountry: "DE",
		UnitPrice:          25,
		Quantity:           1000,
		Weight:             0.3,
		Dimensions:         estimator.Dimensions{Length: 20, Width: 15, Height: 8, Unit: "cm"},
		ShippingMethod:     "air",
	}
}
