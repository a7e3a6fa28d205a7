package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/OpenNSW/landedcost/internal/estimator"
	"github.com/OpenNSW/landedcost/internal/lookup"
)

// TariffService exposes the tariff lookup directly. Unlike estimates it has no fallback,
// so upstream failures reach the caller.
type TariffService struct {
	source lookup.TariffSource
}

func NewTariffService(source lookup.TariffSource) *TariffService {
	return &TariffService{source: source}
}

func (s *TariffService) Lookup(ctx context.Context, hsCode, origin, destination string) (*lookup.Tariff, error) {
	ve := &estimator.ValidationError{}
	if strings.TrimSpace(hsCode) == "" {
		ve.Add("hsCode", "is required")
	}
	if strings.TrimSpace(origin) == "" {
		ve.Add("origin", "is required")
	}
	if strings.TrimSpace(destination) == "" {
		ve.Add("destination", "is required")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	tariff, err := s.source.Tariff(ctx, hsCode, strings.ToUpper(origin), strings.ToUpper(destination))
	if err != nil {
		return nil, fmt.Errorf("tariff lookup for %s failed: %w", hsCode, err)
	}
	return tariff, nil
}
