package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OpenNSW/landedcost/internal/estimator"
)

// ShippingSource supplies shipping quotes.
type ShippingSource interface {
	Rate(ctx context.Context, r RateRequest) (*ShippingRate, error)
}

// TariffSource supplies duty rates.
type TariffSource interface {
	Tariff(ctx context.Context, hsCode, origin, destination string) (*Tariff, error)
}

// Cache stores JSON-encodable values under a key with a TTL.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedTariffSource is a read-through cache in front of a TariffSource.
// Only successful lookups are cached; cache errors are logged and ignored.
type CachedTariffSource struct {
	next  TariffSource
	cache Cache
	ttl   time.Duration
}

func NewCachedTariffSource(next TariffSource, cache Cache, ttl time.Duration) *CachedTariffSource {
	return &CachedTariffSource{next: next, cache: cache, ttl: ttl}
}

func (c *CachedTariffSource) Tariff(ctx context.Context, hsCode, origin, destination string) (*Tariff, error) {
	key := TariffCacheKey(hsCode, origin, destination)

	var cached Tariff
	hit, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.WarnContext(ctx, "tariff cache read failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	t, err := c.next.Tariff(ctx, hsCode, origin, destination)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, t, c.ttl); err != nil {
		slog.WarnContext(ctx, "tariff cache write failed", "key", key, "error", err)
	}
	return t, nil
}

// TariffCacheKey is tariff:{hs}:{origin}:{destination} with normalized parts.
func TariffCacheKey(hsCode, origin, destination string) string {
	return fmt.Sprintf("tariff:%s:%s:%s",
		strings.ReplaceAll(strings.TrimSpace(hsCode), ".", ""),
		strings.ToUpper(strings.TrimSpace(origin)),
		strings.ToUpper(strings.TrimSpace(destination)),
	)
}

// Quoter assembles a RateQuote from the shipping and tariff sources.
type Quoter struct {
	shipping ShippingSource
	tariffs  TariffSource
}

func NewQuoter(shipping ShippingSource, tariffs TariffSource) *Quoter {
	return &Quoter{shipping: shipping, tariffs: tariffs}
}

// Quote runs both lookups concurrently. Each failed lookup leaves its field nil so
// the estimator falls back to the rate table. Returns nil when both lookups failed.
func (q *Quoter) Quote(ctx context.Context, in estimator.ShipmentInput) *estimator.RateQuote {
	var (
		g      errgroup.Group
		rate   *ShippingRate
		tariff *Tariff
	)

	if q.shipping != nil {
		g.Go(func() error {
			r, err := q.shipping.Rate(ctx, rateRequestFor(in))
			if err != nil {
				logLookupFailure(ctx, "shipping", err)
				return nil
			}
			rate = r
			return nil
		})
	}
	if q.tariffs != nil && in.HSCode != "" {
		g.Go(func() error {
			t, err := q.tariffs.Tariff(ctx, in.HSCode, in.OriginCountry, in.DestinationCountry)
			if err != nil {
				logLookupFailure(ctx, "tariff", err)
				return nil
			}
			tariff = t
			return nil
		})
	}
	_ = g.Wait()

	if rate == nil && tariff == nil {
		return nil
	}

	quote := &estimator.RateQuote{Source: "live"}
	if rate != nil {
		cost := rate.Cost
		quote.ShippingCost = &cost
		quote.EstimatedDeliveryDays = rate.EtaDays
		quote.Carrier = rate.Carrier
	}
	if tariff != nil {
		duty := tariff.DutyRate
		quote.DutyRate = &duty
	}
	return quote
}

// rateRequestFor assumes in has passed estimator validation.
func rateRequestFor(in estimator.ShipmentInput) RateRequest {
	dims, _ := in.Dimensions.InCentimeters()
	return RateRequest{
		Origin:      in.OriginCountry,
		Destination: in.DestinationCountry,
		HSCode:      in.HSCode,
		Method:      strings.ToLower(strings.TrimSpace(in.ShippingMethod)),
		WeightKg:    in.Weight * float64(in.Quantity),
		LengthCm:    dims.Length,
		WidthCm:     dims.Width,
		HeightCm:    dims.Height,
		Value:       in.TotalValue(),
	}
}

func logLookupFailure(ctx context.Context, lookup string, err error) {
	if errors.Is(err, ErrNotConfigured) {
		slog.DebugContext(ctx, "rate lookup skipped, falling back to rate table", "lookup", lookup)
		return
	}
	slog.WarnContext(ctx, "rate lookup failed, falling back to rate table", "lookup", lookup, "error", err)
}
