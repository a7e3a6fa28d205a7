// Package lookup calls third-party shipping-rate and tariff services.
//
// Every failure (missing configuration, transport error, timeout, non-200 status,
// malformed body) is reported as ErrUpstreamUnavailable so callers can fall back to
// the static rate table. There are no retries.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUpstreamUnavailable is returned for any failed lookup.
var ErrUpstreamUnavailable = errors.New("upstream rate service unavailable")

// ErrNotConfigured is returned when no endpoint was configured for a lookup.
var ErrNotConfigured = fmt.Errorf("%w: not configured", ErrUpstreamUnavailable)

const DefaultTimeout = 5 * time.Second

// RateRequest describes the shipment sent to the shipping-rate API.
type RateRequest struct {
	Origin      string
	Destination string
	HSCode      string
	Method      string  // shipping method the cost is quoted for
	WeightKg    float64 // total actual weight
	LengthCm    float64 // per unit
	WidthCm     float64
	HeightCm    float64
	Value       float64 // total declared value
}

// ShippingRate is the shipping-rate API response.
type ShippingRate struct {
	Cost    float64 `json:"cost"`
	EtaDays int     `json:"etaDays"`
	Carrier string  `json:"carrier,omitempty"`
}

// Tariff is the tariff API response.
type Tariff struct {
	HSCode      string  `json:"hsCode"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	DutyRate    float64 `json:"dutyRate"` // fraction, e.g. 0.065
	Description string  `json:"description,omitempty"`
}

// httpAPI holds what both clients share.
type httpAPI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newHTTPAPI(baseURL, apiKey string, timeout time.Duration) httpAPI {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return httpAPI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (a httpAPI) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if a.baseURL == "" {
		return ErrNotConfigured
	}

	endpoint := a.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s returned status %d", ErrUpstreamUnavailable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

// ShippingClient calls GET {base}/rates.
type ShippingClient struct {
	api httpAPI
}

func NewShippingClient(baseURL, apiKey string, timeout time.Duration) *ShippingClient {
	return &ShippingClient{api: newHTTPAPI(baseURL, apiKey, timeout)}
}

// Rate fetches a shipping quote.
func (c *ShippingClient) Rate(ctx context.Context, r RateRequest) (*ShippingRate, error) {
	q := url.Values{}
	q.Set("origin", r.Origin)
	q.Set("destination", r.Destination)
	q.Set("weight", formatFloat(r.WeightKg))
	q.Set("length", formatFloat(r.LengthCm))
	q.Set("width", formatFloat(r.WidthCm))
	q.Set("height", formatFloat(r.HeightCm))
	q.Set("value", formatFloat(r.Value))
	if r.HSCode != "" {
		q.Set("hsCode", r.HSCode)
	}
	if r.Method != "" {
		q.Set("method", r.Method)
	}

	var rate ShippingRate
	if err := c.api.getJSON(ctx, "/rates", q, &rate); err != nil {
		return nil, err
	}
	if math.IsNaN(rate.Cost) || math.IsInf(rate.Cost, 0) || rate.Cost < 0 {
		return nil, fmt.Errorf("%w: invalid shipping cost %v", ErrUpstreamUnavailable, rate.Cost)
	}
	return &rate, nil
}

// TariffClient calls GET {base}/tariffs/{hsCode}.
type TariffClient struct {
	api httpAPI
}

func NewTariffClient(baseURL, apiKey string, timeout time.Duration) *TariffClient {
	return &TariffClient{api: newHTTPAPI(baseURL, apiKey, timeout)}
}

// Tariff fetches the duty rate for an HS code on a trade lane.
func (c *TariffClient) Tariff(ctx context.Context, hsCode, origin, destination string) (*Tariff, error) {
	if hsCode == "" {
		return nil, fmt.Errorf("%w: hs code is required", ErrUpstreamUnavailable)
	}
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)

	var t Tariff
	if err := c.api.getJSON(ctx, "/tariffs/"+url.PathEscape(hsCode), q, &t); err != nil {
		return nil, err
	}
	if math.IsNaN(t.DutyRate) || t.DutyRate < 0 || t.DutyRate > 1 {
		return nil, fmt.Errorf("%w: invalid duty rate %v", ErrUpstreamUnavailable, t.DutyRate)
	}
	if t.HSCode == "" {
		t.HSCode = hsCode
	}
	if t.Origin == "" {
		t.Origin = origin
	}
	if t.Destination == "" {
		t.Destination = destination
	}
	return &t, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
