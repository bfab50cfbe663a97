// Package tax resolves the tax rate for a service address. Jurisdiction rules
// live in an external resolver; the summary builder only ever sees a rate in
// basis points.
package tax

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-klin/internal/resilience"
)

// Resolver supplies the tax rate for a service address.
type Resolver interface {
	RateBps(ctx context.Context, address, postalCode string) (int, error)
}

// Static always returns the configured rate. Used when no external resolver
// is wired, and as the fallback rate when the external one fails.
type Static struct {
	Bps int
}

// RateBps returns the fixed rate.
func (s Static) RateBps(context.Context, string, string) (int, error) {
	return s.Bps, nil
}

// HTTP queries an external jurisdiction resolver.
type HTTP struct {
	BaseURL string
	Client  resilience.HTTPClient
}

// NewHTTP builds a resolver client with resilience defaults.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTP{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: resilience.HTTPClient{
			Client:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
			Breaker:     resilience.NewBreaker(5, 0.5, 15*time.Second).WithTarget("tax_resolver"),
			MaxAttempts: 2,
			BaseBackoff: 100 * time.Millisecond,
			Jitter:      0.2,
			Timeout:     timeout,
		},
	}
}

// RateBps fetches the rate for the given location.
func (h *HTTP) RateBps(ctx context.Context, address, postalCode string) (int, error) {
	if h == nil || h.BaseURL == "" {
		return 0, fmt.Errorf("tax resolver not configured")
	}
	endpoint := h.BaseURL + "/rates?postal=" + url.QueryEscape(postalCode) + "&address=" + url.QueryEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build tax request: %w", err)
	}
	resp, err := h.Client.Do(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("tax resolver: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("tax resolver status %d", resp.StatusCode)
	}
	var body struct {
		TaxRateBps int `json:"taxRateBps"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode tax response: %w", err)
	}
	if body.TaxRateBps < 0 {
		return 0, fmt.Errorf("tax resolver returned negative rate %d", body.TaxRateBps)
	}
	return body.TaxRateBps, nil
}
