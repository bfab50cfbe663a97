package coupon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-klin/internal/pricing"
	"github.com/noah-isme/backend-klin/internal/resilience"
)

// HTTPDirectory talks to the external coupon directory over HTTP. The
// directory is untrusted and possibly slow; calls are wrapped with a timeout,
// retries and a circuit breaker, and degrade to ErrUnavailable.
type HTTPDirectory struct {
	BaseURL string
	Client  resilience.HTTPClient
}

// NewHTTPDirectory builds a directory client with sane resilience defaults.
func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPDirectory{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: resilience.HTTPClient{
			Client:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
			Breaker:     resilience.NewBreaker(5, 0.5, 15*time.Second).WithTarget("coupon_directory"),
			MaxAttempts: 2,
			BaseBackoff: 100 * time.Millisecond,
			Jitter:      0.2,
			Timeout:     timeout,
		},
	}
}

type directoryResponse struct {
	Valid              bool          `json:"valid"`
	DiscountPercentage float64       `json:"discountPercentage"`
	AmountOff          pricing.Money `json:"amountOff"`
	Reason             string        `json:"reason"`
}

// Validate consults the directory for the given code.
func (d *HTTPDirectory) Validate(ctx context.Context, code string) (Validation, error) {
	if d == nil || d.BaseURL == "" {
		return Validation{}, fmt.Errorf("coupon directory not configured: %w", ErrUnavailable)
	}
	endpoint := d.BaseURL + "/coupons/" + url.PathEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Validation{}, fmt.Errorf("build directory request: %w", err)
	}
	resp, err := d.Client.Do(ctx, req)
	if err != nil {
		return Validation{}, fmt.Errorf("coupon directory: %v: %w", err, ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Validation{Valid: false, Reason: "unknown code"}, nil
	case resp.StatusCode != http.StatusOK:
		return Validation{}, fmt.Errorf("coupon directory status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var body directoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Validation{}, fmt.Errorf("decode directory response: %v: %w", err, ErrUnavailable)
	}
	return Validation{
		Valid:      body.Valid,
		PercentBps: int32(body.DiscountPercentage * 100),
		AmountOff:  body.AmountOff,
		Reason:     body.Reason,
	}, nil
}

// StaticDirectory serves a fixed code table. Used in tests and local runs
// where no external directory is configured.
type StaticDirectory map[string]Validation

// Validate looks the code up in the static table.
func (s StaticDirectory) Validate(_ context.Context, code string) (Validation, error) {
	v, ok := s[code]
	if !ok {
		return Validation{Valid: false, Reason: "unknown code"}, nil
	}
	return v, nil
}
