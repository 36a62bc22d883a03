package oracle

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"solsniper/internal/domain"
)

// DefaultSolPriceURL is the Jupiter Lite price endpoint.
const DefaultSolPriceURL = "https://lite-api.jup.ag/price/v3"

// FallbackSolPriceUsd is used when the live price endpoint is unreachable.
const FallbackSolPriceUsd = 150.0

// solPriceCacheTTL bounds how often the live endpoint is hit.
const solPriceCacheTTL = 30 * time.Second

// SolPriceSource returns the current SOL/USD price.
type SolPriceSource interface {
	SolPriceUsd(ctx context.Context) float64
}

// SolPriceClient fetches the live SOL price with a short cache and a fixed
// fallback when the endpoint fails.
type SolPriceClient struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger

	mu        sync.Mutex
	cached    float64
	fetchedAt time.Time
}

// NewSolPriceClient creates a SOL price client. Zero-value options select
// defaults.
func NewSolPriceClient(baseURL string, httpClient *http.Client, logger *log.Logger) *SolPriceClient {
	if baseURL == "" {
		baseURL = DefaultSolPriceURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SolPriceClient{baseURL: baseURL, http: httpClient, logger: logger}
}

// SolPriceUsd returns the cached or freshly fetched SOL price, falling back
// to FallbackSolPriceUsd on failure.
func (c *SolPriceClient) SolPriceUsd(ctx context.Context) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached > 0 && time.Since(c.fetchedAt) < solPriceCacheTTL {
		return c.cached
	}

	price, err := c.fetch(ctx)
	if err != nil {
		c.logger.Printf("[oracle] sol price fetch failed: %v", err)
		if c.cached > 0 {
			return c.cached
		}
		return FallbackSolPriceUsd
	}

	c.cached = price
	c.fetchedAt = time.Now()
	return price
}

func (c *SolPriceClient) fetch(ctx context.Context) (float64, error) {
	reqURL := c.baseURL + "?ids=" + url.QueryEscape(domain.WSOLMint)

	var resp map[string]struct {
		UsdPrice float64 `json:"usdPrice"`
	}

	if err := getJSON(ctx, c.http, reqURL, &resp); err != nil {
		return 0, err
	}
	entry, ok := resp[domain.WSOLMint]
	if !ok || entry.UsdPrice <= 0 {
		return 0, ErrUnavailable
	}
	return entry.UsdPrice, nil
}

// StaticSolPrice is a fixed-price source for dry-run mode and tests.
type StaticSolPrice float64

// SolPriceUsd implements SolPriceSource.
func (s StaticSolPrice) SolPriceUsd(context.Context) float64 { return float64(s) }
