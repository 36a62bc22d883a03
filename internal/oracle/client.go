package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"solsniper/internal/observability"
)

// Default endpoints and timeouts.
const (
	DefaultDexscreenerURL = "https://api.dexscreener.com/latest/dex/tokens"
	DefaultJupiterLiteURL = "https://lite-api.jup.ag/tokens/v2/search"
	DefaultTimeout        = 10 * time.Second
)

// Client implements Oracle over Dexscreener with Jupiter Lite fallback.
type Client struct {
	dexscreenerURL string
	jupiterURL     string
	http           *http.Client
	logger         *log.Logger
}

// Options configures Client. Zero values select defaults.
type Options struct {
	DexscreenerURL string
	JupiterLiteURL string
	HTTPClient     *http.Client
	Logger         *log.Logger
}

// NewClient creates a new oracle client.
func NewClient(opts Options) *Client {
	c := &Client{
		dexscreenerURL: opts.DexscreenerURL,
		jupiterURL:     opts.JupiterLiteURL,
		http:           opts.HTTPClient,
		logger:         opts.Logger,
	}
	if c.dexscreenerURL == "" {
		c.dexscreenerURL = DefaultDexscreenerURL
	}
	if c.jupiterURL == "" {
		c.jupiterURL = DefaultJupiterLiteURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// Fetch queries Dexscreener first; on failure or missing liquidity data it
// falls back to Jupiter Lite. A single failed fetch is reported once, not
// retried here.
func (c *Client) Fetch(ctx context.Context, address string) (*TokenQuote, error) {
	start := time.Now()
	quote, dsErr := c.fetchDexscreener(ctx, address)
	observability.RecordOracleFetch("dexscreener", time.Since(start).Seconds(), dsErr)
	if dsErr == nil && quote.LiquidityUsd != nil {
		return quote, nil
	}
	if dsErr != nil {
		c.logger.Printf("[oracle] dexscreener failed for %s: %v", address, dsErr)
	}

	start = time.Now()
	jp, jpErr := c.fetchJupiter(ctx, address)
	observability.RecordOracleFetch("jupiter", time.Since(start).Seconds(), jpErr)
	if jpErr == nil {
		return jp, nil
	}
	c.logger.Printf("[oracle] jupiter lite failed for %s: %v", address, jpErr)

	// Dexscreener answered without liquidity and Jupiter failed: the partial
	// primary answer still beats nothing.
	if dsErr == nil {
		return quote, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnavailable, address)
}

// dexscreenerResponse mirrors the fields we read from the pairs endpoint.
type dexscreenerResponse struct {
	Pairs []struct {
		PriceUsd  json.Number `json:"priceUsd"`
		MarketCap *float64    `json:"marketCap"`
		Liquidity *struct {
			Usd float64 `json:"usd"`
		} `json:"liquidity"`
	} `json:"pairs"`
}

func (c *Client) fetchDexscreener(ctx context.Context, address string) (*TokenQuote, error) {
	var resp dexscreenerResponse
	if err := c.getJSON(ctx, c.dexscreenerURL+"/"+url.PathEscape(address), &resp); err != nil {
		return nil, err
	}
	if len(resp.Pairs) == 0 {
		return nil, fmt.Errorf("no pairs for %s", address)
	}

	first := resp.Pairs[0]
	price, err := first.PriceUsd.Float64()
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("no usable price for %s", address)
	}

	quote := &TokenQuote{
		PriceUsd:     price,
		MarketCapUsd: first.MarketCap,
		Source:       "dexscreener",
	}
	if first.Liquidity != nil {
		liq := first.Liquidity.Usd
		quote.LiquidityUsd = &liq
	}
	return quote, nil
}

// jupiterToken mirrors the fields we read from /tokens/v2/search.
type jupiterToken struct {
	UsdPrice  *float64 `json:"usdPrice"`
	Mcap      *float64 `json:"mcap"`
	Liquidity *float64 `json:"liquidity"`
}

func (c *Client) fetchJupiter(ctx context.Context, address string) (*TokenQuote, error) {
	var tokens []jupiterToken
	if err := c.getJSON(ctx, c.jupiterURL+"?query="+url.QueryEscape(address), &tokens); err != nil {
		return nil, err
	}
	if len(tokens) == 0 || tokens[0].UsdPrice == nil || *tokens[0].UsdPrice <= 0 {
		return nil, fmt.Errorf("no usable price for %s", address)
	}

	t := tokens[0]
	return &TokenQuote{
		PriceUsd:     *t.UsdPrice,
		MarketCapUsd: t.Mcap,
		LiquidityUsd: t.Liquidity,
		Source:       "jupiter",
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	return getJSON(ctx, c.http, rawURL, out)
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Ensure Client implements Oracle.
var _ Oracle = (*Client)(nil)
