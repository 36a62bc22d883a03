// Package oracle fetches token price, market cap and liquidity with a
// primary/fallback source chain: Dexscreener first, Jupiter Lite second.
package oracle

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when every price source failed for an address.
// The oracle does not retry internally; the caller decides to skip or retry.
var ErrUnavailable = errors.New("price oracle: all sources unavailable")

// TokenQuote is one oracle observation for a token address. MarketCapUsd and
// LiquidityUsd are nil when the serving source did not provide them.
type TokenQuote struct {
	PriceUsd     float64
	MarketCapUsd *float64
	LiquidityUsd *float64
	Source       string
}

// MarketCap returns the market cap or 0 when absent.
func (q *TokenQuote) MarketCap() float64 {
	if q.MarketCapUsd == nil {
		return 0
	}
	return *q.MarketCapUsd
}

// Liquidity returns the liquidity or 0 when absent.
func (q *TokenQuote) Liquidity() float64 {
	if q.LiquidityUsd == nil {
		return 0
	}
	return *q.LiquidityUsd
}

// Oracle fetches a quote for a token address.
type Oracle interface {
	Fetch(ctx context.Context, address string) (*TokenQuote, error)
}
