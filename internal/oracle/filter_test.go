package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func quote(price, mcap, liq float64) *TokenQuote {
	return &TokenQuote{PriceUsd: price, MarketCapUsd: &mcap, LiquidityUsd: &liq}
}

func TestFilter_PriceBoundary(t *testing.T) {
	f := Filter{MaxMcapLiqRatio: 10}

	// 0.0000007 rejected, 0.0000008 accepted: minimum is inclusive.
	assert.ErrorIs(t, f.Check(quote(0.0000007, 50000, 10000)), ErrFilterRejected)
	assert.NoError(t, f.Check(quote(0.0000008, 50000, 10000)))
}

func TestFilter_ZeroLiquidity(t *testing.T) {
	f := Filter{MaxMcapLiqRatio: 10}
	assert.ErrorIs(t, f.Check(quote(0.01, 50000, 0)), ErrFilterRejected)

	noLiq := &TokenQuote{PriceUsd: 0.01}
	assert.ErrorIs(t, f.Check(noLiq), ErrFilterRejected)
}

func TestFilter_McapLiquidityRatio(t *testing.T) {
	f := Filter{MaxMcapLiqRatio: 10}

	// ratio 5: under ceiling
	assert.NoError(t, f.Check(quote(0.01, 50000, 10000)))
	// ratio 20: over ceiling
	assert.ErrorIs(t, f.Check(quote(0.01, 200000, 10000)), ErrFilterRejected)
}

func TestFilter_RatioDisabledWhenZero(t *testing.T) {
	f := Filter{}
	assert.NoError(t, f.Check(quote(0.01, 1000000, 1)))
}

func TestFilter_NilQuote(t *testing.T) {
	f := Filter{}
	assert.ErrorIs(t, f.Check(nil), ErrFilterRejected)
}
