package oracle

import (
	"errors"
	"fmt"
)

// MinPriceUsd is the defensive floor on quoted price. The boundary is
// inclusive: a quote at exactly MinPriceUsd passes.
const MinPriceUsd = 0.0000008

// ErrFilterRejected is returned when a quote fails the defensive filter.
var ErrFilterRejected = errors.New("quote rejected by filter")

// Filter is the caller-side defensive filter policy applied to oracle quotes
// before a candidate is admitted.
type Filter struct {
	// MaxMcapLiqRatio is the ceiling on marketCap/liquidity. Zero disables
	// the ratio check.
	MaxMcapLiqRatio float64
}

// Check validates a quote against the filter policy. A nil error means the
// candidate may proceed to sizing.
func (f Filter) Check(q *TokenQuote) error {
	if q == nil || q.PriceUsd < MinPriceUsd {
		return fmt.Errorf("%w: price %.10f below minimum %.10f", ErrFilterRejected, quotePrice(q), MinPriceUsd)
	}
	if q.Liquidity() == 0 {
		return fmt.Errorf("%w: zero liquidity", ErrFilterRejected)
	}
	if f.MaxMcapLiqRatio > 0 && q.MarketCap()/q.Liquidity() > f.MaxMcapLiqRatio {
		return fmt.Errorf("%w: mcap/liquidity ratio %.2f exceeds ceiling %.2f",
			ErrFilterRejected, q.MarketCap()/q.Liquidity(), f.MaxMcapLiqRatio)
	}
	return nil
}

func quotePrice(q *TokenQuote) float64 {
	if q == nil {
		return 0
	}
	return q.PriceUsd
}
