package domain

import "time"

// TradeRecord is an immutable finalized snapshot of one trade leg, appended
// to the external log. Field names match the persisted JSON contract; a
// record is never mutated after creation.
type TradeRecord struct {
	Address         string    `json:"address"`
	Side            Side      `json:"side"`
	PriceUsd        float64   `json:"priceUsd"`
	MarketCapUsd    float64   `json:"marketCapUsd"`
	GrossUsd        float64   `json:"grossUsd"`
	NetUsd          float64   `json:"netUsd"`
	FeeUsd          float64   `json:"feeUsd"`
	PriorityFeeSol  float64   `json:"priorityFeeSol"`
	PriorityFeeTier string    `json:"priorityFeeTier"`
	TxID            string    `json:"txId"`
	TimestampUtc    time.Time `json:"timestampUtc"`
}

// BuyRecord builds the buy-side record for a position.
func BuyRecord(p *Position, now time.Time) *TradeRecord {
	return &TradeRecord{
		Address:         p.Address,
		Side:            SideBuy,
		PriceUsd:        p.EntryPriceUsd,
		MarketCapUsd:    p.EntryMarketCapUsd,
		GrossUsd:        p.InvestedUsdGross,
		NetUsd:          p.InvestedUsdNet,
		FeeUsd:          p.FeeUsd,
		PriorityFeeSol:  p.PriorityFeeSol,
		PriorityFeeTier: p.PriorityFeeTier,
		TxID:            p.BuyTxID,
		TimestampUtc:    now.UTC(),
	}
}
