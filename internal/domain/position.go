package domain

import "time"

// Status represents the lifecycle state of a Position.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusOpen       Status = "OPEN"
	StatusMonitoring Status = "MONITORING"
	StatusClosing    Status = "CLOSING"
	StatusClosed     Status = "CLOSED"
	StatusFailed     Status = "FAILED"
)

// String returns the string representation of Status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is a valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusOpen, StatusMonitoring, StatusClosing, StatusClosed, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusFailed
}

// Active reports whether a position in this status holds the exclusive
// position guard. At most one position may be active system-wide.
func (s Status) Active() bool {
	return s == StatusOpen || s == StatusMonitoring || s == StatusClosing
}

// Side identifies the direction of a trade leg.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// String returns the string representation of Side.
func (s Side) String() string {
	return string(s)
}

// Exit reason codes reported on close.
const (
	ExitReasonTakeProfit  = "TAKE_PROFIT"
	ExitReasonStopLoss    = "STOP_LOSS"
	ExitReasonManual      = "MANUAL"
	ExitReasonInterrupted = "INTERRUPTED"
)

// Position represents one token trade in flight or completed.
type Position struct {
	Address string // token mint address (base58)
	Status  Status

	// Entry snapshot, captured when the buy confirms.
	EntryPriceUsd     float64
	EntryMarketCapUsd float64

	// Actual on-chain holding, fetched fresh before any sell.
	TokenAmountRaw uint64
	TokenDecimals  uint8

	// Accounting split. The fee is applied exactly once per side.
	InvestedUsdGross float64
	InvestedUsdNet   float64
	FeeUsd           float64

	// Priority tip paid on the buy leg.
	PriorityFeeSol  float64
	PriorityFeeTier string // "normal" | "congestion"

	BuyTxID  string
	SellTxID string

	ExitReason string

	OpenedAt time.Time
	ClosedAt time.Time
}
