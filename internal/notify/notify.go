// Package notify delivers structured trade events to the operator. The
// engine emits one event per executed buy and sell plus alerts for
// conditions that need operator attention.
package notify

import (
	"context"
	"log"

	"solsniper/internal/domain"
)

// Notifier consumes outbound trade events. Implementations must not block
// the trading loop; delivery failures are the notifier's problem.
type Notifier interface {
	// TradeExecuted is emitted once per confirmed buy and once per sell.
	TradeExecuted(ctx context.Context, r *domain.TradeRecord)

	// Alert surfaces a condition that needs operator attention, such as a
	// position failing mid-sell with funds still on chain.
	Alert(ctx context.Context, message string)
}

// LogNotifier writes events to a standard logger.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a notifier backed by logger. A nil logger uses
// log.Default().
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

// TradeExecuted logs the trade leg.
func (n *LogNotifier) TradeExecuted(_ context.Context, r *domain.TradeRecord) {
	n.logger.Printf("[notify] %s %s gross=$%.2f net=$%.2f fee=$%.2f tip=%.3f SOL (%s) tx=%s",
		r.Side, r.Address, r.GrossUsd, r.NetUsd, r.FeeUsd, r.PriorityFeeSol, r.PriorityFeeTier, r.TxID)
}

// Alert logs the alert message.
func (n *LogNotifier) Alert(_ context.Context, message string) {
	n.logger.Printf("[notify] ALERT: %s", message)
}

var _ Notifier = (*LogNotifier)(nil)
