// Package position owns the trade lifecycle state machine: intake, open,
// monitor, close. It enforces the single-active-position invariant through
// an exclusive guard held from the buy submission until a terminal state.
package position

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"solsniper/internal/capital"
	"solsniper/internal/domain"
	"solsniper/internal/fees"
	"solsniper/internal/jupiter"
	"solsniper/internal/notify"
	"solsniper/internal/observability"
	"solsniper/internal/oracle"
	"solsniper/internal/records"
	solrpc "solsniper/internal/solana"
)

// ErrPositionActive is returned when a candidate arrives while another
// position holds the exclusive guard.
var ErrPositionActive = errors.New("another position is active")

// ErrCapitalExhausted is returned when the capital manager refuses a new
// cycle (cycle cap, target stop, or zero balance).
var ErrCapitalExhausted = errors.New("no capital available for a new cycle")

// BalanceSource provides wallet balance lookups. Nil in simulation mode,
// where holdings are estimated from the entry quote instead of fetched.
type BalanceSource interface {
	// TokenBalance returns the actual on-chain holding for a mint.
	TokenBalance(ctx context.Context, mint string) (*solrpc.TokenBalance, error)

	// EnsureFunds verifies the wallet covers the trade plus the tip.
	EnsureFunds(ctx context.Context, lamports, tipLamports uint64) error
}

// Options configures Manager. Oracle, Capital, Builder and Executor are
// required; the rest default to inert implementations.
type Options struct {
	Oracle   oracle.Oracle
	Filter   oracle.Filter
	Capital  *capital.Manager
	Builder  *jupiter.OrderBuilder
	Executor jupiter.Executor
	Balances BalanceSource // nil enables the simulation estimate path
	SolPrice oracle.SolPriceSource

	Congestion fees.CongestionDetector
	Records    records.TradeRecordStore
	Notifier   notify.Notifier

	BuyFeePercent  float64
	SellFeePercent float64

	// CongestionTipSol is the tip used under congestion, clamped to the
	// congestion band by the fee calculator.
	CongestionTipSol float64

	// TakeProfitMultiple triggers the sell once current mcap reaches this
	// multiple of the entry mcap. StopLossMultiple is optional; zero
	// disables the stop-loss leg.
	TakeProfitMultiple float64
	StopLossMultiple   float64

	// PollInterval is the monitor loop's sleep between oracle fetches.
	PollInterval time.Duration

	Clock  capital.Clock
	Logger *log.Logger
}

// Manager drives candidates through the position state machine. Handle runs
// one full lifecycle synchronously; the intake consumer loop calls it for
// one candidate at a time.
type Manager struct {
	opts Options

	// guard is the exclusive single-active-position lock, acquired before
	// PENDING→OPEN and released only on reaching a terminal state.
	guard sync.Mutex

	mu     sync.Mutex
	active *domain.Position

	logger *log.Logger
	now    capital.Clock
}

// NewManager creates a position manager.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewLogNotifier(opts.Logger)
	}
	if opts.SolPrice == nil {
		opts.SolPrice = oracle.StaticSolPrice(oracle.FallbackSolPriceUsd)
	}
	if opts.Congestion == nil {
		opts.Congestion = fees.StaticDetector(false)
	}
	if opts.CongestionTipSol == 0 {
		opts.CongestionTipSol = fees.CongestionTipMin
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	return &Manager{
		opts:   opts,
		logger: opts.Logger,
		now:    opts.Clock,
	}
}

// Active returns a snapshot of the position currently holding the guard,
// or nil.
func (m *Manager) Active() *domain.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	copied := *m.active
	return &copied
}

// Handle drives one candidate through the full lifecycle: validation,
// sizing, buy, monitoring, and sell. It returns the terminal position, or
// nil with a typed error when the candidate was skipped before any buy.
func (m *Manager) Handle(ctx context.Context, address string) (*domain.Position, error) {
	quote, err := m.opts.Oracle.Fetch(ctx, address)
	if err != nil {
		observability.RecordCandidateSkipped("oracle_unavailable")
		return nil, err
	}
	if err := m.opts.Filter.Check(quote); err != nil {
		observability.RecordCandidateSkipped("filter_rejected")
		return nil, err
	}

	grossUsd, ok := m.opts.Capital.NextInvestment()
	if !ok {
		observability.RecordCandidateSkipped("capital_exhausted")
		return nil, ErrCapitalExhausted
	}

	if !m.guard.TryLock() {
		observability.RecordCandidateSkipped("position_active")
		return nil, ErrPositionActive
	}

	pos := &domain.Position{
		Address:           address,
		Status:            domain.StatusPending,
		EntryPriceUsd:     quote.PriceUsd,
		EntryMarketCapUsd: quote.MarketCap(),
	}
	m.setActive(pos)

	// From here the guard is held; every path below must reach a terminal
	// state before returning.
	defer m.release(pos)

	if err := m.open(ctx, pos, grossUsd); err != nil {
		return pos, err
	}
	m.monitor(ctx, pos)
	if pos.Status.Terminal() {
		return pos, nil
	}
	if err := m.close(ctx, pos); err != nil {
		return pos, err
	}
	return pos, nil
}

func (m *Manager) setActive(p *domain.Position) {
	m.mu.Lock()
	m.active = p
	m.mu.Unlock()
	observability.SetPositionActive(true)
}

func (m *Manager) release(p *domain.Position) {
	if !p.Status.Terminal() {
		// Unreachable terminal state means an escaped error path; fail the
		// position rather than leaving the guard held.
		m.fail(p, "lifecycle", fmt.Errorf("position left in %s", p.Status))
	}
	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()
	observability.SetPositionActive(false)
	m.guard.Unlock()
}

// open executes the buy leg: PENDING → OPEN, or PENDING → FAILED.
func (m *Manager) open(ctx context.Context, pos *domain.Position, grossUsd float64) error {
	netUsd, feeUsd := fees.ApplyFee(grossUsd, m.opts.BuyFeePercent)
	tier, tipSol := fees.PriorityFee(m.opts.Congestion.Congested(), m.opts.CongestionTipSol)

	solPrice := m.opts.SolPrice.SolPriceUsd(ctx)
	lamports := usdToLamports(netUsd, solPrice)
	tipLamports := uint64(math.Round(tipSol * domain.LamportsPerSol))

	if m.opts.Balances != nil {
		if err := m.opts.Balances.EnsureFunds(ctx, lamports, tipLamports); err != nil {
			observability.RecordCandidateSkipped("insufficient_balance")
			pos.Status = domain.StatusFailed
			pos.ClosedAt = m.now().UTC()
			m.logger.Printf("[position] skip %s: %v", pos.Address, err)
			return err
		}
	}

	req, err := m.opts.Builder.BuildBuy(pos.Address, lamports, netUsd)
	if err != nil {
		m.fail(pos, "build_buy", err)
		return err
	}

	res, err := m.opts.Executor.Execute(ctx, req)
	if err != nil {
		m.fail(pos, "buy", err)
		return err
	}

	now := m.now().UTC()
	pos.Status = domain.StatusOpen
	pos.InvestedUsdGross = grossUsd
	pos.InvestedUsdNet = netUsd
	pos.FeeUsd = feeUsd
	pos.PriorityFeeSol = tipSol
	pos.PriorityFeeTier = tier
	pos.BuyTxID = res.TxID
	pos.OpenedAt = now

	m.logger.Printf("[position] OPEN %s: invested $%.2f gross / $%.2f net at price %.10f mcap %.0f tx=%s",
		pos.Address, grossUsd, netUsd, pos.EntryPriceUsd, pos.EntryMarketCapUsd, res.TxID)

	record := domain.BuyRecord(pos, now)
	m.persist(ctx, record)
	m.opts.Notifier.TradeExecuted(ctx, record)
	observability.RecordTradeExecuted(string(domain.SideBuy), feeUsd, tipSol, tier)

	pos.Status = domain.StatusMonitoring
	return nil
}

// monitor polls the oracle until an exit condition fires or the context is
// cancelled. It transitions MONITORING → CLOSING, or MONITORING → FAILED on
// cancellation.
func (m *Manager) monitor(ctx context.Context, pos *domain.Position) {
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			pos.ExitReason = domain.ExitReasonInterrupted
			m.fail(pos, "monitor_interrupted", ctx.Err())
			m.opts.Notifier.Alert(ctx, fmt.Sprintf(
				"monitoring of %s interrupted by shutdown; tokens remain in wallet (buy tx %s)",
				pos.Address, pos.BuyTxID))
			return
		case <-ticker.C:
		}

		quote, err := m.opts.Oracle.Fetch(ctx, pos.Address)
		if err != nil {
			m.logger.Printf("[position] monitor %s: oracle fetch failed: %v", pos.Address, err)
			continue
		}

		ratio := exitRatio(pos, quote)
		switch {
		case ratio >= m.opts.TakeProfitMultiple:
			pos.ExitReason = domain.ExitReasonTakeProfit
		case m.opts.StopLossMultiple > 0 && ratio <= m.opts.StopLossMultiple:
			pos.ExitReason = domain.ExitReasonStopLoss
		default:
			continue
		}

		m.logger.Printf("[position] exit trigger %s on %s: ratio %.3f (tp %.2f sl %.2f)",
			pos.ExitReason, pos.Address, ratio, m.opts.TakeProfitMultiple, m.opts.StopLossMultiple)
		pos.Status = domain.StatusClosing
		return
	}
}

// exitRatio computes current value relative to entry, preferring market cap
// and falling back to price when the quote source lacks mcap.
func exitRatio(pos *domain.Position, quote *oracle.TokenQuote) float64 {
	if pos.EntryMarketCapUsd > 0 && quote.MarketCap() > 0 {
		return quote.MarketCap() / pos.EntryMarketCapUsd
	}
	if pos.EntryPriceUsd > 0 {
		return quote.PriceUsd / pos.EntryPriceUsd
	}
	return 0
}

// close executes the sell leg: CLOSING → CLOSED, or CLOSING → FAILED. Both
// take-profit and stop-loss exits share this path.
func (m *Manager) close(ctx context.Context, pos *domain.Position) error {
	quote, err := m.opts.Oracle.Fetch(ctx, pos.Address)
	if err != nil {
		// Sell at the last known entry-relative estimate rather than abort;
		// the position must still liquidate.
		m.logger.Printf("[position] close %s: oracle fetch failed, using entry quote: %v", pos.Address, err)
		quote = &oracle.TokenQuote{PriceUsd: pos.EntryPriceUsd}
	}

	amountRaw, tokensUI, err := m.holdingForSell(ctx, pos)
	if err != nil {
		m.fail(pos, "sell_balance", err)
		m.opts.Notifier.Alert(ctx, fmt.Sprintf(
			"could not fetch balance of %s before sell: %v; tokens remain in wallet", pos.Address, err))
		return err
	}
	if amountRaw == 0 {
		err := fmt.Errorf("no on-chain balance of %s to sell", pos.Address)
		m.fail(pos, "sell_balance", err)
		return err
	}

	sellGrossUsd := tokensUI * quote.PriceUsd
	sellNetUsd, sellFeeUsd := fees.ApplyFee(sellGrossUsd, m.opts.SellFeePercent)

	req, err := m.opts.Builder.BuildSell(pos.Address, amountRaw, sellNetUsd)
	if err != nil {
		m.fail(pos, "build_sell", err)
		m.opts.Notifier.Alert(ctx, fmt.Sprintf(
			"sell of %s could not be built: %v; tokens remain in wallet", pos.Address, err))
		return err
	}

	res, err := m.opts.Executor.Execute(ctx, req)
	if err != nil {
		m.fail(pos, "sell", err)
		m.opts.Notifier.Alert(ctx, fmt.Sprintf(
			"sell of %s failed after retries: %v; invested $%.2f is at risk", pos.Address, err, pos.InvestedUsdNet))
		return err
	}

	now := m.now().UTC()
	pos.Status = domain.StatusClosed
	pos.SellTxID = res.TxID
	pos.ClosedAt = now

	pnl := sellNetUsd - pos.InvestedUsdNet
	m.opts.Capital.Settle(pnl)
	state := m.opts.Capital.State()
	observability.UpdateCapital(state.CompoundedBalanceUsd, state.CycleCount)
	observability.RecordPnl(pnl)

	m.logger.Printf("[position] CLOSED %s (%s): sold $%.2f gross / $%.2f net, pnl %+.2f, tx=%s",
		pos.Address, pos.ExitReason, sellGrossUsd, sellNetUsd, pnl, res.TxID)

	record := &domain.TradeRecord{
		Address:         pos.Address,
		Side:            domain.SideSell,
		PriceUsd:        quote.PriceUsd,
		MarketCapUsd:    quote.MarketCap(),
		GrossUsd:        sellGrossUsd,
		NetUsd:          sellNetUsd,
		FeeUsd:          sellFeeUsd,
		PriorityFeeSol:  pos.PriorityFeeSol,
		PriorityFeeTier: pos.PriorityFeeTier,
		TxID:            res.TxID,
		TimestampUtc:    now,
	}
	m.persist(ctx, record)
	m.opts.Notifier.TradeExecuted(ctx, record)
	observability.RecordTradeExecuted(string(domain.SideSell), sellFeeUsd, 0, pos.PriorityFeeTier)
	return nil
}

// holdingForSell returns the quantity to liquidate. With a live balance
// source the true on-chain holding is fetched, never the buy-side estimate;
// in simulation mode the estimate from the entry quote is all there is.
func (m *Manager) holdingForSell(ctx context.Context, pos *domain.Position) (uint64, float64, error) {
	if m.opts.Balances != nil {
		bal, err := m.opts.Balances.TokenBalance(ctx, pos.Address)
		if err != nil {
			return 0, 0, err
		}
		pos.TokenAmountRaw = bal.AmountRaw
		pos.TokenDecimals = bal.Decimals
		return bal.AmountRaw, bal.UIAmount, nil
	}

	if pos.EntryPriceUsd <= 0 {
		return 0, 0, fmt.Errorf("cannot estimate holding of %s without entry price", pos.Address)
	}
	const simDecimals = 6
	tokensUI := pos.InvestedUsdNet / pos.EntryPriceUsd
	raw := uint64(math.Round(tokensUI * math.Pow10(simDecimals)))
	pos.TokenAmountRaw = raw
	pos.TokenDecimals = simDecimals
	return raw, tokensUI, nil
}

func (m *Manager) fail(pos *domain.Position, stage string, err error) {
	pos.Status = domain.StatusFailed
	pos.ClosedAt = m.now().UTC()
	if pos.BuyTxID != "" {
		// The buy already spent the invested amount and no sell brought it
		// back; the balance must reflect the realized loss.
		m.opts.Capital.Settle(-pos.InvestedUsdNet)
		state := m.opts.Capital.State()
		observability.UpdateCapital(state.CompoundedBalanceUsd, state.CycleCount)
		observability.RecordPnl(-pos.InvestedUsdNet)
	}
	observability.RecordTradeFailure(stage)
	m.logger.Printf("[position] FAILED %s at %s: %v", pos.Address, stage, err)
}

// persist appends the record to the external log. A write failure never
// rolls back the executed trade; it is logged for the operator.
func (m *Manager) persist(ctx context.Context, r *domain.TradeRecord) {
	if m.opts.Records == nil {
		return
	}
	if err := m.opts.Records.Append(ctx, r); err != nil {
		m.logger.Printf("[position] record write failed for %s %s: %v", r.Side, r.Address, err)
	}
}

func usdToLamports(usd, solPriceUsd float64) uint64 {
	if solPriceUsd <= 0 {
		return 0
	}
	return uint64(math.Round(usd / solPriceUsd * domain.LamportsPerSol))
}
