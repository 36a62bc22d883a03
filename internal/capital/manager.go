// Package capital tracks daily capital allocation, compounding balance and
// cycle counters around the UTC-day boundary.
package capital

import (
	"log"
	"sync"
	"time"

	"solsniper/internal/domain"
)

// Clock abstracts time for deterministic tests.
type Clock func() time.Time

// Manager owns the capital bookkeeping. The compounded balance is mutated
// only via Settle, called from the position manager's CLOSED transition, so
// updates are serialized by the exclusive position guard; the internal mutex
// guards concurrent readers.
type Manager struct {
	mu sync.Mutex

	dailyCapitalUsd  float64
	compoundedUsd    float64
	cycleCount       int
	maxCyclesPerDay  int
	investFraction   float64
	targetMultiplier float64 // 0 disables the target stop
	dayBoundary      time.Time

	now    Clock
	logger *log.Logger
}

// Options configures Manager.
type Options struct {
	DailyCapitalUsd  float64
	MaxCyclesPerDay  int
	InvestFraction   float64 // fraction of compounded balance per cycle
	TargetMultiplier float64 // halt once balance >= daily * multiplier; 0 disables
	Clock            Clock
	Logger           *log.Logger
}

// NewManager creates a capital manager starting a fresh UTC day.
func NewManager(opts Options) *Manager {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	fraction := opts.InvestFraction
	if fraction <= 0 || fraction > 1 {
		fraction = 1.0
	}
	m := &Manager{
		dailyCapitalUsd:  opts.DailyCapitalUsd,
		compoundedUsd:    opts.DailyCapitalUsd,
		maxCyclesPerDay:  opts.MaxCyclesPerDay,
		investFraction:   fraction,
		targetMultiplier: opts.TargetMultiplier,
		now:              now,
		logger:           logger,
	}
	m.dayBoundary = utcDayStart(now())
	return m
}

// utcDayStart truncates t to the start of its UTC day.
func utcDayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// rollover applies the UTC-midnight reset: compounded balance returns to the
// configured daily capital and the cycle count clears. Prior compounding is
// discarded, not rolled over. Caller holds the mutex.
func (m *Manager) rollover() {
	today := utcDayStart(m.now())
	if !today.After(m.dayBoundary) {
		return
	}
	m.logger.Printf("[capital] UTC day boundary crossed: balance %.2f -> %.2f, cycles %d -> 0",
		m.compoundedUsd, m.dailyCapitalUsd, m.cycleCount)
	m.compoundedUsd = m.dailyCapitalUsd
	m.cycleCount = 0
	m.dayBoundary = today
}

// NextInvestment returns the USD amount for the next buy cycle: the
// configured fraction of the current compounded balance. It returns false
// when no further admissions are allowed today (cycle cap or target stop).
func (m *Manager) NextInvestment() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()

	if m.maxCyclesPerDay > 0 && m.cycleCount >= m.maxCyclesPerDay {
		return 0, false
	}
	if m.targetReachedLocked() {
		return 0, false
	}
	if m.compoundedUsd <= 0 {
		return 0, false
	}
	return m.compoundedUsd * m.investFraction, true
}

// Settle applies a closed position's realized net P&L to the compounded
// balance and consumes one cycle.
func (m *Manager) Settle(netPnlUsd float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()

	m.compoundedUsd += netPnlUsd
	if m.compoundedUsd < 0 {
		m.compoundedUsd = 0
	}
	m.cycleCount++
	m.logger.Printf("[capital] settled pnl %+.2f: balance=%.2f cycle=%d/%d",
		netPnlUsd, m.compoundedUsd, m.cycleCount, m.maxCyclesPerDay)

	if m.targetReachedLocked() {
		m.logger.Printf("[capital] target multiplier %.2fx reached (balance %.2f); halting new admissions",
			m.targetMultiplier, m.compoundedUsd)
	}
}

// targetReachedLocked reports the optional target-multiplier stop.
func (m *Manager) targetReachedLocked() bool {
	return m.targetMultiplier > 0 &&
		m.compoundedUsd >= m.dailyCapitalUsd*m.targetMultiplier
}

// TargetReached reports whether the target-multiplier stop has fired.
func (m *Manager) TargetReached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	return m.targetReachedLocked()
}

// State returns a snapshot for reporting.
func (m *Manager) State() domain.CapitalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	return domain.CapitalState{
		DailyCapitalUsd:      m.dailyCapitalUsd,
		CompoundedBalanceUsd: m.compoundedUsd,
		CycleCount:           m.cycleCount,
		MaxCyclesPerDay:      m.maxCyclesPerDay,
		DayBoundaryUtc:       m.dayBoundary,
	}
}

// Restore overrides the compounded balance and cycle count, used when
// resuming a persisted session within the same UTC day.
func (m *Manager) Restore(balanceUsd float64, cycles int, asOf time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if utcDayStart(asOf) != utcDayStart(m.now()) {
		return // stale snapshot from a previous day; the reset policy wins
	}
	m.compoundedUsd = balanceUsd
	m.cycleCount = cycles
}
