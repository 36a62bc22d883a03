package capital

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newManager(clock *fakeClock, opts Options) *Manager {
	opts.Clock = clock.Now
	return NewManager(opts)
}

func TestManager_CompoundsAfterSettle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	m := newManager(clock, Options{DailyCapitalUsd: 100, MaxCyclesPerDay: 5})

	amount, ok := m.NextInvestment()
	require.True(t, ok)
	assert.Equal(t, 100.0, amount)

	m.Settle(25.5)
	amount, ok = m.NextInvestment()
	require.True(t, ok)
	assert.InDelta(t, 125.5, amount, 1e-9)
}

func TestManager_InvestFraction(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	m := newManager(clock, Options{DailyCapitalUsd: 200, InvestFraction: 0.5})

	amount, ok := m.NextInvestment()
	require.True(t, ok)
	assert.Equal(t, 100.0, amount)
}

func TestManager_UTCMidnightReset(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC)}
	m := newManager(clock, Options{DailyCapitalUsd: 100, MaxCyclesPerDay: 5})

	m.Settle(80) // balance 180 just before midnight
	assert.InDelta(t, 180.0, m.State().CompoundedBalanceUsd, 1e-9)
	assert.Equal(t, 1, m.State().CycleCount)

	// Crossing 00:00:00 UTC discards compounding entirely.
	clock.t = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	state := m.State()
	assert.Equal(t, 100.0, state.CompoundedBalanceUsd)
	assert.Equal(t, 0, state.CycleCount)
}

func TestManager_CycleCap(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	m := newManager(clock, Options{DailyCapitalUsd: 100, MaxCyclesPerDay: 2})

	m.Settle(0)
	m.Settle(0)

	_, ok := m.NextInvestment()
	assert.False(t, ok, "third cycle must be refused")

	// Cap clears at the day boundary.
	clock.t = clock.t.Add(24 * time.Hour)
	_, ok = m.NextInvestment()
	assert.True(t, ok)
}

func TestManager_TargetMultiplierHalts(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	m := newManager(clock, Options{DailyCapitalUsd: 100, TargetMultiplier: 1.5})

	assert.False(t, m.TargetReached())
	m.Settle(60) // balance 160 >= 150
	assert.True(t, m.TargetReached())

	_, ok := m.NextInvestment()
	assert.False(t, ok)
}

func TestManager_LossesFloorAtZero(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	m := newManager(clock, Options{DailyCapitalUsd: 100})

	m.Settle(-150)
	assert.Equal(t, 0.0, m.State().CompoundedBalanceUsd)

	_, ok := m.NextInvestment()
	assert.False(t, ok, "no investment with zero balance")
}

func TestManager_RestoreSameDayOnly(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	m := newManager(clock, Options{DailyCapitalUsd: 100})

	// Snapshot from yesterday is ignored.
	m.Restore(500, 3, time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC))
	assert.Equal(t, 100.0, m.State().CompoundedBalanceUsd)

	// Same-day snapshot applies.
	m.Restore(130, 1, clock.t.Add(-time.Hour))
	state := m.State()
	assert.Equal(t, 130.0, state.CompoundedBalanceUsd)
	assert.Equal(t, 1, state.CycleCount)
}
