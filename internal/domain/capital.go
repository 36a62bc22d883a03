package domain

import "time"

// CapitalState is the process-wide daily capital bookkeeping snapshot.
// CompoundedBalanceUsd is mutated only by the capital manager, only after a
// CLOSED position's net P&L is known, and resets to DailyCapitalUsd at each
// UTC-midnight boundary.
type CapitalState struct {
	DailyCapitalUsd      float64
	CompoundedBalanceUsd float64
	CycleCount           int
	MaxCyclesPerDay      int
	DayBoundaryUtc       time.Time // start of the current UTC day
}
