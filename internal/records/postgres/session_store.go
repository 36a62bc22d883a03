package postgres

import (
	"context"
	"fmt"

	"solsniper/internal/records"
)

// SessionStore implements records.SessionStore using PostgreSQL. A single
// row keyed by UTC day holds the compounding balance snapshot.
type SessionStore struct {
	pool *Pool
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(pool *Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Compile-time interface check.
var _ records.SessionStore = (*SessionStore)(nil)

// SaveBalance upserts today's balance snapshot.
func (s *SessionStore) SaveBalance(ctx context.Context, balanceUsd float64, cycles int) error {
	query := `
		INSERT INTO session_balances (day, balance_usd, cycles, updated_at)
		VALUES ((NOW() AT TIME ZONE 'utc')::date, $1, $2, NOW())
		ON CONFLICT (day) DO UPDATE
		SET balance_usd = EXCLUDED.balance_usd,
		    cycles = EXCLUDED.cycles,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, balanceUsd, cycles); err != nil {
		return fmt.Errorf("%w: save session balance: %v", records.ErrPersistence, err)
	}
	return nil
}

// LoadBalance returns today's snapshot. Yesterday's snapshot is never
// restored; the compounding balance resets at UTC midnight.
func (s *SessionStore) LoadBalance(ctx context.Context) (float64, int, error) {
	query := `
		SELECT balance_usd, cycles
		FROM session_balances
		WHERE day = (NOW() AT TIME ZONE 'utc')::date
	`

	var balance float64
	var cycles int
	if err := s.pool.QueryRow(ctx, query).Scan(&balance, &cycles); err != nil {
		if isNotFoundError(err) {
			return 0, 0, records.ErrNotFound
		}
		return 0, 0, fmt.Errorf("%w: load session balance: %v", records.ErrPersistence, err)
	}
	return balance, cycles, nil
}
