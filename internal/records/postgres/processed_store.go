package postgres

import (
	"context"
	"fmt"

	"solsniper/internal/records"
)

// ProcessedStore implements records.ProcessedStore using PostgreSQL. Marked
// addresses survive restarts so a signal is never traded twice.
type ProcessedStore struct {
	pool *Pool
}

// NewProcessedStore creates a new ProcessedStore.
func NewProcessedStore(pool *Pool) *ProcessedStore {
	return &ProcessedStore{pool: pool}
}

// Compile-time interface check.
var _ records.ProcessedStore = (*ProcessedStore)(nil)

// Seen reports whether an address was already processed.
func (s *ProcessedStore) Seen(ctx context.Context, address string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM processed_addresses WHERE address = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, address).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: check processed address: %v", records.ErrPersistence, err)
	}
	return exists, nil
}

// Mark records an address as processed. Marking twice is a no-op.
func (s *ProcessedStore) Mark(ctx context.Context, address string) error {
	if address == "" {
		return records.ErrInvalidInput
	}

	query := `
		INSERT INTO processed_addresses (address, marked_at)
		VALUES ($1, NOW())
	`

	_, err := s.pool.Exec(ctx, query, address)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("%w: mark processed address: %v", records.ErrPersistence, err)
	}
	return nil
}
