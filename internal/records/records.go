// Package records defines persistence interfaces for finalized trade
// records and the processed-address set. Stores are append-only: a trade
// record is never mutated after creation.
package records

import (
	"context"
	"errors"

	"solsniper/internal/domain"
)

// Storage errors.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistence wraps write failures. A persistence failure never rolls
	// back the already-executed trade; it is surfaced to the operator.
	ErrPersistence = errors.New("persistence error")
)

// TradeRecordStore appends finalized trade records to the external log.
type TradeRecordStore interface {
	// Append adds a finalized record. Records are immutable once written.
	Append(ctx context.Context, r *domain.TradeRecord) error

	// ListByAddress retrieves all records for a token address, ordered by
	// timestamp ascending.
	ListByAddress(ctx context.Context, address string) ([]*domain.TradeRecord, error)

	// ListAll retrieves every record, ordered by timestamp ascending.
	ListAll(ctx context.Context) ([]*domain.TradeRecord, error)
}

// ProcessedStore tracks addresses that have already been traded or skipped,
// so duplicate signals are dropped across restarts.
type ProcessedStore interface {
	Seen(ctx context.Context, address string) (bool, error)
	Mark(ctx context.Context, address string) error
}

// SessionStore persists the compounding balance between restarts.
type SessionStore interface {
	// SaveBalance stores the current compounded balance and cycle count.
	SaveBalance(ctx context.Context, balanceUsd float64, cycles int) error

	// LoadBalance returns the last persisted balance snapshot. Returns
	// ErrNotFound when no snapshot exists.
	LoadBalance(ctx context.Context) (balanceUsd float64, cycles int, err error)
}
