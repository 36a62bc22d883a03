// Package memory provides in-memory implementations of the records stores,
// used in tests and dry-run sessions.
package memory

import (
	"context"
	"sort"
	"sync"

	"solsniper/internal/domain"
	"solsniper/internal/records"
)

// TradeRecordStore is an in-memory implementation of records.TradeRecordStore.
type TradeRecordStore struct {
	mu   sync.RWMutex
	data []*domain.TradeRecord
}

// NewTradeRecordStore creates a new in-memory trade record store.
func NewTradeRecordStore() *TradeRecordStore {
	return &TradeRecordStore{}
}

// Append adds a finalized record.
func (s *TradeRecordStore) Append(_ context.Context, r *domain.TradeRecord) error {
	if r == nil || r.Address == "" {
		return records.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *r
	s.data = append(s.data, &copied)
	return nil
}

// ListByAddress retrieves all records for an address, ordered by timestamp.
func (s *TradeRecordStore) ListByAddress(_ context.Context, address string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TradeRecord
	for _, r := range s.data {
		if r.Address == address {
			copied := *r
			out = append(out, &copied)
		}
	}
	sortByTime(out)
	return out, nil
}

// ListAll retrieves every record, ordered by timestamp.
func (s *TradeRecordStore) ListAll(_ context.Context) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.TradeRecord, 0, len(s.data))
	for _, r := range s.data {
		copied := *r
		out = append(out, &copied)
	}
	sortByTime(out)
	return out, nil
}

func sortByTime(rs []*domain.TradeRecord) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].TimestampUtc.Before(rs[j].TimestampUtc)
	})
}

// Ensure TradeRecordStore implements records.TradeRecordStore.
var _ records.TradeRecordStore = (*TradeRecordStore)(nil)

// ProcessedStore is an in-memory implementation of records.ProcessedStore.
type ProcessedStore struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewProcessedStore creates a new in-memory processed-address store.
func NewProcessedStore() *ProcessedStore {
	return &ProcessedStore{seen: make(map[string]struct{})}
}

// Seen reports whether an address was already processed.
func (s *ProcessedStore) Seen(_ context.Context, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[address]
	return ok, nil
}

// Mark records an address as processed.
func (s *ProcessedStore) Mark(_ context.Context, address string) error {
	if address == "" {
		return records.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[address] = struct{}{}
	return nil
}

// Ensure ProcessedStore implements records.ProcessedStore.
var _ records.ProcessedStore = (*ProcessedStore)(nil)

// SessionStore is an in-memory implementation of records.SessionStore.
type SessionStore struct {
	mu      sync.Mutex
	balance float64
	cycles  int
	saved   bool
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// SaveBalance stores the current compounded balance and cycle count.
func (s *SessionStore) SaveBalance(_ context.Context, balanceUsd float64, cycles int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = balanceUsd
	s.cycles = cycles
	s.saved = true
	return nil
}

// LoadBalance returns the last persisted balance snapshot.
func (s *SessionStore) LoadBalance(_ context.Context) (float64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return 0, 0, records.ErrNotFound
	}
	return s.balance, s.cycles, nil
}

// Ensure SessionStore implements records.SessionStore.
var _ records.SessionStore = (*SessionStore)(nil)
