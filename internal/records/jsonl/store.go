// Package jsonl persists trade records as newline-delimited JSON appended to
// a single file. The file is the durable external trade log; every line is a
// complete, immutable record.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"solsniper/internal/domain"
	"solsniper/internal/records"
)

// Store appends trade records to a JSONL file. It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    *bufio.Writer
}

// NewStore returns a store that appends to path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty records path", records.ErrInvalidInput)
	}
	return &Store{path: path}, nil
}

func (s *Store) ensureOpenLocked() error {
	if s.file != nil {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	s.file = f
	s.w = bufio.NewWriter(f)
	return nil
}

// Append writes r as a single JSON line and flushes it to disk immediately,
// so the record survives a crash right after the trade.
func (s *Store) Append(_ context.Context, r *domain.TradeRecord) error {
	if r == nil || r.Address == "" {
		return records.ErrInvalidInput
	}

	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: %v", records.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpenLocked(); err != nil {
		return fmt.Errorf("%w: %v", records.ErrPersistence, err)
	}

	if _, err := s.w.Write(b); err != nil {
		return fmt.Errorf("%w: %v", records.ErrPersistence, err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("%w: %v", records.ErrPersistence, err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", records.ErrPersistence, err)
	}
	return nil
}

// ListByAddress reads the file and returns records for one address.
func (s *Store) ListByAddress(ctx context.Context, address string) ([]*domain.TradeRecord, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.TradeRecord
	for _, r := range all {
		if r.Address == address {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListAll reads the whole file back, ordered by timestamp ascending. Lines
// that fail to parse are skipped rather than failing the whole read.
func (s *Store) ListAll(_ context.Context) ([]*domain.TradeRecord, error) {
	s.mu.Lock()
	if s.w != nil {
		if err := s.w.Flush(); err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %v", records.ErrPersistence, err)
		}
	}
	s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", records.ErrPersistence, err)
	}
	defer f.Close()

	var out []*domain.TradeRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r domain.TradeRecord
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		out = append(out, &r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", records.ErrPersistence, err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampUtc.Before(out[j].TimestampUtc)
	})
	return out, nil
}

// Close flushes buffered data and closes the file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if s.w != nil {
		if err := s.w.Flush(); err != nil {
			firstErr = err
		}
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.w = nil
	s.file = nil
	return firstErr
}

var _ records.TradeRecordStore = (*Store)(nil)
