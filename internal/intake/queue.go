// Package intake receives candidate token addresses from the external signal
// listener and feeds them to the position manager in arrival order.
package intake

import (
	"context"
	"log"
	"sync"
)

// DefaultCapacity bounds the candidate queue.
const DefaultCapacity = 64

// ProcessedSet tracks addresses the engine has already handled so duplicate
// signals are dropped. Implementations may persist across restarts.
type ProcessedSet interface {
	Seen(ctx context.Context, address string) (bool, error)
	Mark(ctx context.Context, address string) error
}

// Queue is a FIFO intake queue with processed-set dedupe and a drop-on-full
// overflow policy.
type Queue struct {
	ch        chan string
	processed ProcessedSet
	logger    *log.Logger

	mu      sync.Mutex
	dropped int64

	onDrop func() // optional metrics hook
}

// Options configures Queue.
type Options struct {
	Capacity  int
	Processed ProcessedSet
	Logger    *log.Logger
	OnDrop    func()
}

// NewQueue creates an intake queue.
func NewQueue(opts Options) *Queue {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Queue{
		ch:        make(chan string, capacity),
		processed: opts.Processed,
		logger:    logger,
		onDrop:    opts.OnDrop,
	}
}

// Enqueue offers a candidate address. Duplicates and overflow are dropped;
// enqueue never blocks the caller.
func (q *Queue) Enqueue(ctx context.Context, address string) {
	if address == "" {
		return
	}

	if q.processed != nil {
		seen, err := q.processed.Seen(ctx, address)
		if err != nil {
			q.logger.Printf("[intake] processed-set lookup failed for %s: %v", address, err)
		} else if seen {
			q.logger.Printf("[intake] duplicate candidate dropped: %s", address)
			return
		}
	}

	select {
	case q.ch <- address:
	default:
		q.mu.Lock()
		q.dropped++
		q.mu.Unlock()
		if q.onDrop != nil {
			q.onDrop()
		}
		q.logger.Printf("[intake] queue full, candidate dropped: %s", address)
	}
}

// Next blocks until a candidate is available or the context is cancelled.
func (q *Queue) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case address := <-q.ch:
		return address, nil
	}
}

// MarkProcessed records an address so later signals for it are dropped.
func (q *Queue) MarkProcessed(ctx context.Context, address string) {
	if q.processed == nil {
		return
	}
	if err := q.processed.Mark(ctx, address); err != nil {
		q.logger.Printf("[intake] failed to mark %s processed: %v", address, err)
	}
}

// Dropped returns the number of candidates lost to overflow.
func (q *Queue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Len returns the number of queued candidates.
func (q *Queue) Len() int {
	return len(q.ch)
}
