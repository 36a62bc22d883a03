package intake

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memProcessed map[string]bool

func (m memProcessed) Seen(_ context.Context, address string) (bool, error) {
	return m[address], nil
}

func (m memProcessed) Mark(_ context.Context, address string) error {
	m[address] = true
	return nil
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(Options{Capacity: 4})
	ctx := context.Background()

	q.Enqueue(ctx, "A")
	q.Enqueue(ctx, "B")
	q.Enqueue(ctx, "C")

	for _, want := range []string{"A", "B", "C"} {
		got, err := q.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestQueue_DuplicatesDropped(t *testing.T) {
	processed := memProcessed{}
	q := NewQueue(Options{Capacity: 4, Processed: processed})
	ctx := context.Background()

	q.Enqueue(ctx, "TOKEN_A")
	q.MarkProcessed(ctx, "TOKEN_A")
	q.Enqueue(ctx, "TOKEN_A")

	assert.Equal(t, 1, q.Len())
}

func TestQueue_OverflowDropsWithoutBlocking(t *testing.T) {
	var drops int
	q := NewQueue(Options{Capacity: 2, OnDrop: func() { drops++ }})
	ctx := context.Background()

	q.Enqueue(ctx, "A")
	q.Enqueue(ctx, "B")

	done := make(chan struct{})
	go func() {
		q.Enqueue(ctx, "C")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on full queue")
	}

	assert.Equal(t, int64(1), q.Dropped())
	assert.Equal(t, 1, drops)
	assert.Equal(t, 2, q.Len())
}

func TestQueue_NextCancellable(t *testing.T) {
	q := NewQueue(Options{})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Next(ctx)
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Next did not observe cancellation")
	}
}
