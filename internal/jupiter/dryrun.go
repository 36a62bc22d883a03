package jupiter

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"solsniper/internal/domain"
)

// DryRunExecutor simulates swap execution without any network submission.
// It produces synthetic transaction ids and tracks a virtual lamport/token
// balance so the rest of the pipeline behaves identically to live mode.
type DryRunExecutor struct {
	logger *log.Logger

	mu       sync.Mutex
	seq      int
	holdings map[string]uint64 // mint → raw units bought in this session
}

// NewDryRunExecutor creates a DryRunExecutor.
func NewDryRunExecutor(logger *log.Logger) *DryRunExecutor {
	if logger == nil {
		logger = log.Default()
	}
	return &DryRunExecutor{
		logger:   logger,
		holdings: make(map[string]uint64),
	}
}

// Execute returns a synthetic transaction id and updates the virtual
// holding; the record structure downstream is identical to live mode.
func (e *DryRunExecutor) Execute(_ context.Context, req *domain.OrderRequest) (*SwapResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++

	switch req.Side {
	case domain.SideBuy:
		e.holdings[req.OutputMint] += req.Amount
	case domain.SideSell:
		e.holdings[req.InputMint] = 0
	}

	txID := fmt.Sprintf("DRY_RUN_%s_%d_%d", req.Side, time.Now().Unix(), e.seq)
	e.logger.Printf("[executor] dry-run %s %s amount=%d tx=%s", req.Side, req.OutputMint, req.Amount, txID)
	return &SwapResult{TxID: txID}, nil
}

// Holding returns the virtual raw balance for a mint.
func (e *DryRunExecutor) Holding(mint string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.holdings[mint]
}

// Ensure DryRunExecutor implements Executor.
var _ Executor = (*DryRunExecutor)(nil)
