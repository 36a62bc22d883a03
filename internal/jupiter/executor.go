package jupiter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"

	"solsniper/internal/domain"
	"solsniper/internal/observability"
)

// Submission retry policy: 3 attempts total with increasing backoff.
const (
	MaxAttempts         = 3
	DefaultBackoffStart = 2 * time.Second
)

// Executor submits swap orders for execution.
type Executor interface {
	Execute(ctx context.Context, req *domain.OrderRequest) (*SwapResult, error)
}

// Signer provides the keys used to sign aggregator transactions.
type Signer interface {
	// Key is the wallet signing key.
	Key() solana.PrivateKey
	// PayerKey is the alternate payer key, nil when not configured.
	PayerKey() solana.PrivateKey
}

// HTTPExecutor implements Executor against the Ultra API.
// Per attempt: ORDERED → SIGNED → SUBMITTED → CONFIRMED | FAILED.
type HTTPExecutor struct {
	orderURL   string
	executeURL string
	http       *http.Client
	signer     Signer
	builder    *OrderBuilder
	logger     *log.Logger
	backoff    time.Duration
}

// ExecutorOptions configures HTTPExecutor. Zero values select defaults.
type ExecutorOptions struct {
	OrderURL   string
	ExecuteURL string
	HTTPClient *http.Client
	Signer     Signer
	Builder    *OrderBuilder
	Logger     *log.Logger
	Backoff    time.Duration
}

// NewHTTPExecutor creates an HTTPExecutor.
func NewHTTPExecutor(opts ExecutorOptions) *HTTPExecutor {
	e := &HTTPExecutor{
		orderURL:   opts.OrderURL,
		executeURL: opts.ExecuteURL,
		http:       opts.HTTPClient,
		signer:     opts.Signer,
		builder:    opts.Builder,
		logger:     opts.Logger,
		backoff:    opts.Backoff,
	}
	if e.orderURL == "" {
		e.orderURL = DefaultOrderURL
	}
	if e.executeURL == "" {
		e.executeURL = DefaultExecuteURL
	}
	if e.http == nil {
		e.http = &http.Client{Timeout: 20 * time.Second}
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.backoff == 0 {
		e.backoff = DefaultBackoffStart
	}
	return e
}

// Execute runs the full order→sign→submit flow. The returned TxID is
// provisional until referenced in a finalized record.
func (e *HTTPExecutor) Execute(ctx context.Context, req *domain.OrderRequest) (*SwapResult, error) {
	order, err := e.requestOrder(ctx, req)
	if err != nil {
		if errors.Is(err, ErrGaslessMinimum) && req.Gasless {
			// One retry with gasless disabled, per the builder policy.
			e.logger.Printf("[executor] gasless refused for %s, retrying with gasless=false", req.OutputMint)
			order, err = e.requestOrder(ctx, e.builder.Degasless(req))
		}
		if err != nil {
			return nil, err
		}
	}

	signed, err := e.signOrder(order)
	if err != nil {
		return nil, err
	}

	return e.submit(ctx, signed, order.RequestID)
}

// requestOrder posts the order and returns the unsigned payload. State:
// ORDERED on success.
func (e *HTTPExecutor) requestOrder(ctx context.Context, req *domain.OrderRequest) (*orderAPIResponse, error) {
	body := orderAPIRequest{
		InputMint:       req.InputMint,
		OutputMint:      req.OutputMint,
		Amount:          fmt.Sprintf("%d", req.Amount),
		SlippageBps:     req.SlippageBps,
		ReferralFeeBps:  req.ReferralFeeBps,
		ReferralAccount: req.ReferralAccount,
		Payer:           req.Payer,
		CloseAuthority:  req.CloseAuthority,
		Gasless:         req.Gasless,
	}

	var resp orderAPIResponse
	if err := e.postJSON(ctx, e.orderURL, body, &resp); err != nil {
		return nil, err
	}

	if resp.Transaction == "" {
		if isGaslessMinimumMessage(resp.ErrorMessage) {
			return nil, fmt.Errorf("%w: %s", ErrGaslessMinimum, resp.ErrorMessage)
		}
		e.logger.Printf("[executor] unusable order for %s: %q", req.OutputMint, resp.ErrorMessage)
		return nil, fmt.Errorf("%w: %s", ErrInvalidOrder, resp.ErrorMessage)
	}
	return &resp, nil
}

// signOrder decodes the unsigned payload, signs it with the wallet key (and
// payer key if distinct) and re-serializes it. State: SIGNED on success.
func (e *HTTPExecutor) signOrder(order *orderAPIResponse) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(order.Transaction)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode: %v", ErrSigning, err)
	}

	tx, err := solana.TransactionFromBytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: deserialize: %v", ErrSigning, err)
	}

	walletKey := e.signer.Key()
	payerKey := e.signer.PayerKey()
	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(walletKey.PublicKey()) {
			return &walletKey
		}
		if payerKey != nil && pub.Equals(payerKey.PublicKey()) {
			return &payerKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}

	signed, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("%w: serialize: %v", ErrSigning, err)
	}
	return base64.StdEncoding.EncodeToString(signed), nil
}

// submit posts the signed transaction, retrying transient failures with
// increasing backoff. States: SUBMITTED → CONFIRMED | FAILED.
func (e *HTTPExecutor) submit(ctx context.Context, signedTx, requestID string) (*SwapResult, error) {
	body := executeAPIRequest{SignedTransaction: signedTx, RequestID: requestID}

	delay := e.backoff
	var lastErr error

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			observability.RecordSwapRetry()
		}
		observability.RecordSwapAttempt()

		var resp executeAPIResponse
		err := e.postJSON(ctx, e.executeURL, body, &resp)
		if err != nil {
			if errors.Is(err, ErrTransient) {
				lastErr = err
				e.logger.Printf("[executor] submit attempt %d/%d failed: %v", attempt, MaxAttempts, err)
				continue
			}
			return nil, err
		}

		if strings.EqualFold(resp.Status, "success") {
			txID := resp.TxID
			if txID == "" {
				txID = resp.Signature
			}
			return &SwapResult{TxID: txID}, nil
		}

		// Aggregator-side rejection is not retried.
		e.logger.Printf("[executor] execution rejected: status=%s message=%q", resp.Status, resp.ErrorMessage)
		return nil, fmt.Errorf("%w: status=%s: %s", ErrInvalidOrder, resp.Status, resp.ErrorMessage)
	}

	return nil, fmt.Errorf("%w: retries exhausted: %v", ErrInvalidOrder, lastErr)
}

// postJSON posts a JSON body and decodes the response, tagging
// network/timeout/5xx/429-class failures as ErrTransient.
func (e *HTTPExecutor) postJSON(ctx context.Context, url string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		if isTransportError(err) {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransient, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d: %s", ErrTransient, resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// isTransportError classifies connection-level failures as transient.
func isTransportError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF")
}

// isGaslessMinimumMessage classifies an aggregator refusal as the
// gasless-minimum case.
func isGaslessMinimumMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "gasless") ||
		strings.Contains(m, "minimum") && strings.Contains(m, "$15")
}

// Ensure HTTPExecutor implements Executor.
var _ Executor = (*HTTPExecutor)(nil)
