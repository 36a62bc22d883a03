package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	solrpc "solsniper/internal/solana"
)

// ErrInsufficientBalance is returned when the wallet lacks funds for a trade
// plus its priority fee.
var ErrInsufficientBalance = errors.New("insufficient wallet balance")

// Wallet is the trading wallet: the signing key plus the optional alternate
// payer key, with balance lookups against the configured RPC endpoint.
type Wallet struct {
	key   *ParsedKey
	payer *ParsedKey // nil unless PRIVATE_PAYER_KEY configured
	rpc   solrpc.RPCClient
}

// New creates a Wallet. payer may be nil.
func New(key *ParsedKey, payer *ParsedKey, rpc solrpc.RPCClient) *Wallet {
	return &Wallet{key: key, payer: payer, rpc: rpc}
}

// PublicKey returns the wallet's base58 public key.
func (w *Wallet) PublicKey() string {
	return w.key.PublicKey().String()
}

// Key returns the wallet signing key.
func (w *Wallet) Key() solana.PrivateKey {
	return w.key.Key
}

// PayerKey returns the alternate payer key, or nil when not configured.
func (w *Wallet) PayerKey() solana.PrivateKey {
	if w.payer == nil {
		return nil
	}
	return w.payer.Key
}

// PayerPublicKey returns the payer key to use for order payer/closeAuthority
// fields: the alternate payer when configured, the wallet key otherwise.
func (w *Wallet) PayerPublicKey() string {
	if w.payer != nil {
		return w.payer.PublicKey().String()
	}
	return w.PublicKey()
}

// HasAlternatePayer reports whether a distinct payer key is configured.
func (w *Wallet) HasAlternatePayer() bool {
	return w.payer != nil
}

// SolBalance returns the wallet's SOL balance in lamports.
func (w *Wallet) SolBalance(ctx context.Context) (uint64, error) {
	return w.rpc.GetBalance(ctx, w.PublicKey())
}

// EnsureFunds verifies the wallet holds at least the requested lamports plus
// a tip reserve before any submission is attempted.
func (w *Wallet) EnsureFunds(ctx context.Context, lamports, tipLamports uint64) error {
	balance, err := w.SolBalance(ctx)
	if err != nil {
		return fmt.Errorf("balance check: %w", err)
	}
	if balance < lamports+tipLamports {
		return fmt.Errorf("%w: have %d lamports, need %d", ErrInsufficientBalance, balance, lamports+tipLamports)
	}
	return nil
}

// TokenBalance fetches the wallet's current on-chain holding of mint. This is
// the authoritative quantity for any sell; buy-side estimates are never used.
func (w *Wallet) TokenBalance(ctx context.Context, mint string) (*solrpc.TokenBalance, error) {
	bal, err := w.rpc.GetTokenBalance(ctx, w.PublicKey(), mint)
	if err != nil {
		return nil, fmt.Errorf("token balance for %s: %w", mint, err)
	}
	return bal, nil
}
