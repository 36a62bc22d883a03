package solana

import "context"

// RPCClient defines the Solana RPC HTTP surface the trading engine needs.
type RPCClient interface {
	// GetBalance retrieves the lamport balance for a wallet.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetTokenBalance retrieves the raw token amount and decimals held by
	// owner for the given mint, summed across the owner's token accounts.
	GetTokenBalance(ctx context.Context, owner, mint string) (*TokenBalance, error)

	// GetSlot retrieves the current processed slot.
	GetSlot(ctx context.Context) (int64, error)
}

// TokenBalance is the on-chain holding of one mint.
type TokenBalance struct {
	AmountRaw uint64 // base units
	Decimals  uint8
	UIAmount  float64
}
