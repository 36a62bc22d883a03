package jupiter

import (
	"fmt"

	"solsniper/internal/domain"
)

// OrderBuilder assembles swap order requests honoring the aggregator's
// payer/closeAuthority and gasless-minimum rules.
type OrderBuilder struct {
	walletPubkey string
	payerPubkey  string // equals walletPubkey when no alternate payer
	hasAltPayer  bool

	slippageBps     int
	referralFeeBps  int
	referralAccount string
}

// BuilderOptions configures OrderBuilder.
type BuilderOptions struct {
	WalletPubkey    string
	PayerPubkey     string // optional alternate payer public key
	SlippageBps     int
	ReferralFeeBps  int
	ReferralAccount string
}

// NewOrderBuilder creates an OrderBuilder.
func NewOrderBuilder(opts BuilderOptions) *OrderBuilder {
	b := &OrderBuilder{
		walletPubkey:    opts.WalletPubkey,
		payerPubkey:     opts.WalletPubkey,
		slippageBps:     opts.SlippageBps,
		referralFeeBps:  opts.ReferralFeeBps,
		referralAccount: opts.ReferralAccount,
	}
	if opts.PayerPubkey != "" && opts.PayerPubkey != opts.WalletPubkey {
		b.payerPubkey = opts.PayerPubkey
		b.hasAltPayer = true
	}
	return b
}

// BuildBuy assembles a SOL→token order. amountLamports is the input amount
// after fee deduction; netUsd is its USD value, checked against the gasless
// minimum.
func (b *OrderBuilder) BuildBuy(mint string, amountLamports uint64, netUsd float64) (*domain.OrderRequest, error) {
	req := b.base(domain.SideBuy, domain.WSOLMint, mint, amountLamports)
	if err := b.applyGaslessPolicy(req, netUsd); err != nil {
		return nil, err
	}
	return req, nil
}

// BuildSell assembles a token→SOL order liquidating amountRaw base units,
// which the caller must have fetched from the chain, not estimated.
func (b *OrderBuilder) BuildSell(mint string, amountRaw uint64, netUsd float64) (*domain.OrderRequest, error) {
	req := b.base(domain.SideSell, mint, domain.WSOLMint, amountRaw)
	if err := b.applyGaslessPolicy(req, netUsd); err != nil {
		return nil, err
	}
	return req, nil
}

func (b *OrderBuilder) base(side domain.Side, inputMint, outputMint string, amount uint64) *domain.OrderRequest {
	req := &domain.OrderRequest{
		Side:        side,
		InputMint:   inputMint,
		OutputMint:  outputMint,
		Amount:      amount,
		SlippageBps: b.slippageBps,
		// Payer and closeAuthority must always carry the same key; the
		// aggregator rejects orders where they differ.
		Payer:          b.payerPubkey,
		CloseAuthority: b.payerPubkey,
		Gasless:        true,
	}
	if b.referralFeeBps > 0 && b.referralAccount != "" {
		req.ReferralFeeBps = b.referralFeeBps
		req.ReferralAccount = b.referralAccount
	}
	return req
}

// applyGaslessPolicy enforces the $15 gasless floor: under it the order is
// downgraded to gasless=false and the payer covers network fees. Without an
// alternate payer the wallet's own key serves as payer, so the swap still
// proceeds; the build fails only when no key is configured at all.
func (b *OrderBuilder) applyGaslessPolicy(req *domain.OrderRequest, netUsd float64) error {
	if netUsd >= GaslessMinimumUsd {
		return nil
	}
	if b.payerPubkey == "" {
		return fmt.Errorf("%w: $%.2f under $%.2f and no payer key configured",
			ErrGaslessMinimum, netUsd, GaslessMinimumUsd)
	}
	req.Gasless = false
	return nil
}

// Degasless returns a copy of req with gasless disabled, used for the single
// retry after an aggregator-side gasless-minimum refusal.
func (b *OrderBuilder) Degasless(req *domain.OrderRequest) *domain.OrderRequest {
	out := *req
	out.Gasless = false
	return &out
}
