package domain

// OrderRequest is the transient value object posted to the swap aggregator.
// It is never persisted beyond the execution attempt.
type OrderRequest struct {
	Side        Side
	InputMint   string
	OutputMint  string
	Amount      uint64 // raw base units of the input mint
	SlippageBps int

	// Referral fields, set only when both are configured.
	ReferralFeeBps  int
	ReferralAccount string

	// Payer and CloseAuthority always carry the same key.
	Payer          string
	CloseAuthority string

	Gasless bool
}
