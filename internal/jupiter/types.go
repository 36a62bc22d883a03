// Package jupiter builds and executes swap orders against the Jupiter Ultra
// aggregator API.
package jupiter

// Default Ultra API endpoints.
const (
	DefaultOrderURL   = "https://lite-api.jup.ag/ultra/v1/order"
	DefaultExecuteURL = "https://lite-api.jup.ag/ultra/v1/execute"
)

// GaslessMinimumUsd is the aggregator-imposed floor below which gasless
// (fee-sponsored) execution is refused.
const GaslessMinimumUsd = 15.0

// orderAPIRequest is the POST /order body.
type orderAPIRequest struct {
	InputMint       string `json:"inputMint"`
	OutputMint      string `json:"outputMint"`
	Amount          string `json:"amount"`
	SlippageBps     int    `json:"slippageBps,omitempty"`
	ReferralFeeBps  int    `json:"referralFeeBps,omitempty"`
	ReferralAccount string `json:"referralAccount,omitempty"`
	Payer           string `json:"payer"`
	CloseAuthority  string `json:"closeAuthority"`
	Gasless         bool   `json:"gasless"`
}

// orderAPIResponse is the POST /order response. Either Transaction carries a
// base64 unsigned payload, or ErrorMessage explains the refusal.
type orderAPIResponse struct {
	Transaction  string `json:"transaction,omitempty"`
	RequestID    string `json:"requestId,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// executeAPIRequest is the POST /execute body.
type executeAPIRequest struct {
	SignedTransaction string `json:"signedTransaction"`
	RequestID         string `json:"requestId"`
}

// executeAPIResponse is the POST /execute response.
type executeAPIResponse struct {
	TxID         string `json:"txId,omitempty"`
	Signature    string `json:"signature,omitempty"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// SwapResult is the outcome of a confirmed execution.
type SwapResult struct {
	TxID string
}

// AttemptState tracks one execution attempt through its lifecycle.
type AttemptState string

const (
	AttemptOrdered   AttemptState = "ORDERED"
	AttemptSigned    AttemptState = "SIGNED"
	AttemptSubmitted AttemptState = "SUBMITTED"
	AttemptConfirmed AttemptState = "CONFIRMED"
	AttemptFailed    AttemptState = "FAILED"
)
