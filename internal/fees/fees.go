// Package fees computes swap fee accounting and priority-fee tiers.
package fees

// Priority-fee tiers in SOL. The congestion tier sits within [0.2, 0.3].
const (
	NormalTipSol     = 0.03
	CongestionTipMin = 0.2
	CongestionTipMax = 0.3
)

// Tier names recorded verbatim on positions and trade records.
const (
	TierNormal     = "normal"
	TierCongestion = "congestion"
)

// ApplyFee takes the configured percentage once from grossUsd and returns the
// net amount and the fee. It must be invoked exactly once per trade leg.
func ApplyFee(grossUsd, feePercent float64) (netUsd, feeUsd float64) {
	feeUsd = grossUsd * feePercent / 100.0
	return grossUsd - feeUsd, feeUsd
}

// PriorityFee selects the tip tier for the given congestion signal and
// returns the tier name with its SOL value. congestionTip must lie in
// [CongestionTipMin, CongestionTipMax]; out-of-range values are clamped.
func PriorityFee(congested bool, congestionTip float64) (tier string, tipSol float64) {
	if !congested {
		return TierNormal, NormalTipSol
	}
	if congestionTip < CongestionTipMin {
		congestionTip = CongestionTipMin
	}
	if congestionTip > CongestionTipMax {
		congestionTip = CongestionTipMax
	}
	return TierCongestion, congestionTip
}
