package fees

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyFee_SingleApplication(t *testing.T) {
	net, fee := ApplyFee(10.0, 1.0)
	assert.InDelta(t, 9.90, net, 1e-9)
	assert.InDelta(t, 0.10, fee, 1e-9)
}

func TestApplyFee_DoubleApplicationDetectable(t *testing.T) {
	// Applying the fee twice on the same gross must not look like a single
	// application: the combined fee differs from 2x the expected fee only by
	// the compounding term, and the net diverges from the single-pass net.
	net1, fee1 := ApplyFee(100.0, 1.0)
	net2, fee2 := ApplyFee(net1, 1.0)

	assert.InDelta(t, 99.0, net1, 1e-9)
	assert.InDelta(t, 98.01, net2, 1e-9)
	// fee1+fee2 = 1.99, not the 2.00 a naive double charge would produce
	assert.Greater(t, 2*fee1, fee1+fee2)
}

func TestApplyFee_ZeroPercent(t *testing.T) {
	net, fee := ApplyFee(42.0, 0)
	assert.Equal(t, 42.0, net)
	assert.Equal(t, 0.0, fee)
}

func TestPriorityFee_Tiers(t *testing.T) {
	tier, tip := PriorityFee(false, 0.25)
	assert.Equal(t, TierNormal, tier)
	assert.Equal(t, NormalTipSol, tip)

	tier, tip = PriorityFee(true, 0.25)
	assert.Equal(t, TierCongestion, tier)
	assert.Equal(t, 0.25, tip)
}

func TestPriorityFee_CongestionClamped(t *testing.T) {
	_, tip := PriorityFee(true, 0.05)
	assert.Equal(t, CongestionTipMin, tip)

	_, tip = PriorityFee(true, 0.9)
	assert.Equal(t, CongestionTipMax, tip)
}

type fixedLatency time.Duration

func (f fixedLatency) LastLatency() time.Duration { return time.Duration(f) }

func TestLatencyDetector(t *testing.T) {
	d := NewLatencyDetector(fixedLatency(100*time.Millisecond), 0)
	assert.False(t, d.Congested())

	d = NewLatencyDetector(fixedLatency(2*time.Second), 0)
	assert.True(t, d.Congested())

	d = NewLatencyDetector(fixedLatency(150*time.Millisecond), 100*time.Millisecond)
	assert.True(t, d.Congested())
}
