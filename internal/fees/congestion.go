package fees

import "time"

// CongestionDetector reports whether the network currently looks congested.
type CongestionDetector interface {
	Congested() bool
}

// LatencySource exposes the most recent RPC round-trip time.
type LatencySource interface {
	LastLatency() time.Duration
}

// DefaultLatencyThreshold above which the network is considered congested.
const DefaultLatencyThreshold = 800 * time.Millisecond

// LatencyDetector flags congestion when recent RPC latency exceeds a
// threshold.
type LatencyDetector struct {
	Source    LatencySource
	Threshold time.Duration
}

// NewLatencyDetector creates a detector with the default threshold when
// threshold is zero.
func NewLatencyDetector(source LatencySource, threshold time.Duration) *LatencyDetector {
	if threshold == 0 {
		threshold = DefaultLatencyThreshold
	}
	return &LatencyDetector{Source: source, Threshold: threshold}
}

// Congested reports whether the last observed latency crossed the threshold.
func (d *LatencyDetector) Congested() bool {
	return d.Source.LastLatency() >= d.Threshold
}

// StaticDetector always reports a fixed congestion state. Used in dry-run
// mode and tests.
type StaticDetector bool

// Congested implements CongestionDetector.
func (d StaticDetector) Congested() bool { return bool(d) }
