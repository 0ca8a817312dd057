// Package probe defines the collaborator contract between the measurement
// core and the platform probes, plus a working system implementation built on
// outline-sdk transports.
//
// Every probe is a bounded operation: it reports failure by returning nil
// results, not errors. A non-nil error from any method means the probe layer
// itself could not be invoked at all, which is the only failure class the
// orchestration core propagates upward.
package probe

import (
	"context"
	"time"

	"network-quality/pkg/models"
)

// Prober is the set of platform probes the orchestrator runs.
type Prober interface {
	// ConnectivitySnapshot returns the current link state. It must complete
	// within a few milliseconds and performs no network I/O.
	ConnectivitySnapshot(ctx context.Context) (models.Snapshot, error)

	// LatencyProbe times sampleCount round trips, each bounded by
	// perSampleTimeout. Mean is nil if every sample failed; jitter is nil
	// with fewer than two successful samples.
	LatencyProbe(ctx context.Context, sampleCount int, perSampleTimeout time.Duration) (meanMs, jitterMs *float64, err error)

	// ThroughputProbe downloads for roughly duration and reports the downlink
	// rate in Mbps, nil if no bytes were transferred within timeout.
	ThroughputProbe(ctx context.Context, duration, timeout time.Duration) (*float64, error)

	// PacketLossProbe issues attemptCount small requests and reports the
	// percentage that failed or timed out, nil if no attempt could be made.
	PacketLossProbe(ctx context.Context, attemptCount int, perAttemptTimeout time.Duration) (*float64, error)
}

// Capabilities describes which optional snapshot fields the running platform
// can populate. Absent capabilities surface as nil fields, never as errors.
type Capabilities struct {
	WifiSignal         bool
	CellularSignal     bool
	CellularGeneration bool
}
