// Package orchestrator runs the probe set for one measurement and assembles
// the immutable record, tolerating partial probe failure.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"network-quality/pkg/models"
	"network-quality/pkg/probe"
)

// Probe defaults. The overall timeout is a hard ceiling across all probes;
// each probe additionally receives its own shorter bounds.
const (
	DefaultTimeout = 3000 * time.Millisecond

	defaultLatencySamples       = 3
	defaultLatencySampleTimeout = 500 * time.Millisecond
	defaultThroughputDuration   = 2000 * time.Millisecond
	defaultThroughputTimeout    = 5000 * time.Millisecond
	defaultLossAttempts         = 10
	defaultLossAttemptTimeout   = 500 * time.Millisecond

	// Extra wait granted beyond the overall timeout before a stuck probe is
	// abandoned outright.
	graceMargin = 150 * time.Millisecond
)

// RunOptions configures a single orchestration run.
type RunOptions struct {
	// Extended also runs the packet-loss probe.
	Extended bool
	// Timeout is the hard ceiling across all probes; DefaultTimeout if zero.
	Timeout time.Duration
}

// Orchestrator runs measurements and caches the most recent record. The cache
// is replaced atomically once per completed run and may be read concurrently.
type Orchestrator struct {
	prober probe.Prober
	logger *slog.Logger
	last   atomic.Pointer[models.MeasurementRecord]
}

func New(prober probe.Prober, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		prober: prober,
		logger: logger,
	}
}

// Last returns the record of the most recently completed run, or nil if no
// run has completed yet.
func (o *Orchestrator) Last() *models.MeasurementRecord {
	return o.last.Load()
}

// partial collects probe results as they arrive. Guarded by its mutex so a
// timed-out run can read whatever has completed without racing late writers.
type partial struct {
	mu       sync.Mutex
	latency  *float64
	jitter   *float64
	downlink *float64
	loss     *float64
}

// Run performs one measurement: snapshot first, then the latency, throughput
// and (when extended) packet-loss probes concurrently under the overall
// deadline. Probe failures become absent fields; a run that exceeds the
// deadline still returns a record built from whatever completed, with
// FailureReason set. The only error returned is the unrecoverable case where
// the probe layer itself cannot be invoked.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*models.MeasurementRecord, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	snap, err := o.prober.ConnectivitySnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("connectivity snapshot unavailable: %w", err)
	}

	rec := &models.MeasurementRecord{
		Timestamp:          time.Now(),
		LinkType:           snap.LinkType,
		CellularGeneration: snap.CellularGeneration,
		WifiSignalDBM:      snap.WifiSignalDBM,
		CellularSignalDBM:  snap.CellularSignalDBM,
		IsConnected:        snap.IsConnected,
	}

	if !snap.IsConnected {
		// Known-down link: don't burn time or battery on probes.
		rec.FailureReason = "offline"
		o.last.Store(rec)
		o.logger.Debug("measurement short-circuited", "reason", "offline")
		return rec, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	results := &partial{}
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		mean, jitter, err := o.prober.LatencyProbe(probeCtx, defaultLatencySamples, defaultLatencySampleTimeout)
		if err != nil {
			o.logger.Debug("latency probe failed", "error", err)
			return
		}
		results.mu.Lock()
		results.latency, results.jitter = mean, jitter
		results.mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		rate, err := o.prober.ThroughputProbe(probeCtx, defaultThroughputDuration, defaultThroughputTimeout)
		if err != nil {
			o.logger.Debug("throughput probe failed", "error", err)
			return
		}
		results.mu.Lock()
		results.downlink = rate
		results.mu.Unlock()
	}()

	if opts.Extended {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loss, err := o.prober.PacketLossProbe(probeCtx, defaultLossAttempts, defaultLossAttemptTimeout)
			if err != nil {
				o.logger.Debug("packet loss probe failed", "error", err)
				return
			}
			results.mu.Lock()
			results.loss = loss
			results.mu.Unlock()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timedOut := false
	select {
	case <-done:
		// The probes may have finished only because the deadline cut them
		// short; that still counts as a timeout for the record.
		timedOut = probeCtx.Err() == context.DeadlineExceeded
	case <-time.After(opts.Timeout + graceMargin):
		// A probe is ignoring its context. Stop waiting and assemble the
		// record from whatever completed; late writes land in the partial
		// struct and are never seen again.
		timedOut = true
	}

	results.mu.Lock()
	rec.LatencyMs = results.latency
	rec.JitterMs = results.jitter
	rec.DownlinkMbps = results.downlink
	rec.PacketLossPercent = results.loss
	results.mu.Unlock()

	if timedOut {
		rec.FailureReason = fmt.Sprintf("measurement timed out after %s", opts.Timeout)
		o.logger.Debug("measurement timed out", "timeout", opts.Timeout)
	}

	o.last.Store(rec)
	return rec, nil
}
