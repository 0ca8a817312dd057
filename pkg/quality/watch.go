package quality

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"network-quality/pkg/lifecycle"
	"network-quality/pkg/models"
	"network-quality/pkg/orchestrator"
	"network-quality/pkg/score"
)

// State names the watch session's position in its lifecycle.
type State string

const (
	// StateIdle: no measurement has run or is in flight yet.
	StateIdle State = "idle"
	// StateMeasuring: a run is in flight.
	StateMeasuring State = "measuring"
	// StateReady: the last run completed and tier/record are populated.
	StateReady State = "ready"
	// StateFailed: the last run could not be completed at all.
	StateFailed State = "failed"
)

// WatchOptions configures a watch session. Start from DefaultWatchOptions and
// flip what you need; the zero value disables every trigger.
type WatchOptions struct {
	// MeasureOnMount runs a measurement as soon as the watcher is created.
	MeasureOnMount bool
	// MeasureOnResume runs a measurement on every resume trigger event for
	// the watcher's lifetime.
	MeasureOnResume bool
	// Extended also measures packet loss on every run.
	Extended bool
	// Timeout is the per-run ceiling; the orchestrator default applies if zero.
	Timeout time.Duration
	// OnMeasure, if set, is invoked after every run with (result, nil) on
	// success or (nil, err) on an unrecoverable failure.
	OnMeasure func(*Result, error)
}

// DefaultWatchOptions mirrors the defaults consumers get without explicit
// configuration: measure on mount and resume, extended mode, 3s timeout.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		MeasureOnMount:  true,
		MeasureOnResume: true,
		Extended:        true,
		Timeout:         orchestrator.DefaultTimeout,
	}
}

// WatchStatus is a consistent point-in-time view of a watch session. Tier is
// nil while idle, measuring for the first time, or after a failure.
type WatchStatus struct {
	State          State
	Tier           *models.QualityTier
	Record         *models.MeasurementRecord
	IsMeasuring    bool
	LastMeasuredAt time.Time
	Err            error
}

// Watcher is a stateful measurement session. At most one run is in flight at
// any time: triggers arriving while measuring are dropped, not queued. All
// state transitions happen under one mutex, so a status read never observes a
// half-applied completion.
type Watcher struct {
	id     string
	runner Runner
	logger *slog.Logger
	opts   WatchOptions

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	state          State
	measuring      bool
	tier           *models.QualityTier
	record         *models.MeasurementRecord
	lastMeasuredAt time.Time
	lastErr        error

	cancelResume func()
}

// NewWatcher creates a watch session. The trigger may be nil when resume
// measurements are disabled. Close releases the resume subscription and
// cancels any in-flight run.
func NewWatcher(ctx context.Context, runner Runner, trigger lifecycle.Trigger, logger *slog.Logger, opts WatchOptions) *Watcher {
	wctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		id:     uuid.NewString(),
		runner: runner,
		logger: logger,
		opts:   opts,
		ctx:    wctx,
		cancel: cancel,
		state:  StateIdle,
	}

	if opts.MeasureOnResume && trigger != nil {
		w.cancelResume = trigger.Subscribe(func() {
			w.start("resume")
		})
	}
	if opts.MeasureOnMount {
		w.start("mount")
	}
	return w
}

// Refresh requests a new measurement. Returns false when a run is already in
// flight (the request is dropped, not queued) or the watcher is closed.
func (w *Watcher) Refresh() bool {
	return w.start("refresh")
}

// Status returns a consistent snapshot of the session state.
func (w *Watcher) Status() WatchStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WatchStatus{
		State:          w.state,
		Tier:           w.tier,
		Record:         w.record,
		IsMeasuring:    w.measuring,
		LastMeasuredAt: w.lastMeasuredAt,
		Err:            w.lastErr,
	}
}

// Close tears the session down: the resume subscription is released and any
// in-flight run is cancelled. Further triggers are no-ops.
func (w *Watcher) Close() {
	w.cancel()
	if w.cancelResume != nil {
		w.cancelResume()
	}
}

// start is the single entry point for every trigger. The measuring flag is
// checked and set under the lock, so two racing triggers can never launch
// overlapping runs.
func (w *Watcher) start(trigger string) bool {
	w.mu.Lock()
	if w.measuring || w.ctx.Err() != nil {
		w.mu.Unlock()
		w.logger.Debug("measurement trigger dropped", "watcher", w.id, "trigger", trigger)
		return false
	}
	w.measuring = true
	w.state = StateMeasuring
	w.mu.Unlock()

	w.logger.Debug("measurement started", "watcher", w.id, "trigger", trigger)
	go w.run()
	return true
}

func (w *Watcher) run() {
	rec, err := w.runner.Run(w.ctx, orchestrator.RunOptions{
		Extended: w.opts.Extended,
		Timeout:  w.opts.Timeout,
	})

	var result *Result

	w.mu.Lock()
	if err != nil {
		w.state = StateFailed
		w.tier = nil
		w.lastErr = err
	} else {
		tier := score.Score(rec)
		w.state = StateReady
		w.tier = &tier
		w.record = rec
		w.lastMeasuredAt = time.Now()
		w.lastErr = nil
		result = &Result{Tier: tier, Record: rec}
	}
	// Cleared last: completion handling above must be fully visible before
	// the next trigger can start a run.
	w.measuring = false
	cb := w.opts.OnMeasure
	w.mu.Unlock()

	if err != nil {
		w.logger.Debug("measurement failed", "watcher", w.id, "error", err)
	} else {
		w.logger.Debug("measurement completed", "watcher", w.id, "tier", result.Tier.String())
	}

	if cb != nil {
		cb(result, err)
	}
}
