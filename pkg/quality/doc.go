/*
Package quality is the consumer-facing surface of the measurement core: a
one-shot accessor and a continuously refreshable watch session.

One-shot:

	prober, _ := probe.NewSystemProber(logger)
	orch := orchestrator.New(prober, logger)
	res, err := quality.Measure(ctx, orch, quality.Options{Extended: true})
	// res.Tier, res.Record

Watch session:

	opts := quality.DefaultWatchOptions()
	opts.OnMeasure = func(res *quality.Result, err error) { ... }
	w := quality.NewWatcher(ctx, orch, lifecycle.NewSignals(), logger, opts)
	defer w.Close()

	w.Refresh()       // manual trigger; false if a run is already in flight
	st := w.Status()  // tier, record, isMeasuring, lastMeasuredAt, error

The watcher is a four-state machine (idle, measuring, ready, failed). A run
is started by mount, resume, or Refresh; triggers arriving while measuring
are dropped rather than queued, so overlapping probe sequences can never
contend for the same endpoints. Degraded records (absent fields, timeout
notes) are successes and land in StateReady; only an unrecoverable probe
layer fault produces StateFailed, with the error exposed through Status and
the OnMeasure callback.
*/
package quality
