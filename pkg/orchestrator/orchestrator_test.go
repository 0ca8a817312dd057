package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"network-quality/pkg/models"
)

func f64(v float64) *float64 { return &v }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProber is a scriptable probe collaborator that counts invocations.
type fakeProber struct {
	mu sync.Mutex

	snap    models.Snapshot
	snapErr error

	latency, jitter *float64
	downlink        *float64
	loss            *float64

	latencyDelay    time.Duration
	throughputDelay time.Duration
	ignoreContext   bool

	latencyCalls    int
	throughputCalls int
	lossCalls       int
}

func (f *fakeProber) ConnectivitySnapshot(ctx context.Context) (models.Snapshot, error) {
	return f.snap, f.snapErr
}

func (f *fakeProber) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	if f.ignoreContext {
		time.Sleep(d)
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func (f *fakeProber) LatencyProbe(ctx context.Context, samples int, perSample time.Duration) (*float64, *float64, error) {
	f.mu.Lock()
	f.latencyCalls++
	f.mu.Unlock()
	f.wait(ctx, f.latencyDelay)
	if ctx.Err() != nil && !f.ignoreContext {
		return nil, nil, nil
	}
	return f.latency, f.jitter, nil
}

func (f *fakeProber) ThroughputProbe(ctx context.Context, duration, timeout time.Duration) (*float64, error) {
	f.mu.Lock()
	f.throughputCalls++
	f.mu.Unlock()
	f.wait(ctx, f.throughputDelay)
	if ctx.Err() != nil && !f.ignoreContext {
		return nil, nil
	}
	return f.downlink, nil
}

func (f *fakeProber) PacketLossProbe(ctx context.Context, attempts int, perAttempt time.Duration) (*float64, error) {
	f.mu.Lock()
	f.lossCalls++
	f.mu.Unlock()
	return f.loss, nil
}

func (f *fakeProber) calls() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latencyCalls, f.throughputCalls, f.lossCalls
}

func connectedSnap() models.Snapshot {
	return models.Snapshot{
		IsConnected:        true,
		LinkType:           models.LinkWifi,
		CellularGeneration: models.CellularUnknown,
	}
}

func TestRunFullMeasurement(t *testing.T) {
	fp := &fakeProber{
		snap:     connectedSnap(),
		latency:  f64(30),
		jitter:   f64(4),
		downlink: f64(25),
		loss:     f64(0.2),
	}
	o := New(fp, testLogger())

	rec, err := o.Run(context.Background(), RunOptions{Extended: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rec.LatencyMs == nil || *rec.LatencyMs != 30 {
		t.Errorf("LatencyMs = %v, want 30", rec.LatencyMs)
	}
	if rec.DownlinkMbps == nil || *rec.DownlinkMbps != 25 {
		t.Errorf("DownlinkMbps = %v, want 25", rec.DownlinkMbps)
	}
	if rec.PacketLossPercent == nil || *rec.PacketLossPercent != 0.2 {
		t.Errorf("PacketLossPercent = %v, want 0.2", rec.PacketLossPercent)
	}
	if rec.FailureReason != "" {
		t.Errorf("FailureReason = %q, want empty", rec.FailureReason)
	}
	if !rec.IsConnected || rec.LinkType != models.LinkWifi {
		t.Errorf("snapshot fields not carried into record: %+v", rec)
	}
}

func TestRunOfflineShortCircuit(t *testing.T) {
	fp := &fakeProber{snap: models.Snapshot{IsConnected: false, LinkType: models.LinkNone}}
	o := New(fp, testLogger())

	rec, err := o.Run(context.Background(), RunOptions{Extended: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rec.FailureReason != "offline" {
		t.Errorf("FailureReason = %q, want offline", rec.FailureReason)
	}
	if rec.LatencyMs != nil || rec.DownlinkMbps != nil || rec.PacketLossPercent != nil {
		t.Errorf("expected all measured fields absent, got %+v", rec)
	}
	if l, tp, loss := fp.calls(); l != 0 || tp != 0 || loss != 0 {
		t.Errorf("expected zero probe invocations when offline, got latency=%d throughput=%d loss=%d", l, tp, loss)
	}
}

func TestRunSkipsLossUnlessExtended(t *testing.T) {
	fp := &fakeProber{snap: connectedSnap(), latency: f64(20), downlink: f64(10), loss: f64(1)}
	o := New(fp, testLogger())

	rec, err := o.Run(context.Background(), RunOptions{Extended: false})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rec.PacketLossPercent != nil {
		t.Errorf("PacketLossPercent = %v, want nil without extended mode", rec.PacketLossPercent)
	}
	if _, _, loss := fp.calls(); loss != 0 {
		t.Errorf("loss probe invoked %d times, want 0", loss)
	}
}

func TestRunKeepsPartialResultsOnTimeout(t *testing.T) {
	fp := &fakeProber{
		snap:            connectedSnap(),
		latency:         f64(40),
		downlink:        f64(50),
		throughputDelay: time.Second,
	}
	o := New(fp, testLogger())

	rec, err := o.Run(context.Background(), RunOptions{Timeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rec.LatencyMs == nil || *rec.LatencyMs != 40 {
		t.Errorf("LatencyMs = %v, want 40 (completed before deadline)", rec.LatencyMs)
	}
	if rec.DownlinkMbps != nil {
		t.Errorf("DownlinkMbps = %v, want nil for the probe cut short", rec.DownlinkMbps)
	}
	if rec.FailureReason == "" {
		t.Error("expected a timeout FailureReason")
	}
}

func TestRunHardCeilingOnStuckProbe(t *testing.T) {
	fp := &fakeProber{
		snap:            connectedSnap(),
		latency:         f64(40),
		downlink:        f64(50),
		throughputDelay: 2 * time.Second,
		ignoreContext:   true,
	}
	o := New(fp, testLogger())

	start := time.Now()
	rec, err := o.Run(context.Background(), RunOptions{Timeout: 100 * time.Millisecond})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if elapsed > time.Second {
		t.Errorf("Run() took %s, expected it to abandon the stuck probe near the deadline", elapsed)
	}
	if rec.FailureReason == "" {
		t.Error("expected a timeout FailureReason")
	}
}

func TestRunSnapshotFaultPropagates(t *testing.T) {
	fp := &fakeProber{snapErr: errors.New("netlink socket unavailable")}
	o := New(fp, testLogger())

	if _, err := o.Run(context.Background(), RunOptions{}); err == nil {
		t.Fatal("expected an error when the snapshot cannot be taken")
	}
	if o.Last() != nil {
		t.Error("failed run must not replace the cached record")
	}
}

func TestLastReflectsMostRecentRun(t *testing.T) {
	fp := &fakeProber{snap: connectedSnap(), latency: f64(10), downlink: f64(5)}
	o := New(fp, testLogger())

	if o.Last() != nil {
		t.Fatal("expected no cached record before the first run")
	}

	first, err := o.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if o.Last() != first {
		t.Error("cache does not hold the first record")
	}

	fp.latency = f64(99)
	second, err := o.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if o.Last() != second {
		t.Error("cache was not replaced by the second run")
	}
	if first.LatencyMs == nil || *first.LatencyMs != 10 {
		t.Error("earlier record was mutated by a later run")
	}
}
