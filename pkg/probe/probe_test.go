package probe

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Jigsaw-Code/outline-sdk/transport"

	"network-quality/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLatencyStats(t *testing.T) {
	tests := []struct {
		name       string
		samples    []float64
		wantMean   float64
		wantJitter *float64
	}{
		{
			name:       "single sample has no jitter",
			samples:    []float64{42},
			wantMean:   42,
			wantJitter: nil,
		},
		{
			name:       "two samples",
			samples:    []float64{10, 20},
			wantMean:   15,
			wantJitter: func() *float64 { v := 10.0; return &v }(),
		},
		{
			name:       "jitter is mean absolute consecutive difference",
			samples:    []float64{10, 30, 20},
			wantMean:   20,
			wantJitter: func() *float64 { v := 15.0; return &v }(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, jitter := latencyStats(tt.samples)
			if !almostEqual(mean, tt.wantMean) {
				t.Errorf("mean = %v, want %v", mean, tt.wantMean)
			}
			if (jitter == nil) != (tt.wantJitter == nil) {
				t.Fatalf("jitter = %v, want %v", jitter, tt.wantJitter)
			}
			if jitter != nil && !almostEqual(*jitter, *tt.wantJitter) {
				t.Errorf("jitter = %v, want %v", *jitter, *tt.wantJitter)
			}
		})
	}
}

func TestClassifyInterface(t *testing.T) {
	tests := []struct {
		name string
		want models.LinkType
	}{
		{"wlan0", models.LinkWifi},
		{"wlp3s0", models.LinkWifi},
		{"wwan0", models.LinkCellular},
		{"rmnet_data0", models.LinkCellular},
		{"ppp0", models.LinkCellular},
		{"eth0", models.LinkUnknown},
		{"en0", models.LinkUnknown},
	}
	for _, tt := range tests {
		if got := classifyInterface(tt.name); got != tt.want {
			t.Errorf("classifyInterface(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLatencyProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	p := &SystemProber{
		dialer:        &transport.TCPDialer{},
		latencyTarget: ln.Addr().String(),
		logger:        testLogger(),
	}

	mean, jitter, err := p.LatencyProbe(context.Background(), 3, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("LatencyProbe() error = %v", err)
	}
	if mean == nil || *mean < 0 {
		t.Fatalf("expected a non-negative mean, got %v", mean)
	}
	if jitter == nil {
		t.Fatal("expected jitter with three successful samples")
	}
}

func TestLatencyProbeAllSamplesFail(t *testing.T) {
	// Reserved TEST-NET-1 address, nothing listens there.
	p := &SystemProber{
		dialer:        &transport.TCPDialer{},
		latencyTarget: "192.0.2.1:9",
		logger:        testLogger(),
	}

	mean, jitter, err := p.LatencyProbe(context.Background(), 2, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("LatencyProbe() error = %v", err)
	}
	if mean != nil || jitter != nil {
		t.Errorf("expected nil results when every sample fails, got mean=%v jitter=%v", mean, jitter)
	}
}

func TestThroughputProbe(t *testing.T) {
	payload := make([]byte, 256*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	p := &SystemProber{
		httpClient:    srv.Client(),
		throughputURL: srv.URL,
		logger:        testLogger(),
	}

	mbps, err := p.ThroughputProbe(context.Background(), 500*time.Millisecond, 2*time.Second)
	if err != nil {
		t.Fatalf("ThroughputProbe() error = %v", err)
	}
	if mbps == nil || *mbps <= 0 {
		t.Fatalf("expected a positive downlink rate, got %v", mbps)
	}
}

func TestThroughputProbeUnreachable(t *testing.T) {
	p := &SystemProber{
		httpClient:    &http.Client{},
		throughputURL: "http://192.0.2.1:9/payload",
		logger:        testLogger(),
	}

	mbps, err := p.ThroughputProbe(context.Background(), 100*time.Millisecond, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("ThroughputProbe() error = %v", err)
	}
	if mbps != nil {
		t.Errorf("expected nil rate for unreachable endpoint, got %v", *mbps)
	}
}

func TestPacketLossProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := &SystemProber{
		httpClient: srv.Client(),
		lossURL:    srv.URL,
		logger:     testLogger(),
	}

	loss, err := p.PacketLossProbe(context.Background(), 4, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("PacketLossProbe() error = %v", err)
	}
	if loss == nil || *loss != 0 {
		t.Fatalf("expected 0%% loss against a healthy endpoint, got %v", loss)
	}
}

func TestPacketLossProbeAllTimeouts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	p := &SystemProber{
		httpClient: srv.Client(),
		lossURL:    srv.URL,
		logger:     testLogger(),
	}

	loss, err := p.PacketLossProbe(context.Background(), 3, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("PacketLossProbe() error = %v", err)
	}
	if loss == nil || *loss != 100 {
		t.Fatalf("expected 100%% loss when every attempt times out, got %v", loss)
	}
}
