package probe

import (
	"context"
	"math"
	"time"
)

// LatencyProbe times TCP handshakes to the latency target. Each sample gets
// its own timeout; failed samples are dropped rather than aborting the probe.
func (p *SystemProber) LatencyProbe(ctx context.Context, sampleCount int, perSampleTimeout time.Duration) (*float64, *float64, error) {
	samples := make([]float64, 0, sampleCount)

	for i := 0; i < sampleCount; i++ {
		if ctx.Err() != nil {
			break
		}

		sampleCtx, cancel := context.WithTimeout(ctx, perSampleTimeout)
		start := time.Now()
		conn, err := p.dialer.DialStream(sampleCtx, p.latencyTarget)
		elapsed := time.Since(start)
		cancel()

		if err != nil {
			p.logger.Debug("latency sample failed", "target", p.latencyTarget, "sample", i, "error", err)
			continue
		}
		conn.Close()
		samples = append(samples, float64(elapsed.Microseconds())/1000.0)
	}

	if len(samples) == 0 {
		return nil, nil, nil
	}

	mean, jitter := latencyStats(samples)
	return &mean, jitter, nil
}

// latencyStats returns the mean RTT and, given at least two samples, the mean
// absolute difference between consecutive samples as jitter.
func latencyStats(samples []float64) (float64, *float64) {
	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))

	if len(samples) < 2 {
		return mean, nil
	}

	var diffSum float64
	for i := 1; i < len(samples); i++ {
		diffSum += math.Abs(samples[i] - samples[i-1])
	}
	jitter := diffSum / float64(len(samples)-1)
	return mean, &jitter
}
