package probe

import (
	"context"
	"net/http"
	"time"
)

// ThroughputProbe downloads the payload URL for roughly duration and derives
// the downlink rate from the bytes transferred. A failed request or an empty
// body yields a nil rate, not an error.
func (p *SystemProber) ThroughputProbe(ctx context.Context, duration, timeout time.Duration) (*float64, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.throughputURL, nil)
	if err != nil {
		return nil, nil
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Debug("throughput request failed", "url", p.throughputURL, "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	deadline := start.Add(duration)
	buf := make([]byte, 32*1024)
	var total int64
	for time.Now().Before(deadline) {
		n, err := resp.Body.Read(buf)
		total += int64(n)
		if err != nil {
			break
		}
	}

	elapsed := time.Since(start).Seconds()
	if total == 0 || elapsed <= 0 {
		return nil, nil
	}

	mbps := float64(total) * 8 / 1e6 / elapsed
	return &mbps, nil
}
