package probe

import (
	"context"
	"net/http"
	"time"
)

// PacketLossProbe approximates packet loss by issuing small HEAD requests and
// counting the share that fail or time out. This is a coarse application-level
// estimate, not protocol-level packet inspection.
func (p *SystemProber) PacketLossProbe(ctx context.Context, attemptCount int, perAttemptTimeout time.Duration) (*float64, error) {
	var attempted, failed int

	for i := 0; i < attemptCount; i++ {
		if ctx.Err() != nil {
			break
		}
		attempted++

		attemptCtx, cancel := context.WithTimeout(ctx, perAttemptTimeout)
		req, err := http.NewRequestWithContext(attemptCtx, http.MethodHead, p.lossURL, nil)
		if err != nil {
			cancel()
			failed++
			continue
		}

		resp, err := p.httpClient.Do(req)
		cancel()
		if err != nil {
			failed++
			continue
		}
		resp.Body.Close()
	}

	if attempted == 0 {
		return nil, nil
	}

	loss := float64(failed) / float64(attempted) * 100
	return &loss, nil
}
