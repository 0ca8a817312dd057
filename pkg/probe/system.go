package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/Jigsaw-Code/outline-sdk/transport"
	"github.com/Jigsaw-Code/outline-sdk/x/configurl"
	"github.com/spf13/viper"
)

// Endpoint defaults, overridable through the probe.* config keys.
const (
	defaultLatencyTarget = "www.gstatic.com:443"
	defaultThroughputURL = "https://speed.cloudflare.com/__down?bytes=25000000"
	defaultLossURL       = "https://www.gstatic.com/generate_204"
)

// SystemProber implements Prober against real endpoints. All probes dial
// through a single outline-sdk stream dialer, so an optional transport config
// string (e.g. a Shadowsocks or socks5 URL) reroutes every measurement the
// same way.
type SystemProber struct {
	dialer        transport.StreamDialer
	httpClient    *http.Client
	latencyTarget string
	throughputURL string
	lossURL       string
	logger        *slog.Logger
}

var _ Prober = (*SystemProber)(nil)

// NewSystemProber builds a prober from the probe.* config keys. An empty
// probe.transport yields a direct dialer.
func NewSystemProber(logger *slog.Logger) (*SystemProber, error) {
	transportConfig := viper.GetString("probe.transport")

	dialer, err := configurl.NewDefaultConfigToDialer().NewStreamDialer(transportConfig)
	if err != nil {
		return nil, fmt.Errorf("could not create dialer: %w", err)
	}

	dialContext := func(ctx context.Context, network, addr string) (net.Conn, error) {
		if !strings.HasPrefix(network, "tcp") {
			return nil, fmt.Errorf("protocol not supported: %v", network)
		}
		return dialer.DialStream(ctx, addr)
	}

	return &SystemProber{
		dialer: dialer,
		httpClient: &http.Client{
			Transport: &http.Transport{DialContext: dialContext},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		latencyTarget: stringOr(viper.GetString("probe.latency_target"), defaultLatencyTarget),
		throughputURL: stringOr(viper.GetString("probe.throughput_url"), defaultThroughputURL),
		lossURL:       stringOr(viper.GetString("probe.loss_url"), defaultLossURL),
		logger:        logger,
	}, nil
}

// Capabilities reports which optional snapshot fields this platform exposes.
func (p *SystemProber) Capabilities() Capabilities {
	return platformCapabilities
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
