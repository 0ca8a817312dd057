package probe

import (
	"context"
	"fmt"
	"net"
	"strings"

	"network-quality/pkg/models"
)

// ConnectivitySnapshot classifies the active network interfaces. It only
// inspects local interface state, so it completes in milliseconds with no
// network I/O. An enumeration failure is the unrecoverable-fault class.
func (p *SystemProber) ConnectivitySnapshot(ctx context.Context) (models.Snapshot, error) {
	_ = ctx // local enumeration, no blocking work to cancel

	ifaces, err := net.Interfaces()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("enumerating interfaces: %w", err)
	}

	snap := models.Snapshot{
		LinkType:           models.LinkNone,
		CellularGeneration: models.CellularUnknown,
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagRunning == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}

		linkType := classifyInterface(iface.Name)
		snap.IsConnected = true

		// Prefer the most specific classification: wifi and cellular beat
		// an unknown wired link.
		if snap.LinkType == models.LinkNone || snap.LinkType == models.LinkUnknown {
			snap.LinkType = linkType
		}
		if linkType == models.LinkWifi {
			snap.LinkType = models.LinkWifi
			if snap.WifiSignalDBM == nil {
				snap.WifiSignalDBM = wifiSignalDBM(iface.Name)
			}
		}
	}

	return snap, nil
}

// classifyInterface maps an interface name to a link type. Cellular signal
// strength and generation are not exposed through this path on any platform
// we run on, so those snapshot fields stay nil here.
func classifyInterface(name string) models.LinkType {
	lower := strings.ToLower(name)
	for _, prefix := range []string{"wlan", "wlp", "wl", "ath", "wifi", "awdl"} {
		if strings.HasPrefix(lower, prefix) {
			return models.LinkWifi
		}
	}
	for _, prefix := range []string{"wwan", "rmnet", "ppp", "cdc-wdm"} {
		if strings.HasPrefix(lower, prefix) {
			return models.LinkCellular
		}
	}
	return models.LinkUnknown
}
