//go:build linux

package probe

import (
	"os"
	"strconv"
	"strings"
)

var platformCapabilities = Capabilities{WifiSignal: true}

const wirelessStats = "/proc/net/wireless"

// wifiSignalDBM reads the signal level for a wireless interface from
// /proc/net/wireless. Returns nil when the interface has no wireless stats or
// the kernel reports a non-dBm value.
func wifiSignalDBM(ifname string) *int {
	data, err := os.ReadFile(wirelessStats)
	if err != nil {
		return nil
	}
	return parseWirelessLevel(string(data), ifname)
}

func parseWirelessLevel(content, ifname string) *int {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || strings.TrimSuffix(fields[0], ":") != ifname {
			continue
		}
		// Fields: status, link quality, level. Level is dBm with a trailing dot.
		level := strings.TrimSuffix(fields[3], ".")
		v, err := strconv.Atoi(level)
		if err != nil || v >= 0 {
			return nil
		}
		return &v
	}
	return nil
}
