//go:build !linux

package probe

var platformCapabilities = Capabilities{}

// wifiSignalDBM is unavailable on this platform; the snapshot field stays nil.
func wifiSignalDBM(string) *int {
	return nil
}
