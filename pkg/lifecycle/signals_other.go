//go:build !unix

package lifecycle

// NewSignals returns a trigger that never fires; this platform has no resume
// signal. Manual refresh still works.
func NewSignals() *Signals {
	return &Signals{Manual: NewManual()}
}
