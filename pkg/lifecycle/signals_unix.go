//go:build unix

package lifecycle

import (
	"os"
	"os/signal"
	"syscall"
)

// NewSignals subscribes to SIGCONT, the closest process analog of an
// application returning to the foreground, and fans it out to subscribers.
func NewSignals() *Signals {
	s := &Signals{Manual: NewManual()}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGCONT)
	go func() {
		for range ch {
			s.Fire()
		}
	}()
	return s
}
