// Package lifecycle provides the application-resume trigger that watch
// sessions subscribe to. The original foreground/background transition is
// modeled as a generic Trigger so any embedding environment can supply its
// own source.
package lifecycle

import "sync"

// Trigger delivers resume events to subscribers. Subscribe returns a cancel
// function that releases the subscription; firing after cancel is a no-op for
// that subscriber.
type Trigger interface {
	Subscribe(fn func()) (cancel func())
}

// Manual is a Trigger fired explicitly via Fire. It backs the signal-based
// trigger and serves tests and embedders that own their lifecycle events.
type Manual struct {
	mu   sync.Mutex
	seq  int
	subs map[int]func()
}

func NewManual() *Manual {
	return &Manual{subs: make(map[int]func())}
}

func (m *Manual) Subscribe(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.seq
	m.seq++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Fire invokes every current subscriber. Callbacks run outside the lock so a
// subscriber may cancel or resubscribe from within its callback.
func (m *Manual) Fire() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Signals is the process-level resume trigger. On unix it fires when the
// process returns to the foreground (SIGCONT); elsewhere it never fires.
type Signals struct {
	*Manual
}
