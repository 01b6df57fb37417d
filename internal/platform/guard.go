package platform

import "sync"

// connGuard publishes a native connection to other goroutines and keeps it
// open while any of them is using it. Close waits for those uses to finish,
// and later uses see ErrConnectionClosed.
type connGuard[C any] struct {
	mu     sync.RWMutex
	conn   C
	open   bool
	closed bool
}

// set publishes conn. It has no effect after close.
func (g *connGuard[C]) set(conn C) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.conn, g.open = conn, true
}

// use runs fn with the connection held open.
func (g *connGuard[C]) use(fn func(C) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.open {
		return ErrConnectionClosed
	}
	return fn(g.conn)
}

// close runs release on the connection once no use is in progress. Only the
// first call releases.
func (g *connGuard[C]) close(release func(C)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	if g.open {
		g.open = false
		release(g.conn)
		var zero C
		g.conn = zero
	}
}
