// Package queue provides an unbounded, ordered delivery channel.
//
// Push never blocks, no matter whether anyone is receiving on Out. This lets
// a native event loop hand values to a consumer without ever stalling on it.
package queue

import (
	"sync"
	"sync/atomic"
)

// KeyFunc reports the coalescing key of a value. Values for which ok is false
// are never coalesced.
type KeyFunc[T any] func(v T) (key string, ok bool)

// Option configures a Queue.
type Option[T any] func(*Queue[T])

// WithCoalesce enables replacement of redundant values. When at least
// threshold values are waiting and the newest waiting value has the same key
// as the incoming one, the incoming value replaces it in place.
func WithCoalesce[T any](key KeyFunc[T], threshold int) Option[T] {
	return func(q *Queue[T]) {
		if threshold < 1 {
			threshold = 1
		}
		q.key = key
		q.threshold = threshold
	}
}

// Queue is an infinitely buffered channel. Values pushed are delivered on
// Out in push order.
type Queue[T any] struct {
	in      chan T
	out     chan T
	closing chan struct{}
	release chan struct{}
	done    chan struct{}

	key       KeyFunc[T]
	threshold int

	closeOnce   sync.Once
	releaseOnce sync.Once
	backlog     atomic.Int64
	coalesced   atomic.Int64
}

// New returns a running Queue. Call Close or Release to stop it.
func New[T any](opts ...Option[T]) *Queue[T] {
	q := &Queue[T]{
		in:      make(chan T),
		out:     make(chan T),
		closing: make(chan struct{}),
		release: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.run()
	return q
}

// Out returns the receive side. It is closed after Close once every value
// pushed before Close has been received, or immediately after Release.
func (q *Queue[T]) Out() <-chan T {
	return q.out
}

// Push appends v. It returns false if the queue was already closed or
// released, in which case v is dropped.
func (q *Queue[T]) Push(v T) bool {
	select {
	case <-q.closing:
		return false
	case <-q.release:
		return false
	default:
	}
	select {
	case q.in <- v:
		return true
	case <-q.closing:
		return false
	case <-q.release:
		return false
	}
}

// Close stops accepting values. Values already pushed are still delivered.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() { close(q.closing) })
}

// Release stops the queue and discards everything still buffered.
func (q *Queue[T]) Release() {
	q.releaseOnce.Do(func() { close(q.release) })
}

// Done is closed when the delivery goroutine has exited.
func (q *Queue[T]) Done() <-chan struct{} {
	return q.done
}

// Len reports how many values are buffered and not yet received.
func (q *Queue[T]) Len() int {
	return int(q.backlog.Load())
}

// Coalesced reports how many values were replaced by coalescing.
func (q *Queue[T]) Coalesced() int {
	return int(q.coalesced.Load())
}

func (q *Queue[T]) run() {
	defer close(q.done)
	defer close(q.out)

	// initialSize is the initial size of the circular buffer. It must be a
	// power of 2.
	const initialSize = 16
	i, j, buf, mask := 0, 0, make([]T, initialSize), initialSize-1
	var zero T
	closing := q.closing

	for {
		if closing == nil && i == j {
			return
		}
		maybeOut := q.out
		var next T
		if i == j {
			maybeOut = nil
		} else {
			next = buf[i&mask]
		}
		maybeIn := q.in
		if closing == nil {
			maybeIn = nil
		}

		select {
		case maybeOut <- next:
			buf[i&mask] = zero
			i++
			q.backlog.Add(-1)
		case v := <-maybeIn:
			if q.coalesce(buf, i, j, mask, v) {
				continue
			}
			// Allocate a bigger buffer if necessary.
			if i+len(buf) == j {
				b := make([]T, 2*len(buf))
				n := copy(b, buf[i&mask:])
				copy(b[n:], buf[:i&mask])
				i, j = 0, len(buf)
				buf, mask = b, len(b)-1
			}
			buf[j&mask] = v
			j++
			q.backlog.Add(1)
		case <-closing:
			// Drain: the in channel is unbuffered, so nothing is lost.
			closing = nil
		case <-q.release:
			q.backlog.Store(0)
			return
		}
	}
}

// coalesce replaces the newest buffered value with v when allowed.
func (q *Queue[T]) coalesce(buf []T, i, j, mask int, v T) bool {
	if q.key == nil || j-i < q.threshold || j == i {
		return false
	}
	k, ok := q.key(v)
	if !ok {
		return false
	}
	tail := buf[(j-1)&mask]
	tk, ok := q.key(tail)
	if !ok || tk != k {
		return false
	}
	buf[(j-1)&mask] = v
	q.coalesced.Add(1)
	return true
}
