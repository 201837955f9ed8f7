// Package mpsc provides an unbounded multi-producer, single-consumer queue
// built from a pair of channels and an internal pump goroutine. Sends never
// block; a slow consumer grows the in-memory backlog without bound.
package mpsc

import "sync"

// Queue is an unbounded FIFO queue of T. Producers send on In and close the
// queue with Close; the consumer ranges over Out, which is closed once the
// queue is closed and drained.
type Queue[T any] struct {
	in  chan T
	out chan T

	closeOnce sync.Once
}

// New creates a queue and starts its pump goroutine.
func New[T any]() *Queue[T] {
	q := &Queue[T]{
		in:  make(chan T),
		out: make(chan T),
	}
	go q.pump()
	return q
}

// In returns the producer side of the queue.
func (q *Queue[T]) In() chan<- T { return q.in }

// Out returns the consumer side of the queue. It is closed after Close once
// all buffered values have been delivered.
func (q *Queue[T]) Out() <-chan T { return q.out }

// Close stops the producer side. Safe to call more than once, but any Send
// racing with Close panics, as with ordinary channels.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() { close(q.in) })
}

// Send enqueues v without blocking on the consumer.
func (q *Queue[T]) Send(v T) {
	q.in <- v
}

func (q *Queue[T]) pump() {
	var backlog []T
	in := q.in
	for {
		var out chan T
		var head T
		if len(backlog) > 0 {
			out = q.out
			head = backlog[0]
		} else if in == nil {
			close(q.out)
			return
		}

		select {
		case v, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			backlog = append(backlog, v)
		case out <- head:
			backlog = backlog[1:]
		}
	}
}
