package mpsc

import (
	"testing"
	"time"
)

func TestQueue_OrderAndDrain(t *testing.T) {
	q := New[int]()

	// Sends must not block regardless of consumer progress
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			q.Send(i)
		}
		q.Close()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer blocked on unbounded queue")
	}

	var got []int
	for v := range q.Out() {
		got = append(got, v)
	}

	if len(got) != 1000 {
		t.Fatalf("expected 1000 values, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("value %d out of order: got %d", i, v)
		}
	}
}

func TestQueue_CloseWithoutValues(t *testing.T) {
	q := New[string]()
	q.Close()
	q.Close() // idempotent

	select {
	case _, ok := <-q.Out():
		if ok {
			t.Fatal("unexpected value from empty queue")
		}
	case <-time.After(time.Second):
		t.Fatal("Out was not closed")
	}
}

func TestQueue_InterleavedConsumer(t *testing.T) {
	q := New[int]()

	q.Send(1)
	if v := <-q.Out(); v != 1 {
		t.Fatalf("expected 1, got %d", v)
	}

	q.Send(2)
	q.Send(3)
	q.Close()

	if v := <-q.Out(); v != 2 {
		t.Fatalf("expected 2, got %d", v)
	}
	if v := <-q.Out(); v != 3 {
		t.Fatalf("expected 3, got %d", v)
	}
	if _, ok := <-q.Out(); ok {
		t.Fatal("expected closed channel after drain")
	}
}
