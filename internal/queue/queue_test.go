package queue

import (
	"fmt"
	"testing"
	"time"
)

func drain[T any](t *testing.T, q *Queue[T]) []T {
	t.Helper()
	var got []T
	timeout := time.After(5 * time.Second)
	for {
		select {
		case v, ok := <-q.Out():
			if !ok {
				return got
			}
			got = append(got, v)
		case <-timeout:
			t.Fatalf("drain timed out after %d values", len(got))
		}
	}
}

func TestQueue_PushNeverBlocksWithoutReceiver(t *testing.T) {
	q := New[int]()
	defer q.Release()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			q.Push(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Push blocked with no receiver")
	}
	deadline := time.Now().Add(time.Second)
	for q.Len() != 1000 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if q.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", q.Len())
	}
}

func TestQueue_PreservesOrderAcrossGrowth(t *testing.T) {
	q := New[int]()
	for i := 0; i < 100; i++ {
		q.Push(i)
	}
	q.Close()

	got := drain(t, q)
	if len(got) != 100 {
		t.Fatalf("received %d values, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("value %d = %d, want %d", i, v, i)
		}
	}
}

func TestQueue_CloseDeliversPendingThenCloses(t *testing.T) {
	q := New[string]()
	q.Push("a")
	q.Push("b")
	q.Close()

	if q.Push("c") {
		t.Fatal("Push after Close returned true")
	}
	got := drain(t, q)
	if fmt.Sprint(got) != "[a b]" {
		t.Fatalf("got %v, want [a b]", got)
	}
	select {
	case <-q.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after drain")
	}
}

func TestQueue_ReleaseDiscards(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Release()

	select {
	case <-q.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Release")
	}
	if q.Push(2) {
		t.Fatal("Push after Release returned true")
	}
	if q.Len() != 0 {
		t.Fatalf("Len() = %d after Release, want 0", q.Len())
	}
}

type item struct {
	kind string
	n    int
}

func geometryKey(v item) (string, bool) {
	if v.kind == "resize" || v.kind == "move" {
		return v.kind, true
	}
	return "", false
}

func TestQueue_CoalesceOnlyTailOfSameKind(t *testing.T) {
	q := New[item](WithCoalesce(geometryKey, 2))
	in := []item{
		{"key", 1},
		{"resize", 1},
		{"resize", 2}, // backlog 2, tail resize: replaces
		{"resize", 3}, // replaces again
		{"key", 2},
		{"resize", 4}, // tail is key: appended
		{"move", 1},   // tail is resize: appended
	}
	for _, v := range in {
		q.Push(v)
	}
	q.Close()

	got := drain(t, q)
	want := []item{{"key", 1}, {"resize", 3}, {"key", 2}, {"resize", 4}, {"move", 1}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if q.Coalesced() != 2 {
		t.Fatalf("Coalesced() = %d, want 2", q.Coalesced())
	}
}

func TestQueue_CoalesceBelowThresholdKeepsEverything(t *testing.T) {
	q := New[item](WithCoalesce(geometryKey, 10))
	for i := 0; i < 5; i++ {
		q.Push(item{"resize", i})
	}
	q.Close()

	if got := drain(t, q); len(got) != 5 {
		t.Fatalf("received %d values, want 5", len(got))
	}
}
