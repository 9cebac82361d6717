package containers

import (
	"errors"
	"testing"
)

func TestRingQueueWraps(t *testing.T) {
	rq := NewRingQueue[int](3)
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("expected ErrQueueEmpty, got %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := rq.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	if v, _ := rq.Dequeue(); v != 1 {
		t.Errorf("expected 1, got %d", v)
	}
	_ = rq.Enqueue(4)
	if v, _ := rq.Peek(); v != 2 {
		t.Errorf("expected 2, got %d", v)
	}
	got := rq.Items()
	expected := []int{2, 3, 4}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, got)
			break
		}
	}
}

func TestRingQueuePushDropsOldest(t *testing.T) {
	rq := NewRingQueue[string](2)
	rq.Push("a")
	rq.Push("b")
	rq.Push("c")
	if rq.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", rq.Len())
	}
	items := rq.Items()
	if items[0] != "b" || items[1] != "c" {
		t.Errorf("expected [b c], got %v", items)
	}

	empty := NewRingQueue[string](0)
	empty.Push("x")
	if empty.Len() != 0 {
		t.Errorf("expected a zero sized queue to stay empty, got %d", empty.Len())
	}
}
