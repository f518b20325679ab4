package domain

import (
	"testing"
)

func testTrack(id string) *Track {
	return NewTrack(id, "track "+id, 180, "https://example.com/"+id, "", "channel", false, TrackSourceYouTube)
}

func TestQueue_AppendReturnsPosition(t *testing.T) {
	q := NewQueue()

	for i, id := range []string{"a", "b", "c"} {
		pos := q.Append(testTrack(id))
		if pos != i+1 {
			t.Errorf("expected 1-based position %d, got %d", i+1, pos)
		}
	}

	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := NewQueue()
	q.Append(testTrack("first"))
	q.Append(testTrack("second"))
	q.Append(testTrack("third"))

	for _, want := range []string{"first", "second", "third"} {
		got := q.Pop()
		if got == nil {
			t.Fatal("unexpected empty queue")
		}
		if got.ID != want {
			t.Errorf("expected %q, got %q", want, got.ID)
		}
	}

	if !q.IsEmpty() {
		t.Error("expected drained queue")
	}
}

func TestQueue_PrependTakesPriority(t *testing.T) {
	q := NewQueue()
	q.Append(testTrack("queued-1"))
	q.Append(testTrack("queued-2"))

	q.Prepend(testTrack("forced"))

	if got := q.Peek(); got == nil || got.ID != "forced" {
		t.Fatalf("expected forced track at head, got %v", got)
	}

	// FIFO order preserved behind the forced track
	q.Pop()
	if got := q.Pop(); got.ID != "queued-1" {
		t.Errorf("expected queued-1 after forced track, got %q", got.ID)
	}
}

func TestQueue_EmptyIsValidState(t *testing.T) {
	q := NewQueue()

	if got := q.Peek(); got != nil {
		t.Errorf("expected nil peek on empty queue, got %v", got)
	}
	if got := q.Pop(); got != nil {
		t.Errorf("expected nil pop on empty queue, got %v", got)
	}
}

func TestQueue_ListReturnsCopy(t *testing.T) {
	q := NewQueue()
	q.Append(testTrack("a"))
	q.Append(testTrack("b"))

	list := q.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(list))
	}

	// Mutating the snapshot must not affect the queue
	list[0] = testTrack("x")
	if q.Peek().ID != "a" {
		t.Error("expected queue head unaffected by snapshot mutation")
	}
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()
	q.Append(testTrack("a"))
	q.Append(testTrack("b"))

	q.Clear()

	if !q.IsEmpty() {
		t.Errorf("expected empty queue after clear, got length %d", q.Len())
	}
}
