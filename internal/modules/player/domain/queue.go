package domain

// Queue is an ordered list of pending tracks for a single chat.
// Insertion order is preserved, except force-inserted tracks which are
// placed at the front ahead of the next slot.
type Queue struct {
	tracks []*Track
}

// NewQueue creates a new empty Queue.
func NewQueue() *Queue {
	return &Queue{
		tracks: make([]*Track, 0),
	}
}

// Len returns the number of pending tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Append adds a track to the tail and returns its 1-based position.
func (q *Queue) Append(track *Track) int {
	q.tracks = append(q.tracks, track)
	return len(q.tracks)
}

// Prepend inserts a track at the head, ahead of previously queued tracks.
func (q *Queue) Prepend(track *Track) {
	q.tracks = append([]*Track{track}, q.tracks...)
}

// Peek returns the head track without removing it, or nil when drained.
func (q *Queue) Peek() *Track {
	if q.IsEmpty() {
		return nil
	}
	return q.tracks[0]
}

// Pop removes and returns the head track, or nil when drained.
func (q *Queue) Pop() *Track {
	if q.IsEmpty() {
		return nil
	}
	track := q.tracks[0]
	q.tracks = q.tracks[1:]
	return track
}

// List returns a copy of all pending tracks in order.
func (q *Queue) List() []*Track {
	result := make([]*Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Clear removes all pending tracks.
func (q *Queue) Clear() {
	q.tracks = q.tracks[:0]
}
