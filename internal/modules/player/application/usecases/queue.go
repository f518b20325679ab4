package usecases

import (
	"sync"

	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

// DefaultQueueLimit bounds per-chat queues when no limit is configured.
const DefaultQueueLimit = 20

// QueueService manages the in-memory per-chat playback queues. All position
// assignment for one chat is serialized; different chats proceed in parallel.
type QueueService struct {
	limit int

	mu     sync.Mutex
	queues map[int64]*chatQueue
}

type chatQueue struct {
	mu    sync.Mutex
	queue *domain.Queue
}

// NewQueueService creates a QueueService with the given per-chat bound.
func NewQueueService(limit int) *QueueService {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	return &QueueService{
		limit:  limit,
		queues: make(map[int64]*chatQueue),
	}
}

func (s *QueueService) chat(chatID int64) *chatQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	cq, ok := s.queues[chatID]
	if !ok {
		cq = &chatQueue{queue: domain.NewQueue()}
		s.queues[chatID] = cq
	}
	return cq
}

// Enqueue appends the track and returns its 1-based position, or
// ErrQueueFull when the chat's queue already holds the configured maximum.
func (s *QueueService) Enqueue(chatID int64, track *domain.Track) (int, error) {
	cq := s.chat(chatID)
	cq.mu.Lock()
	defer cq.mu.Unlock()

	if cq.queue.Len() >= s.limit {
		return 0, ErrQueueFull
	}
	return cq.queue.Append(track), nil
}

// ForceEnqueue inserts the track at the head, bypassing the full-queue
// check. A privileged override must always be able to jump the line.
func (s *QueueService) ForceEnqueue(chatID int64, track *domain.Track) {
	cq := s.chat(chatID)
	cq.mu.Lock()
	defer cq.mu.Unlock()

	cq.queue.Prepend(track)
}

// PeekNext returns the head track without removing it; nil when drained.
func (s *QueueService) PeekNext(chatID int64) *domain.Track {
	cq := s.chat(chatID)
	cq.mu.Lock()
	defer cq.mu.Unlock()

	return cq.queue.Peek()
}

// PopNext removes and returns the head track; nil when drained.
func (s *QueueService) PopNext(chatID int64) *domain.Track {
	cq := s.chat(chatID)
	cq.mu.Lock()
	defer cq.mu.Unlock()

	return cq.queue.Pop()
}

// Length returns the number of pending tracks for the chat.
func (s *QueueService) Length(chatID int64) int {
	cq := s.chat(chatID)
	cq.mu.Lock()
	defer cq.mu.Unlock()

	return cq.queue.Len()
}

// List returns a snapshot of the chat's pending tracks.
func (s *QueueService) List(chatID int64) []*domain.Track {
	cq := s.chat(chatID)
	cq.mu.Lock()
	defer cq.mu.Unlock()

	return cq.queue.List()
}

// Clear drops all pending tracks for the chat.
func (s *QueueService) Clear(chatID int64) {
	cq := s.chat(chatID)
	cq.mu.Lock()
	defer cq.mu.Unlock()

	cq.queue.Clear()
}
