package usecases

import "sync"

// keyedMutex provides one mutex per chat id so requests for the same chat
// serialize while different chats proceed in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[int64]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given chat and returns its unlock func.
func (k *keyedMutex) Lock(chatID int64) func() {
	k.mu.Lock()
	m, ok := k.locks[chatID]
	if !ok {
		m = &sync.Mutex{}
		k.locks[chatID] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
