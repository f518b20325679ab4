package usecases

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

// SessionStore is the single source of truth, with a memory cache, for
// chat-level and user-level flags. Reads populate the cache lazily from the
// persistent store; mutations write through. Active-call state is ephemeral
// and never persisted.
type SessionStore struct {
	repo     ports.SessionRepository
	gateway  ports.ChatGateway
	poolSize int
	ownerID  int64

	// intn is injectable for deterministic tests; defaults to rand.Intn.
	intn func(n int) int

	assign *keyedMutex

	mu          sync.RWMutex
	activeCalls map[int64]bool
	assistants  map[int64]int
	playModes   map[int64]domain.PlayMode
	admins      map[int64][]int64
	auth        map[int64]map[int64]struct{}
	chats       map[int64]struct{}
	users       map[int64]struct{}
	blChats     map[int64]struct{}
	blUsers     map[int64]struct{}
	sudoers     map[int64]struct{}
	logger      bool
}

// NewSessionStore creates a SessionStore over the given repository and
// chat gateway. poolSize is the number of available assistants.
func NewSessionStore(repo ports.SessionRepository, gateway ports.ChatGateway, poolSize int, ownerID int64) *SessionStore {
	return &SessionStore{
		repo:        repo,
		gateway:     gateway,
		poolSize:    poolSize,
		ownerID:     ownerID,
		intn:        rand.Intn,
		assign:      newKeyedMutex(),
		activeCalls: make(map[int64]bool),
		assistants:  make(map[int64]int),
		playModes:   make(map[int64]domain.PlayMode),
		admins:      make(map[int64][]int64),
		auth:        make(map[int64]map[int64]struct{}),
		chats:       make(map[int64]struct{}),
		users:       make(map[int64]struct{}),
		blChats:     make(map[int64]struct{}),
		blUsers:     make(map[int64]struct{}),
		sudoers:     make(map[int64]struct{}),
	}
}

// LoadCache loads the global collections fully into memory. Expected
// cardinality is small; scaling past that is a non-goal. Any failure here is
// fatal to startup.
func (s *SessionStore) LoadCache(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	chats, err := s.repo.Chats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load chats: %w", err)
	}
	users, err := s.repo.Users(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	blChats, err := s.repo.CacheSet(ctx, ports.CacheBlacklistedChats)
	if err != nil {
		return fmt.Errorf("failed to load blacklisted chats: %w", err)
	}
	blUsers, err := s.repo.CacheSet(ctx, ports.CacheBlacklistedUsers)
	if err != nil {
		return fmt.Errorf("failed to load blacklisted users: %w", err)
	}
	sudoers, err := s.repo.CacheSet(ctx, ports.CacheSudoers)
	if err != nil {
		return fmt.Errorf("failed to load sudoers: %w", err)
	}
	logger, err := s.repo.LoggerEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load logger flag: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = toSet(chats)
	s.users = toSet(users)
	s.blChats = toSet(blChats)
	s.blUsers = toSet(blUsers)
	s.sudoers = toSet(sudoers)
	s.logger = logger

	return nil
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// --- calls (ephemeral, cache only) ---

// IsActiveCall reports whether the chat has an active voice call.
func (s *SessionStore) IsActiveCall(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeCalls[chatID]
}

// SetActiveCall records the chat's call state. Cache only: call state is
// reset on process restart.
func (s *SessionStore) SetActiveCall(chatID int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if active {
		s.activeCalls[chatID] = true
	} else {
		delete(s.activeCalls, chatID)
	}
}

// --- assistants ---

// GetAssistant returns the chat's assigned assistant index, assigning one
// uniformly at random and persisting it on first use. Once assigned, the
// mapping is stable for the life of the chat.
func (s *SessionStore) GetAssistant(ctx context.Context, chatID int64) (int, error) {
	s.mu.RLock()
	num, ok := s.assistants[chatID]
	s.mu.RUnlock()
	if ok {
		return num, nil
	}

	// Serialize assignment per chat so concurrent requests agree.
	unlock := s.assign.Lock(chatID)
	defer unlock()

	s.mu.RLock()
	num, ok = s.assistants[chatID]
	s.mu.RUnlock()
	if ok {
		return num, nil
	}

	num, err := s.repo.AssistantNum(ctx, chatID)
	if err != nil {
		return 0, err
	}
	if num < 1 || num > s.poolSize {
		num = s.intn(s.poolSize) + 1
		if err := s.repo.SetAssistantNum(ctx, chatID, num); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	s.assistants[chatID] = num
	s.mu.Unlock()
	return num, nil
}

// --- play mode ---

// GetPlayMode returns the chat's play mode, defaulting to youtube when unset.
func (s *SessionStore) GetPlayMode(ctx context.Context, chatID int64) (domain.PlayMode, error) {
	s.mu.RLock()
	mode, ok := s.playModes[chatID]
	s.mu.RUnlock()
	if ok {
		return mode, nil
	}

	raw, err := s.repo.PlayMode(ctx, chatID)
	if err != nil {
		return "", err
	}

	mode = domain.DefaultPlayMode
	if raw != "" {
		parsed, err := domain.ParsePlayMode(raw)
		if err == nil {
			mode = parsed
		}
	}

	s.mu.Lock()
	s.playModes[chatID] = mode
	s.mu.Unlock()
	return mode, nil
}

// SetPlayMode validates, normalizes, and persists the chat's play mode.
// Invalid modes are rejected without touching stored state.
func (s *SessionStore) SetPlayMode(ctx context.Context, chatID int64, mode string) (domain.PlayMode, error) {
	parsed, err := domain.ParsePlayMode(mode)
	if err != nil {
		return "", err
	}

	if err := s.repo.SetPlayMode(ctx, chatID, string(parsed)); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.playModes[chatID] = parsed
	s.mu.Unlock()
	return parsed, nil
}

// --- admins ---

// GetAdmins returns the chat's administrator ids, cached. A forced reload
// bypasses the cache and re-fetches from the chat platform.
func (s *SessionStore) GetAdmins(ctx context.Context, chatID int64, reload bool) ([]int64, error) {
	if !reload {
		s.mu.RLock()
		cached, ok := s.admins[chatID]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}
	}

	ids, err := s.gateway.AdminIDs(ctx, chatID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.admins[chatID] = ids
	s.mu.Unlock()
	return ids, nil
}

// IsPrivileged reports whether the user may run privileged commands in the
// chat: chat admins, authorized users, sudoers, and the owner qualify.
func (s *SessionStore) IsPrivileged(ctx context.Context, chatID, userID int64) (bool, error) {
	if userID == s.ownerID && userID != 0 {
		return true, nil
	}
	if s.IsSudoer(userID) {
		return true, nil
	}

	ok, err := s.IsAuthorized(ctx, chatID, userID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	admins, err := s.GetAdmins(ctx, chatID, false)
	if err != nil {
		return false, err
	}
	for _, id := range admins {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// --- auth set ---

func (s *SessionStore) authSet(ctx context.Context, chatID int64) (map[int64]struct{}, error) {
	s.mu.RLock()
	set, ok := s.auth[chatID]
	s.mu.RUnlock()
	if ok {
		return set, nil
	}

	ids, err := s.repo.AuthUsers(ctx, chatID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.auth[chatID]; ok {
		return existing, nil
	}
	set = toSet(ids)
	s.auth[chatID] = set
	return set, nil
}

// IsAuthorized reports whether the user is in the chat's auth set.
func (s *SessionStore) IsAuthorized(ctx context.Context, chatID, userID int64) (bool, error) {
	set, err := s.authSet(ctx, chatID)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := set[userID]
	return ok, nil
}

// GrantAuth adds the user to the chat's auth set. Granting an already
// authorized user is a no-op against the store.
func (s *SessionStore) GrantAuth(ctx context.Context, chatID, userID int64) error {
	set, err := s.authSet(ctx, chatID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := set[userID]; ok {
		s.mu.Unlock()
		return nil
	}
	set[userID] = struct{}{}
	s.mu.Unlock()

	return s.repo.AddAuthUser(ctx, chatID, userID)
}

// RevokeAuth removes the user from the chat's auth set. Revoking an absent
// user is a no-op against the store.
func (s *SessionStore) RevokeAuth(ctx context.Context, chatID, userID int64) error {
	set, err := s.authSet(ctx, chatID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := set[userID]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(set, userID)
	s.mu.Unlock()

	return s.repo.RemoveAuthUser(ctx, chatID, userID)
}

// --- served chats/users bookkeeping ---

// RememberChat records a chat the bot serves, once.
func (s *SessionStore) RememberChat(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	if _, ok := s.chats[chatID]; ok {
		s.mu.Unlock()
		return nil
	}
	s.chats[chatID] = struct{}{}
	s.mu.Unlock()

	return s.repo.AddChat(ctx, chatID)
}

// RememberUser records a user the bot serves, once.
func (s *SessionStore) RememberUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	if _, ok := s.users[userID]; ok {
		s.mu.Unlock()
		return nil
	}
	s.users[userID] = struct{}{}
	s.mu.Unlock()

	return s.repo.AddUser(ctx, userID)
}

// ChatCount returns the number of served chats.
func (s *SessionStore) ChatCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

// UserCount returns the number of served users.
func (s *SessionStore) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// --- blacklists and sudoers ---

// IsBlacklistedChat reports whether the chat is blacklisted.
func (s *SessionStore) IsBlacklistedChat(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blChats[chatID]
	return ok
}

// IsBlacklistedUser reports whether the user is blacklisted.
func (s *SessionStore) IsBlacklistedUser(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blUsers[userID]
	return ok
}

// IsOwner reports whether the user is the configured bot owner.
func (s *SessionStore) IsOwner(userID int64) bool {
	return userID != 0 && userID == s.ownerID
}

// IsOperator reports whether the user may run maintenance commands:
// the owner and sudoers qualify.
func (s *SessionStore) IsOperator(userID int64) bool {
	return s.IsOwner(userID) || s.IsSudoer(userID)
}

// IsSudoer reports whether the user is a sudoer.
func (s *SessionStore) IsSudoer(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sudoers[userID]
	return ok
}

// SetBlacklistedChat adds or removes a chat from the blacklist, touching
// both the memory set and the store.
func (s *SessionStore) SetBlacklistedChat(ctx context.Context, chatID int64, blacklisted bool) error {
	return s.mutateCacheSet(ctx, ports.CacheBlacklistedChats, s.blChats, chatID, blacklisted)
}

// SetBlacklistedUser adds or removes a user from the blacklist.
func (s *SessionStore) SetBlacklistedUser(ctx context.Context, userID int64, blacklisted bool) error {
	return s.mutateCacheSet(ctx, ports.CacheBlacklistedUsers, s.blUsers, userID, blacklisted)
}

// SetSudoer adds or removes a sudoer.
func (s *SessionStore) SetSudoer(ctx context.Context, userID int64, sudo bool) error {
	return s.mutateCacheSet(ctx, ports.CacheSudoers, s.sudoers, userID, sudo)
}

func (s *SessionStore) mutateCacheSet(ctx context.Context, cacheID string, set map[int64]struct{}, value int64, add bool) error {
	s.mu.Lock()
	_, present := set[value]
	if add == present {
		// Already in the desired state: no-op against the store.
		s.mu.Unlock()
		return nil
	}
	if add {
		set[value] = struct{}{}
	} else {
		delete(set, value)
	}
	s.mu.Unlock()

	if add {
		return s.repo.AddToCacheSet(ctx, cacheID, value)
	}
	return s.repo.RemoveFromCacheSet(ctx, cacheID, value)
}

// --- play log ---

// LoggerEnabled reports whether the play log is on.
func (s *SessionStore) LoggerEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

// SetLoggerEnabled toggles the play log, persisting the flag.
func (s *SessionStore) SetLoggerEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	s.logger = enabled
	s.mu.Unlock()

	return s.repo.SetLoggerEnabled(ctx, enabled)
}
