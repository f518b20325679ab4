package ports

import (
	"context"
)

// Cache set ids in the cache collection.
const (
	CacheBlacklistedChats = "bl_chats"
	CacheBlacklistedUsers = "bl_users"
	CacheSudoers          = "sudoers"
	CacheLogger           = "logger"
)

// SessionRepository is the persistent store behind the session cache.
// Zero values ("", 0, empty slice) mean "unset"; absence of a document is
// not an error.
type SessionRepository interface {
	// Ping verifies store connectivity. Failure at startup is fatal.
	Ping(ctx context.Context) error

	// AssistantNum returns the persisted assistant index for a chat, 0 when unset.
	AssistantNum(ctx context.Context, chatID int64) (int, error)

	// SetAssistantNum upserts the assistant assignment for a chat.
	SetAssistantNum(ctx context.Context, chatID int64, num int) error

	// PlayMode returns the persisted play mode string, "" when unset.
	PlayMode(ctx context.Context, chatID int64) (string, error)

	// SetPlayMode upserts the play mode for a chat.
	SetPlayMode(ctx context.Context, chatID int64, mode string) error

	// AuthUsers returns the authorized user set for a chat.
	AuthUsers(ctx context.Context, chatID int64) ([]int64, error)

	// AddAuthUser adds a user to the chat's auth set (add-to-set semantics).
	AddAuthUser(ctx context.Context, chatID, userID int64) error

	// RemoveAuthUser removes a user from the chat's auth set (pull semantics).
	RemoveAuthUser(ctx context.Context, chatID, userID int64) error

	// Chats returns all served chat ids.
	Chats(ctx context.Context) ([]int64, error)

	// AddChat records a served chat.
	AddChat(ctx context.Context, chatID int64) error

	// RemoveChat forgets a served chat.
	RemoveChat(ctx context.Context, chatID int64) error

	// Users returns all served user ids.
	Users(ctx context.Context) ([]int64, error)

	// AddUser records a served user.
	AddUser(ctx context.Context, userID int64) error

	// CacheSet returns the member ids of a named cache set (blacklists, sudoers).
	CacheSet(ctx context.Context, id string) ([]int64, error)

	// AddToCacheSet adds an id to a named cache set.
	AddToCacheSet(ctx context.Context, id string, value int64) error

	// RemoveFromCacheSet removes an id from a named cache set.
	RemoveFromCacheSet(ctx context.Context, id string, value int64) error

	// LoggerEnabled returns the persisted play-log flag.
	LoggerEnabled(ctx context.Context) (bool, error)

	// SetLoggerEnabled upserts the play-log flag.
	SetLoggerEnabled(ctx context.Context, enabled bool) error
}
