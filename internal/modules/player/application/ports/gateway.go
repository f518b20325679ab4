package ports

import (
	"context"
)

// MembershipStatus is the assistant's standing in a chat.
type MembershipStatus int

const (
	MembershipUnknown MembershipStatus = iota
	MembershipMember
	MembershipBanned
	MembershipRestricted
	MembershipLeft
)

// JoinResult is the outcome of an assistant join attempt.
type JoinResult int

const (
	JoinCompleted JoinResult = iota
	JoinAlreadyMember
	JoinRequestPending
)

// ChatGateway exposes the chat-platform operations the coordinator needs
// from the primary bot account.
type ChatGateway interface {
	// MembershipStatus queries a user's standing in a chat.
	MembershipStatus(ctx context.Context, chatID, userID int64) (MembershipStatus, error)

	// Unban lifts a ban/restriction on a user. Requires admin rights.
	Unban(ctx context.Context, chatID, userID int64) error

	// InviteLink exports or resolves an invite link for the chat.
	InviteLink(ctx context.Context, chatID int64) (string, error)

	// ApproveJoinRequest approves a pending join request for a user.
	ApproveJoinRequest(ctx context.Context, chatID, userID int64) error

	// AdminIDs lists the chat's current administrators.
	AdminIDs(ctx context.Context, chatID int64) ([]int64, error)

	// LeaveChat makes the bot leave the chat. Best-effort.
	LeaveChat(ctx context.Context, chatID int64) error

	// SendText posts a plain message to a chat (play log, notices).
	SendText(ctx context.Context, chatID int64, text string) error
}

// AssistantHandle is one userbot account from the assistant pool.
type AssistantHandle interface {
	// Num is the 1-based index of the assistant in the pool.
	Num() int

	// UserID is the Telegram user id of the assistant account.
	UserID() int64

	// Join joins a chat via an invite link or public username.
	Join(ctx context.Context, invite string) (JoinResult, error)

	// Leave makes the assistant leave the chat. Best-effort.
	Leave(ctx context.Context, chatID int64) error
}

// AssistantPool resolves assistant handles by pool index.
type AssistantPool interface {
	// Size returns the number of available assistants.
	Size() int

	// Get returns the assistant with the given 1-based index.
	Get(num int) (AssistantHandle, error)
}
