package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amarnathcjd/gogram/telegram"
	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
)

// Assistant is one logged-in userbot account. Assistants join chats and host
// the media streams; the primary bot account cannot do either.
type Assistant struct {
	num    int
	userID int64
	client *telegram.Client
}

func (a *Assistant) Num() int                 { return a.num }
func (a *Assistant) UserID() int64            { return a.userID }
func (a *Assistant) Client() *telegram.Client { return a.client }

// Join joins a chat through an invite link, mapping the platform's
// already-member and join-request responses to their outcomes.
func (a *Assistant) Join(_ context.Context, invite string) (ports.JoinResult, error) {
	_, err := a.client.JoinChannel(invite)
	if err == nil {
		return ports.JoinCompleted, nil
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "USER_ALREADY_PARTICIPANT"):
		return ports.JoinAlreadyMember, nil
	case strings.Contains(msg, "INVITE_REQUEST_SENT"):
		return ports.JoinRequestPending, nil
	default:
		return 0, fmt.Errorf("assistant %d failed to join: %w", a.num, err)
	}
}

// Leave makes the assistant leave the chat, using its own session so the
// departure does not touch the primary bot's membership.
func (a *Assistant) Leave(_ context.Context, chatID int64) error {
	peer, err := a.client.ResolvePeer(chatID)
	if err != nil {
		return fmt.Errorf("assistant %d failed to resolve chat %d: %w", a.num, chatID, err)
	}
	ch, ok := peer.(*telegram.InputPeerChannel)
	if !ok {
		return fmt.Errorf("chat %d is not a supergroup or channel", chatID)
	}
	channel := &telegram.InputChannelObj{ChannelID: ch.ChannelID, AccessHash: ch.AccessHash}
	if _, err := a.client.ChannelsLeaveChannel(channel); err != nil {
		return fmt.Errorf("assistant %d failed to leave chat %d: %w", a.num, chatID, err)
	}
	return nil
}

// AssistantPool holds the logged-in assistant accounts, indexed from 1.
type AssistantPool struct {
	assistants []*Assistant
}

// NewAssistantPool logs in one userbot per session string. A session that
// fails to connect fails the whole pool; a half-working pool would strand
// chats assigned to the dead assistant.
func NewAssistantPool(appID int32, appHash string, sessions []string) (*AssistantPool, error) {
	pool := &AssistantPool{}

	for i, session := range sessions {
		num := i + 1

		client, err := telegram.NewClient(telegram.ClientConfig{
			AppID:         appID,
			AppHash:       appHash,
			StringSession: session,
			MemorySession: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create assistant %d client: %w", num, err)
		}
		if _, err := client.Conn(); err != nil {
			return nil, fmt.Errorf("failed to connect assistant %d: %w", num, err)
		}

		me := client.Me()
		if me == nil {
			return nil, fmt.Errorf("assistant %d session is not logged in", num)
		}

		slog.Info("assistant connected",
			"num", num,
			"user_id", me.ID,
			"username", me.Username,
		)

		pool.assistants = append(pool.assistants, &Assistant{
			num:    num,
			userID: me.ID,
			client: client,
		})
	}

	if len(pool.assistants) == 0 {
		return nil, fmt.Errorf("no assistant sessions configured")
	}
	return pool, nil
}

func (p *AssistantPool) Size() int {
	return len(p.assistants)
}

func (p *AssistantPool) Get(num int) (ports.AssistantHandle, error) {
	if num < 1 || num > len(p.assistants) {
		return nil, fmt.Errorf("assistant %d out of range (pool size %d)", num, len(p.assistants))
	}
	return p.assistants[num-1], nil
}

// Stop disconnects every assistant.
func (p *AssistantPool) Stop() {
	for _, a := range p.assistants {
		if err := a.client.Stop(); err != nil {
			slog.Warn("failed to stop assistant", "num", a.num, "error", err)
		}
	}
}
