package infrastructure

import (
	"context"
	"fmt"
	"strings"

	"github.com/amarnathcjd/gogram/telegram"
	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
)

// TelegramGateway implements chat-platform operations over the primary bot
// account's MTProto client.
type TelegramGateway struct {
	client *telegram.Client
}

// NewTelegramGateway wraps the bot client.
func NewTelegramGateway(client *telegram.Client) *TelegramGateway {
	return &TelegramGateway{client: client}
}

func (g *TelegramGateway) MembershipStatus(_ context.Context, chatID, userID int64) (ports.MembershipStatus, error) {
	channel, err := g.inputChannel(chatID)
	if err != nil {
		return ports.MembershipUnknown, err
	}
	peer, err := g.client.ResolvePeer(userID)
	if err != nil {
		return ports.MembershipUnknown, fmt.Errorf("failed to resolve user %d: %w", userID, err)
	}

	res, err := g.client.ChannelsGetParticipant(channel, peer)
	if err != nil {
		if isNotParticipantErr(err) {
			return ports.MembershipLeft, nil
		}
		return ports.MembershipUnknown, fmt.Errorf("failed to get participant: %w", err)
	}

	switch p := res.Participant.(type) {
	case *telegram.ChannelParticipantBanned:
		if p.Left {
			return ports.MembershipBanned, nil
		}
		return ports.MembershipRestricted, nil
	case *telegram.ChannelParticipantLeft:
		return ports.MembershipLeft, nil
	default:
		return ports.MembershipMember, nil
	}
}

func (g *TelegramGateway) Unban(_ context.Context, chatID, userID int64) error {
	channel, err := g.inputChannel(chatID)
	if err != nil {
		return err
	}
	peer, err := g.client.ResolvePeer(userID)
	if err != nil {
		return fmt.Errorf("failed to resolve user %d: %w", userID, err)
	}

	// Empty rights lift every restriction.
	if _, err := g.client.ChannelsEditBanned(channel, peer, &telegram.ChatBannedRights{}); err != nil {
		return fmt.Errorf("failed to unban user %d in chat %d: %w", userID, chatID, err)
	}
	return nil
}

func (g *TelegramGateway) InviteLink(_ context.Context, chatID int64) (string, error) {
	peer, err := g.client.ResolvePeer(chatID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve chat %d: %w", chatID, err)
	}

	res, err := g.client.MessagesExportChatInvite(&telegram.MessagesExportChatInviteParams{Peer: peer})
	if err != nil {
		return "", fmt.Errorf("failed to export invite link: %w", err)
	}
	invite, ok := res.(*telegram.ChatInviteExported)
	if !ok {
		return "", fmt.Errorf("unexpected invite type %T", res)
	}
	return invite.Link, nil
}

func (g *TelegramGateway) ApproveJoinRequest(_ context.Context, chatID, userID int64) error {
	peer, err := g.client.ResolvePeer(chatID)
	if err != nil {
		return fmt.Errorf("failed to resolve chat %d: %w", chatID, err)
	}
	user, err := g.inputUser(userID)
	if err != nil {
		return err
	}

	if _, err := g.client.MessagesHideChatJoinRequest(true, peer, user); err != nil {
		return fmt.Errorf("failed to approve join request: %w", err)
	}
	return nil
}

func (g *TelegramGateway) AdminIDs(_ context.Context, chatID int64) ([]int64, error) {
	channel, err := g.inputChannel(chatID)
	if err != nil {
		return nil, err
	}

	res, err := g.client.ChannelsGetParticipants(channel, &telegram.ChannelParticipantsAdmins{}, 0, 200, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	participants, ok := res.(*telegram.ChannelsChannelParticipantsObj)
	if !ok {
		return nil, fmt.Errorf("unexpected participants type %T", res)
	}

	var ids []int64
	for _, p := range participants.Participants {
		switch v := p.(type) {
		case *telegram.ChannelParticipantCreator:
			ids = append(ids, v.UserID)
		case *telegram.ChannelParticipantAdmin:
			ids = append(ids, v.UserID)
		}
	}
	return ids, nil
}

func (g *TelegramGateway) LeaveChat(_ context.Context, chatID int64) error {
	channel, err := g.inputChannel(chatID)
	if err != nil {
		return err
	}
	if _, err := g.client.ChannelsLeaveChannel(channel); err != nil {
		return fmt.Errorf("failed to leave chat %d: %w", chatID, err)
	}
	return nil
}

func (g *TelegramGateway) SendText(_ context.Context, chatID int64, text string) error {
	_, err := g.client.SendMessage(chatID, text, &telegram.SendOptions{ParseMode: "HTML"})
	return err
}

func (g *TelegramGateway) inputChannel(chatID int64) (*telegram.InputChannelObj, error) {
	peer, err := g.client.ResolvePeer(chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chat %d: %w", chatID, err)
	}
	ch, ok := peer.(*telegram.InputPeerChannel)
	if !ok {
		return nil, fmt.Errorf("chat %d is not a supergroup or channel", chatID)
	}
	return &telegram.InputChannelObj{
		ChannelID:  ch.ChannelID,
		AccessHash: ch.AccessHash,
	}, nil
}

func (g *TelegramGateway) inputUser(userID int64) (*telegram.InputUserObj, error) {
	peer, err := g.client.ResolvePeer(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %d: %w", userID, err)
	}
	u, ok := peer.(*telegram.InputPeerUser)
	if !ok {
		return nil, fmt.Errorf("peer %d is not a user", userID)
	}
	return &telegram.InputUserObj{
		UserID:     u.UserID,
		AccessHash: u.AccessHash,
	}, nil
}

func isNotParticipantErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "USER_NOT_PARTICIPANT") ||
		strings.Contains(msg, "PARTICIPANT_ID_INVALID")
}
