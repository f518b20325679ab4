package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
)

// EnsurePresence makes sure the chat's assigned assistant is a member of the
// chat and returns its handle. A chat with an active call is assumed joined
// already. Otherwise the assistant's membership drives the path taken:
// members pass through, banned assistants are unbanned, absent assistants
// join over a fresh invite link, and pending join requests get approved.
func (p *PlaybackService) EnsurePresence(ctx context.Context, chatID int64) (ports.AssistantHandle, error) {
	num, err := p.sessions.GetAssistant(ctx, chatID)
	if err != nil {
		return nil, err
	}
	assistant, err := p.pool.Get(num)
	if err != nil {
		return nil, err
	}

	if p.sessions.IsActiveCall(chatID) {
		return assistant, nil
	}

	status, err := p.gateway.MembershipStatus(ctx, chatID, assistant.UserID())
	if err != nil {
		return nil, fmt.Errorf("failed to check assistant membership: %w", err)
	}

	switch status {
	case ports.MembershipMember:
		return assistant, nil

	case ports.MembershipBanned, ports.MembershipRestricted:
		if err := p.gateway.Unban(ctx, chatID, assistant.UserID()); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrAssistantBanned, err)
		}
		return assistant, nil

	default:
		return p.joinViaInvite(ctx, chatID, assistant)
	}
}

func (p *PlaybackService) joinViaInvite(ctx context.Context, chatID int64, assistant ports.AssistantHandle) (ports.AssistantHandle, error) {
	invite, err := p.gateway.InviteLink(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInviteUnavailable, err)
	}

	// A join right after exporting the invite gets rejected by the
	// platform; wait out the propagation window.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.joinDelay):
	}

	result, err := assistant.Join(ctx, invite)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrJoinFailed, err)
	}

	switch result {
	case ports.JoinCompleted, ports.JoinAlreadyMember:
		return assistant, nil
	case ports.JoinRequestPending:
		if err := p.gateway.ApproveJoinRequest(ctx, chatID, assistant.UserID()); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrJoinFailed, err)
		}
		return assistant, nil
	default:
		return nil, ErrJoinFailed
	}
}
