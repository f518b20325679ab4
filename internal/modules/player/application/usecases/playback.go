package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

// EnqueueOutcome reports how a play request was handled.
type EnqueueOutcome struct {
	// PlayedImmediately is true when the request started playback rather
	// than waiting in the queue.
	PlayedImmediately bool

	// Track is the track that started playing, when PlayedImmediately.
	Track *domain.Track

	// Position is the 1-based queue position, when queued.
	Position int
}

// PlaybackService ties the session store, queue, and resolver together:
// it places the assistant in the chat, downloads resolved media, and hands
// files to the voice streamer.
type PlaybackService struct {
	sessions *SessionStore
	queue    *QueueService
	resolver *Resolver
	gateway  ports.ChatGateway
	pool     ports.AssistantPool
	streamer ports.VoiceStreamer

	durationLimit int // seconds; 0 disables the cap
	autoLeave     bool
	joinDelay     time.Duration
}

// NewPlaybackService wires a PlaybackService and registers the queue-advance
// callback on the streamer.
func NewPlaybackService(
	sessions *SessionStore,
	queue *QueueService,
	resolver *Resolver,
	gateway ports.ChatGateway,
	pool ports.AssistantPool,
	streamer ports.VoiceStreamer,
	durationLimitSec int,
	autoLeave bool,
) *PlaybackService {
	p := &PlaybackService{
		sessions:      sessions,
		queue:         queue,
		resolver:      resolver,
		gateway:       gateway,
		pool:          pool,
		streamer:      streamer,
		durationLimit: durationLimitSec,
		autoLeave:     autoLeave,
		joinDelay:     2 * time.Second,
	}
	streamer.OnFinished(p.handleStreamEnd)
	return p
}

// EnqueueOrPlay runs a resolved track through the queue. Force requests jump
// the line and start immediately; normal requests queue up, except that an
// idle chat plays the queue head right away instead of leaving it pending.
func (p *PlaybackService) EnqueueOrPlay(ctx context.Context, chatID int64, track *domain.Track, force bool) (*EnqueueOutcome, error) {
	if p.durationLimit > 0 && track.DurationSec > p.durationLimit {
		return nil, ErrDurationLimit
	}

	if force {
		p.queue.ForceEnqueue(chatID, track)
		played, err := p.PlayNext(ctx, chatID)
		if err != nil {
			return nil, err
		}
		return &EnqueueOutcome{PlayedImmediately: true, Track: played}, nil
	}

	position, err := p.queue.Enqueue(chatID, track)
	if err != nil {
		return nil, err
	}

	if p.sessions.IsActiveCall(chatID) {
		return &EnqueueOutcome{Position: position}, nil
	}

	played, err := p.PlayNext(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return &EnqueueOutcome{PlayedImmediately: true, Track: played}, nil
}

// PlayNext pops the queue head, materializes it, and streams it into the
// chat's call. A drained queue returns (nil, nil) and leaves the chat idle.
func (p *PlaybackService) PlayNext(ctx context.Context, chatID int64) (*domain.Track, error) {
	next := p.queue.PopNext(chatID)
	if next == nil {
		p.sessions.SetActiveCall(chatID, false)
		_ = p.streamer.Stop(ctx, chatID)
		if p.autoLeave {
			p.leaveAssistant(ctx, chatID)
		}
		return nil, nil
	}

	// Download happens before taking any call state: the per-chat queue
	// lock is already released and long transfers must not hold it.
	if err := p.Materialize(ctx, chatID, next); err != nil {
		return nil, err
	}

	assistant, err := p.EnsurePresence(ctx, chatID)
	if err != nil {
		p.sessions.SetActiveCall(chatID, false)
		return nil, err
	}

	if err := p.streamer.Play(ctx, chatID, assistant, next); err != nil {
		p.sessions.SetActiveCall(chatID, false)
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}

	p.sessions.SetActiveCall(chatID, true)
	return next, nil
}

// Materialize downloads the track's media if not already local. A failed
// download is a hard stop for the chat: call state is cleared, not retried.
func (p *PlaybackService) Materialize(ctx context.Context, chatID int64, track *domain.Track) error {
	if track.IsDownloaded() {
		return nil
	}

	if err := p.resolver.Download(ctx, track); err != nil {
		_ = p.streamer.Stop(ctx, chatID)
		p.sessions.SetActiveCall(chatID, false)
		return err
	}
	return nil
}

// Skip ends the current track and advances the queue. Returns the track now
// playing, or nil when the queue drained back to idle.
func (p *PlaybackService) Skip(ctx context.Context, chatID int64) (*domain.Track, error) {
	if !p.sessions.IsActiveCall(chatID) {
		return nil, ErrNoActiveCall
	}
	return p.PlayNext(ctx, chatID)
}

// Stop clears the queue, ends the stream, and marks the chat idle.
func (p *PlaybackService) Stop(ctx context.Context, chatID int64) error {
	if !p.sessions.IsActiveCall(chatID) {
		return ErrNoActiveCall
	}

	p.queue.Clear(chatID)
	err := p.streamer.Stop(ctx, chatID)
	p.sessions.SetActiveCall(chatID, false)
	return err
}

// Pause suspends the chat's stream.
func (p *PlaybackService) Pause(ctx context.Context, chatID int64) error {
	if !p.sessions.IsActiveCall(chatID) {
		return ErrNoActiveCall
	}
	return p.streamer.Pause(ctx, chatID)
}

// Resume continues a paused stream.
func (p *PlaybackService) Resume(ctx context.Context, chatID int64) error {
	if !p.sessions.IsActiveCall(chatID) {
		return ErrNoActiveCall
	}
	return p.streamer.Resume(ctx, chatID)
}

// Queue exposes the queue service for listing.
func (p *PlaybackService) Queue() *QueueService {
	return p.queue
}

// leaveAssistant walks the assistant out of a drained chat. Best-effort: the
// chat is already idle either way.
func (p *PlaybackService) leaveAssistant(ctx context.Context, chatID int64) {
	num, err := p.sessions.GetAssistant(ctx, chatID)
	if err != nil {
		return
	}
	assistant, err := p.pool.Get(num)
	if err != nil {
		return
	}
	if err := assistant.Leave(ctx, chatID); err != nil {
		slog.Debug("assistant failed to leave idle chat", "chat_id", chatID, "error", err)
	}
}

// handleStreamEnd advances the queue when a stream finishes on its own.
func (p *PlaybackService) handleStreamEnd(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	if _, err := p.PlayNext(ctx, chatID); err != nil {
		p.sessions.SetActiveCall(chatID, false)
	}
}
