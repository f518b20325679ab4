package ports

import (
	"context"

	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

// VoiceStreamer streams downloaded media into a chat's group voice call
// through an assistant account.
type VoiceStreamer interface {
	// Play starts streaming the track's local file into the chat's call.
	Play(ctx context.Context, chatID int64, assistant AssistantHandle, track *domain.Track) error

	// Stop ends the chat's stream and tears down call resources.
	Stop(ctx context.Context, chatID int64) error

	// Pause suspends the chat's stream.
	Pause(ctx context.Context, chatID int64) error

	// Resume continues a paused stream.
	Resume(ctx context.Context, chatID int64) error

	// OnFinished registers the callback invoked when a chat's stream ends
	// on its own (track completed or stream failure).
	OnFinished(fn func(chatID int64))
}
