package presentation

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/tgsonata/sonata/internal/modules/player/application/usecases"
	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

const (
	textSearching   = "🔎 Searching..."
	textGroupOnly   = "This command only works in supergroups."
	textNotAllowed  = "You need to be an admin or an authorized user to do that."
	textSudoOnly    = "This command is restricted to the bot operators."
	textOwnerOnly   = "This command is restricted to the bot owner."
	textNoMedia     = "Reply to an audio or video message, or give me something to search for."
	textQueueEmpty  = "The queue is empty and nothing is playing."
	textPaused      = "⏸ Paused the stream."
	textResumed     = "▶️ Resumed the stream."
	textStopped     = "⏹ Stopped playback and cleared the queue."
	textQueueEnd    = "⏭ Nothing left in the queue, leaving the call."
	textReloaded    = "♻️ Admin cache refreshed."
	textNeedTarget  = "Reply to a user or pass their id."
	textNeedOnOff   = "Usage: on or off."
	textLoggerOn    = "📝 Play log enabled."
	textLoggerOff   = "📝 Play log disabled."
	textPlayUsage   = "Usage: /play <song name or link>, or reply to a media message."
	textModeChoices = "Usage: /mode youtube|spotify"
)

func textNowPlaying(track *domain.Track) string {
	var b strings.Builder
	b.WriteString("▶️ <b>Now playing:</b> ")
	b.WriteString(trackLink(track))
	b.WriteString("\n⏱ ")
	b.WriteString(track.Duration)
	if track.RequesterName != "" {
		b.WriteString(" | 👤 ")
		b.WriteString(html.EscapeString(track.RequesterName))
	}
	return b.String()
}

func textQueuedAt(track *domain.Track, position int) string {
	return fmt.Sprintf("✅ Queued at position <b>%d</b>: %s (%s)", position, trackLink(track), track.Duration)
}

func textSkippedTo(track *domain.Track) string {
	return "⏭ Skipped. " + textNowPlaying(track)
}

func textQueueList(tracks []*domain.Track) string {
	if len(tracks) == 0 {
		return textQueueEmpty
	}

	var b strings.Builder
	b.WriteString("<b>Up next:</b>\n")
	for i, t := range tracks {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, trackLink(t), t.Duration)
		if t.RequesterName != "" {
			b.WriteString(" — ")
			b.WriteString(html.EscapeString(t.RequesterName))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func textPlayMode(mode domain.PlayMode) string {
	return fmt.Sprintf("Current play mode: <b>%s</b>", mode)
}

func textPlayModeSet(mode domain.PlayMode) string {
	return fmt.Sprintf("Play mode set to <b>%s</b>.", mode)
}

func textPlayLog(chatID int64, track *domain.Track) string {
	return fmt.Sprintf(
		"🎵 %s (%s)\nchat: <code>%d</code>\nrequested by: %s (<code>%d</code>)",
		trackLink(track),
		track.Duration,
		chatID,
		html.EscapeString(track.RequesterName),
		track.RequesterID,
	)
}

func textStats(chats, users int) string {
	return fmt.Sprintf("📊 Serving <b>%d</b> chats and <b>%d</b> users.", chats, users)
}

func trackLink(track *domain.Track) string {
	title := html.EscapeString(track.Title)
	if track.URL == "" {
		return "<b>" + title + "</b>"
	}
	return fmt.Sprintf(`<a href="%s">%s</a>`, track.URL, title)
}

// errorText maps resolver and playback errors to user-facing messages.
func errorText(err error) string {
	switch {
	case errors.Is(err, usecases.ErrQueueFull):
		return "🚫 Queue limit reached, wait for some tracks to finish."
	case errors.Is(err, usecases.ErrNoResults):
		return "😕 No results found for that."
	case errors.Is(err, usecases.ErrUnsupportedSource):
		return "🚫 I can't play links from that site."
	case errors.Is(err, usecases.ErrDurationLimit):
		return "🚫 That track is longer than the configured duration limit."
	case errors.Is(err, usecases.ErrAssistantBanned):
		return "🚫 The assistant is banned here and I couldn't unban it. Promote me with ban rights or unban the assistant."
	case errors.Is(err, usecases.ErrInviteUnavailable):
		return "🚫 I couldn't create an invite link for the assistant. Promote me with invite rights."
	case errors.Is(err, usecases.ErrJoinFailed):
		return "🚫 The assistant couldn't join this chat."
	case errors.Is(err, usecases.ErrNoFile):
		return "🚫 Failed to download the media file."
	case errors.Is(err, usecases.ErrNoActiveCall):
		return "🚫 Nothing is playing here."
	default:
		return "⚠️ Something went wrong: " + html.EscapeString(err.Error())
	}
}
