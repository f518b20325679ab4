package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amarnathcjd/gogram/telegram"
	"github.com/google/uuid"
)

// TelegramAttachment adapts a replied-to media message for direct playback.
// Metadata is read from the document attributes at construction time.
type TelegramAttachment struct {
	msg         *telegram.NewMessage
	id          string
	title       string
	durationSec int
	video       bool
}

// NewTelegramAttachment wraps a media message. The video flag from the
// invoking command is a fallback; a video attribute on the document wins.
func NewTelegramAttachment(msg *telegram.NewMessage, video bool) *TelegramAttachment {
	att := &TelegramAttachment{
		msg:   msg,
		id:    uuid.NewString(),
		title: "Telegram media",
		video: video,
	}

	if doc, ok := msg.Media().(*telegram.MessageMediaDocument); ok {
		if d, ok := doc.Document.(*telegram.DocumentObj); ok {
			for _, attr := range d.Attributes {
				switch a := attr.(type) {
				case *telegram.DocumentAttributeAudio:
					att.durationSec = int(a.Duration)
					if a.Title != "" {
						att.title = a.Title
					}
				case *telegram.DocumentAttributeVideo:
					att.durationSec = int(a.Duration)
					att.video = true
				case *telegram.DocumentAttributeFilename:
					if att.title == "Telegram media" {
						att.title = a.FileName
					}
				}
			}
		}
	}

	return att
}

func (a *TelegramAttachment) ID() string       { return a.id }
func (a *TelegramAttachment) Title() string    { return a.title }
func (a *TelegramAttachment) DurationSec() int { return a.durationSec }
func (a *TelegramAttachment) IsVideo() bool    { return a.video }

// Download fetches the media file into dir under a collision-free name.
func (a *TelegramAttachment) Download(_ context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path, err := a.msg.Download(&telegram.DownloadOptions{
		FileName: filepath.Join(dir, a.id),
	})
	if err != nil {
		return "", fmt.Errorf("failed to download attachment: %w", err)
	}
	return path, nil
}
