package domain

import (
	"strconv"
)

// TitleDisplayLength is the fixed display length titles are truncated to at
// ingestion time, so downstream rendering stays uniform across sources.
const TitleDisplayLength = 25

// Track represents a playable media item regardless of originating source.
type Track struct {
	ID          string
	Title       string
	Duration    string // display form, e.g. "03:45"
	DurationSec int
	URL         string
	Thumbnail   string
	ChannelName string
	MessageID   int32
	Video       bool
	Source      TrackSource

	// FilePath is set once, after download.
	FilePath string

	// Requester identity, set at enqueue time.
	RequesterID   int64
	RequesterName string
}

// NewTrack creates a Track with its title truncated to the display length
// and the display duration derived from seconds.
func NewTrack(id, title string, durationSec int, url, thumbnail, channelName string, video bool, source TrackSource) *Track {
	return &Track{
		ID:          id,
		Title:       TruncateTitle(title),
		Duration:    FormatDuration(durationSec),
		DurationSec: durationSec,
		URL:         url,
		Thumbnail:   thumbnail,
		ChannelName: channelName,
		Video:       video,
		Source:      source,
	}
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t.ID != "" && t.Title != ""
}

// IsDownloaded returns true once a local media file has been resolved.
func (t *Track) IsDownloaded() bool {
	return t.FilePath != ""
}

// TruncateTitle cuts a title down to the display length.
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= TitleDisplayLength {
		return title
	}
	return string(runes[:TitleDisplayLength])
}

// FormatDuration returns seconds as a human-readable string (mm:ss or hh:mm:ss).
func FormatDuration(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
