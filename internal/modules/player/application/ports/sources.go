package ports

import (
	"context"
	"errors"

	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

// ErrNotFound is returned by source backends when a lookup produced no
// usable result (non-200 response, empty result list, malformed payload).
// It is always recoverable: callers report "not found" to the user.
var ErrNotFound = errors.New("no results found")

// SourceBackend resolves and downloads tracks for one media platform.
// The resolver tries backends in a fixed order; at most one backend may
// recognize a given URL.
type SourceBackend interface {
	// Source identifies the platform this backend serves.
	Source() domain.TrackSource

	// MatchesURL reports whether the URL belongs to this backend.
	// Structural check only, no network call.
	MatchesURL(url string) bool

	// FetchByURL fetches metadata for a recognized URL.
	FetchByURL(ctx context.Context, url string, video bool) (*domain.Track, error)

	// Search resolves a keyword query to the first matching track.
	Search(ctx context.Context, query string, video bool) (*domain.Track, error)

	// Download materializes the track's media and returns the local path.
	Download(ctx context.Context, track *domain.Track) (string, error)
}

// Attachment is a replied-to media message that can be played directly,
// bypassing URL matching.
type Attachment interface {
	// ID uniquely identifies the media file.
	ID() string

	// Title returns the display name of the media.
	Title() string

	// DurationSec returns the media duration in seconds, 0 if unknown.
	DurationSec() int

	// IsVideo reports whether the media carries a video stream.
	IsVideo() bool

	// Download stores the media under dir and returns the local path.
	Download(ctx context.Context, dir string) (string, error)
}
