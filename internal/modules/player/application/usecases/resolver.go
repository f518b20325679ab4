package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

// Resolver turns user input (URLs, text queries, replied media) into
// normalized Track records by delegating to source backends. Backends are
// tried in a fixed order and the resolver fails closed when none match.
type Resolver struct {
	backends     []ports.SourceBackend
	downloadsDir string
}

// NewResolver creates a Resolver over the given ordered backend list.
func NewResolver(downloadsDir string, backends ...ports.SourceBackend) *Resolver {
	return &Resolver{
		backends:     backends,
		downloadsDir: downloadsDir,
	}
}

// MatchesAny reports whether any backend recognizes the URL.
func (r *Resolver) MatchesAny(url string) bool {
	for _, b := range r.backends {
		if b.MatchesURL(url) {
			return true
		}
	}
	return false
}

// ResolveURL dispatches the URL to the first backend whose grammar matches.
// No match means the source is unsupported; a matching backend that finds
// nothing yields ErrNoResults.
func (r *Resolver) ResolveURL(ctx context.Context, url string, video bool) (*domain.Track, error) {
	for _, b := range r.backends {
		if !b.MatchesURL(url) {
			continue
		}
		track, err := b.FetchByURL(ctx, url, video)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return nil, ErrNoResults
			}
			return nil, err
		}
		return track, nil
	}
	return nil, ErrUnsupportedSource
}

// ResolveQuery resolves a text query. Precedence for backend selection: an
// explicit source hint in the query text wins, then the chat's play mode,
// then the caller's preferred source.
func (r *Resolver) ResolveQuery(ctx context.Context, query string, mode domain.PlayMode, preferred domain.TrackSource, video bool) (*domain.Track, error) {
	source := preferred
	if mode != "" {
		source = mode.Source()
	}
	if hint := sourceHint(query); hint != "" {
		source = hint
	}

	backend := r.backendFor(source)
	if backend == nil {
		backend = r.backendFor(domain.TrackSourceYouTube)
	}
	if backend == nil {
		return nil, ErrUnsupportedSource
	}

	track, err := backend.Search(ctx, query, video)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrNoResults
		}
		return nil, err
	}
	return track, nil
}

// ResolveAttachment plays back replied media directly: the file is
// downloaded through the chat platform and needs no URL matching.
func (r *Resolver) ResolveAttachment(ctx context.Context, att ports.Attachment) (*domain.Track, error) {
	path, err := att.Download(ctx, r.downloadsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoFile, err)
	}

	track := domain.NewTrack(
		att.ID(),
		att.Title(),
		att.DurationSec(),
		"",
		"",
		"",
		att.IsVideo(),
		domain.TrackSourceTelegram,
	)
	track.FilePath = path
	return track, nil
}

// Download materializes the track via its originating backend. Tracks that
// already carry a local file are left alone.
func (r *Resolver) Download(ctx context.Context, track *domain.Track) error {
	if track.IsDownloaded() {
		return nil
	}

	backend := r.backendFor(track.Source)
	if backend == nil {
		return ErrUnsupportedSource
	}

	path, err := backend.Download(ctx, track)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoFile, err)
	}
	track.FilePath = path
	return nil
}

func (r *Resolver) backendFor(source domain.TrackSource) ports.SourceBackend {
	for _, b := range r.backends {
		if b.Source() == source {
			return b
		}
	}
	return nil
}

// sourceHint extracts an explicit source named in the query text.
func sourceHint(query string) domain.TrackSource {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "spotify"):
		return domain.TrackSourceSpotify
	case strings.Contains(q, "youtube"):
		return domain.TrackSourceYouTube
	default:
		return ""
	}
}
