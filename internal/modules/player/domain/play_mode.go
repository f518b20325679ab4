package domain

import (
	"fmt"
	"strings"
)

// PlayMode is the per-chat default source preference used when a text query
// contains no explicit source hint.
type PlayMode string

const (
	PlayModeYouTube PlayMode = "youtube"
	PlayModeSpotify PlayMode = "spotify"
)

// DefaultPlayMode is used for chats that never set a preference.
const DefaultPlayMode = PlayModeYouTube

// ParsePlayMode normalizes and validates a play mode string.
// Anything outside the enum is rejected at the mutation boundary.
func ParsePlayMode(s string) (PlayMode, error) {
	switch PlayMode(strings.ToLower(strings.TrimSpace(s))) {
	case PlayModeYouTube:
		return PlayModeYouTube, nil
	case PlayModeSpotify:
		return PlayModeSpotify, nil
	default:
		return "", fmt.Errorf("invalid play mode %q: choose either 'youtube' or 'spotify'", s)
	}
}

// Source returns the track source matching the play mode.
func (m PlayMode) Source() TrackSource {
	if m == PlayModeSpotify {
		return TrackSourceSpotify
	}
	return TrackSourceYouTube
}
