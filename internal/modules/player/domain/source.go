package domain

// TrackSource represents the origin platform of a track.
type TrackSource string

const (
	TrackSourceYouTube  TrackSource = "youtube"
	TrackSourceSpotify  TrackSource = "spotify"
	TrackSourceTelegram TrackSource = "telegram" // replied media passthrough
	TrackSourceOther    TrackSource = "other"
)

// ParseTrackSource converts a source name string to a TrackSource.
func ParseTrackSource(name string) TrackSource {
	switch name {
	case "youtube":
		return TrackSourceYouTube
	case "spotify":
		return TrackSourceSpotify
	case "telegram":
		return TrackSourceTelegram
	default:
		return TrackSourceOther
	}
}
