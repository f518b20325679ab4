package domain

import (
	"testing"
)

func TestParsePlayMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PlayMode
		wantErr bool
	}{
		{name: "youtube", input: "youtube", want: PlayModeYouTube},
		{name: "spotify", input: "spotify", want: PlayModeSpotify},
		{name: "case normalized", input: "SpOtIfY", want: PlayModeSpotify},
		{name: "surrounding whitespace", input: "  youtube ", want: PlayModeYouTube},
		{name: "unknown rejected", input: "soundcloud", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlayMode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePlayMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlayMode_Source(t *testing.T) {
	if PlayModeYouTube.Source() != TrackSourceYouTube {
		t.Error("expected youtube mode to map to youtube source")
	}
	if PlayModeSpotify.Source() != TrackSourceSpotify {
		t.Error("expected spotify mode to map to spotify source")
	}
}
