package infrastructure

import "testing"

func TestYouTubeMatchesURL(t *testing.T) {
	s := NewYouTubeSource("", "downloads")

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", true},
		{"shorts link", "https://youtube.com/shorts/dQw4w9WgXcQ", true},
		{"mobile subdomain", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"music subdomain", "https://music.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"playlist link", "https://www.youtube.com/playlist?list=PLabc123XYZ", true},
		{"extra query params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", true},
		{"surrounding whitespace", "  https://youtu.be/dQw4w9WgXcQ  ", true},
		{"spotify link", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", false},
		{"soundcloud link", "https://soundcloud.com/artist/track", false},
		{"bare text", "never gonna give you up", false},
		{"short id", "https://youtu.be/tooShort", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.MatchesURL(tt.url); got != tt.want {
				t.Errorf("MatchesURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts link", "https://youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed link", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"with params", "https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ"},
		{"playlist only", "https://www.youtube.com/playlist?list=PLabc123XYZ", ""},
		{"not youtube", "https://example.com/watch", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractYouTubeID(tt.url); got != tt.want {
				t.Errorf("extractYouTubeID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
