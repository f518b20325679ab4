package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

// spotifyURLRe recognizes open.spotify.com track, album, and playlist links.
var spotifyURLRe = regexp.MustCompile(`^(https?://open\.spotify\.com/(track|album|playlist)/[A-Za-z0-9]+)(\?.*)?$`)

// SpotifySource resolves tracks through the Spotify Web API using the
// client-credentials flow. Media files come from an external downloader
// service, since Spotify exposes no audio itself.
type SpotifySource struct {
	httpClient    *http.Client
	clientID      string
	clientSecret  string
	downloaderURL string
	downloadsDir  string

	// Overridable for tests.
	accountsURL string
	apiBaseURL  string

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewSpotifySource creates a SpotifySource. The token is fetched lazily on
// first use.
func NewSpotifySource(clientID, clientSecret, downloaderURL, downloadsDir string) *SpotifySource {
	return &SpotifySource{
		httpClient:    &http.Client{Timeout: 5 * time.Minute},
		clientID:      clientID,
		clientSecret:  clientSecret,
		downloaderURL: strings.TrimRight(downloaderURL, "/"),
		downloadsDir:  downloadsDir,
		accountsURL:   "https://accounts.spotify.com/api/token",
		apiBaseURL:    "https://api.spotify.com/v1",
	}
}

func (s *SpotifySource) Source() domain.TrackSource {
	return domain.TrackSourceSpotify
}

func (s *SpotifySource) MatchesURL(rawURL string) bool {
	return spotifyURLRe.MatchString(strings.TrimSpace(rawURL))
}

func (s *SpotifySource) FetchByURL(ctx context.Context, rawURL string, video bool) (*domain.Track, error) {
	kind, id := extractSpotifyLink(rawURL)
	switch kind {
	case "track":
		var payload spotifyTrack
		if err := s.apiGet(ctx, s.apiBaseURL+"/tracks/"+id, &payload); err != nil {
			return nil, err
		}
		return payload.toTrack(video), nil
	case "album":
		return s.fetchAlbumLead(ctx, id, video)
	case "playlist":
		return s.fetchPlaylistLead(ctx, id, video)
	default:
		return nil, ports.ErrNotFound
	}
}

// fetchAlbumLead resolves an album link to its opening track.
func (s *SpotifySource) fetchAlbumLead(ctx context.Context, id string, video bool) (*domain.Track, error) {
	var payload struct {
		Items []spotifyTrack `json:"items"`
	}
	if err := s.apiGet(ctx, s.apiBaseURL+"/albums/"+id+"/tracks?limit=1", &payload); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return nil, ports.ErrNotFound
	}
	return payload.Items[0].toTrack(video), nil
}

// fetchPlaylistLead resolves a playlist link to its first entry.
func (s *SpotifySource) fetchPlaylistLead(ctx context.Context, id string, video bool) (*domain.Track, error) {
	var payload struct {
		Items []struct {
			Track spotifyTrack `json:"track"`
		} `json:"items"`
	}
	if err := s.apiGet(ctx, s.apiBaseURL+"/playlists/"+id+"/tracks?limit=1", &payload); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 || payload.Items[0].Track.ID == "" {
		return nil, ports.ErrNotFound
	}
	return payload.Items[0].Track.toTrack(video), nil
}

func (s *SpotifySource) Search(ctx context.Context, query string, video bool) (*domain.Track, error) {
	endpoint := s.apiBaseURL + "/search?q=" + url.QueryEscape(query) + "&type=track&limit=1"

	var payload struct {
		Tracks struct {
			Items []spotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := s.apiGet(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if len(payload.Tracks.Items) == 0 {
		return nil, ports.ErrNotFound
	}
	return payload.Tracks.Items[0].toTrack(video), nil
}

// Download fetches the track's audio through the downloader service.
func (s *SpotifySource) Download(ctx context.Context, track *domain.Track) (string, error) {
	if s.downloaderURL == "" {
		return "", fmt.Errorf("no spotify downloader configured")
	}

	endpoint := s.downloaderURL + "?url=" + url.QueryEscape(track.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify downloader returned status %d", resp.StatusCode)
	}

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			Title         string `json:"title"`
			DownloadLinks []struct {
				Type      string `json:"type"`
				URL       string `json:"url"`
				Extension string `json:"extension"`
			} `json:"downloadLinks"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode downloader response: %w", err)
	}
	if !payload.Success {
		return "", fmt.Errorf("spotify downloader reported failure")
	}

	for _, link := range payload.Data.DownloadLinks {
		if link.Type != "audio" || link.URL == "" {
			continue
		}
		ext := link.Extension
		if ext == "" {
			ext = "mp3"
		}
		return s.fetchDownloaderFile(ctx, link.URL, track.ID+"."+ext)
	}
	return "", fmt.Errorf("spotify downloader returned no audio link")
}

func (s *SpotifySource) fetchDownloaderFile(ctx context.Context, fileURL, name string) (string, error) {
	// Reuse the YouTube file fetch path; both write into the downloads dir.
	yt := &YouTubeSource{httpClient: s.httpClient, downloadsDir: s.downloadsDir}
	return yt.fetchFile(ctx, fileURL, name)
}

// apiGet performs an authorized GET, refreshing the token and retrying
// exactly once on 401. A second 401 is surfaced as-is.
func (s *SpotifySource) apiGet(ctx context.Context, endpoint string, out any) error {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := s.accessToken(ctx, attempt > 0)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			continue
		}

		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ports.ErrNotFound
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("spotify api returned status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return fmt.Errorf("spotify api rejected credentials")
}

// accessToken returns the cached token, fetching a fresh one when expired or
// when the caller forces a refresh after a 401.
func (s *SpotifySource) accessToken(ctx context.Context, force bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && s.token != "" && time.Now().Before(s.expiry) {
		return s.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.accountsURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("spotify token endpoint returned empty token")
	}

	s.token = payload.AccessToken
	// Refresh a minute early to avoid racing the expiry.
	s.expiry = time.Now().Add(time.Duration(payload.ExpiresIn-60) * time.Second)
	return s.token, nil
}

type spotifyTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DurationMs int    `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

func (t spotifyTrack) toTrack(video bool) *domain.Track {
	artist := ""
	if len(t.Artists) > 0 {
		artist = t.Artists[0].Name
	}
	thumbnail := ""
	if len(t.Album.Images) > 0 {
		thumbnail = t.Album.Images[0].URL
	}
	trackURL := t.ExternalURLs.Spotify
	if trackURL == "" {
		trackURL = "https://open.spotify.com/track/" + t.ID
	}

	return domain.NewTrack(
		t.ID,
		t.Name,
		t.DurationMs/1000,
		trackURL,
		thumbnail,
		artist,
		video,
		domain.TrackSourceSpotify,
	)
}

// extractSpotifyLink pulls the entity kind (track, album, playlist) and id
// out of an open.spotify.com link.
func extractSpotifyLink(rawURL string) (string, string) {
	match := spotifyURLRe.FindStringSubmatch(strings.TrimSpace(rawURL))
	if match == nil {
		return "", ""
	}
	parts := strings.Split(match[1], "/")
	return match[2], parts[len(parts)-1]
}
