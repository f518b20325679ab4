package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/lrstanley/go-ytdlp"
	"github.com/raitonoberu/ytsearch"
	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

var (
	// youtubeURLRe recognizes watch, shorts, playlist, and short-form links,
	// including the m. and music. subdomains.
	youtubeURLRe = regexp.MustCompile(`^(https?://)?(www\.|m\.|music\.)?(youtube\.com/(watch\?v=|shorts/|playlist\?list=)|youtu\.be/)([A-Za-z0-9_-]{11}|PL[A-Za-z0-9_-]+)([&?][^\s]*)?$`)

	// youtubeIDRe extracts the 11-character video id from any recognized form.
	youtubeIDRe = regexp.MustCompile(`(?:v=|youtu\.be/|/watch\?v=|/embed/|/v/|shorts/)([A-Za-z0-9_-]{11})`)
)

// YouTubeSource resolves and downloads YouTube media. Metadata comes from the
// innertube API; downloads go through the configured download API when one is
// set, falling back to yt-dlp.
type YouTubeSource struct {
	client       youtube.Client
	httpClient   *http.Client
	apiURL       string
	downloadsDir string
}

// NewYouTubeSource creates a YouTubeSource. apiURL may be empty, in which
// case every download uses yt-dlp directly.
func NewYouTubeSource(apiURL, downloadsDir string) *YouTubeSource {
	return &YouTubeSource{
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		apiURL:       strings.TrimRight(apiURL, "/"),
		downloadsDir: downloadsDir,
	}
}

func (s *YouTubeSource) Source() domain.TrackSource {
	return domain.TrackSourceYouTube
}

func (s *YouTubeSource) MatchesURL(rawURL string) bool {
	return youtubeURLRe.MatchString(strings.TrimSpace(rawURL))
}

func (s *YouTubeSource) FetchByURL(ctx context.Context, rawURL string, video bool) (*domain.Track, error) {
	id := extractYouTubeID(rawURL)
	if id == "" {
		return nil, ports.ErrNotFound
	}
	return s.fetchByID(ctx, id, video)
}

func (s *YouTubeSource) Search(ctx context.Context, query string, video bool) (*domain.Track, error) {
	search := ytsearch.VideoSearch(query)
	result, err := search.Next()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}
	if len(result.Videos) == 0 {
		return nil, ports.ErrNotFound
	}
	return s.fetchByID(ctx, result.Videos[0].ID, video)
}

func (s *YouTubeSource) fetchByID(ctx context.Context, id string, video bool) (*domain.Track, error) {
	watchURL := "https://www.youtube.com/watch?v=" + id

	meta, err := s.client.GetVideoContext(ctx, watchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video metadata: %w", err)
	}

	thumbnail := ""
	if n := len(meta.Thumbnails); n > 0 {
		thumbnail = meta.Thumbnails[n-1].URL
	}

	return domain.NewTrack(
		id,
		meta.Title,
		int(meta.Duration.Seconds()),
		watchURL,
		thumbnail,
		meta.Author,
		video,
		domain.TrackSourceYouTube,
	), nil
}

// Download materializes the track, preferring the download API over yt-dlp.
// API failures are logged and fall through; only a yt-dlp failure is final.
func (s *YouTubeSource) Download(ctx context.Context, track *domain.Track) (string, error) {
	if s.apiURL != "" {
		path, err := s.downloadViaAPI(ctx, track)
		if err == nil {
			return path, nil
		}
		slog.Warn("download api failed, falling back to yt-dlp",
			"video_id", track.ID,
			"error", err,
		)
	}
	return s.downloadViaYtdlp(ctx, track)
}

func (s *YouTubeSource) downloadViaAPI(ctx context.Context, track *domain.Track) (string, error) {
	endpoint := s.apiURL + "/mp3?id=" + url.QueryEscape(track.ID)
	ext := ".mp3"
	if track.Video {
		endpoint = s.apiURL + "/download?id=" + url.QueryEscape(track.ID) + "&format=1080"
		ext = ".mp4"
	}

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
		return "", fmt.Errorf("download api returned status %d", resp.StatusCode)
	}

	var payload struct {
		DownloadURL string `json:"downloadUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode download api response: %w", err)
	}
	if payload.DownloadURL == "" {
		return "", fmt.Errorf("download api returned no url")
	}

	return s.fetchFile(ctx, payload.DownloadURL, track.ID+ext)
}

func (s *YouTubeSource) fetchFile(ctx context.Context, fileURL, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media fetch returned status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(s.downloadsDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.downloadsDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	return path, nil
}

func (s *YouTubeSource) downloadViaYtdlp(ctx context.Context, track *domain.Track) (string, error) {
	if err := os.MkdirAll(s.downloadsDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(s.downloadsDir, track.ID+".m4a")
	format := "bestaudio[ext=m4a]/bestaudio"
	if track.Video {
		path = filepath.Join(s.downloadsDir, track.ID+".mp4")
		format = "best[height<=?720][width<=?1280]"
	}

	dl := ytdlp.New().
		Format(format).
		Output(path).
		NoWarnings().
		IgnoreConfig()

	if _, err := dl.Run(ctx, track.URL); err != nil {
		return "", fmt.Errorf("yt-dlp download failed: %w", err)
	}
	return path, nil
}

func extractYouTubeID(rawURL string) string {
	match := youtubeIDRe.FindStringSubmatch(rawURL)
	if match == nil {
		return ""
	}
	return match[1]
}
