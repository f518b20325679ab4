package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/amarnathcjd/gogram/telegram"
	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

// RTMPStreamer pushes local media files into a chat's RTMP livestream with
// ffmpeg. The ingest endpoint is fetched through the chat's assistant
// account; only user accounts may request it. One stream per chat.
type RTMPStreamer struct {
	mu         sync.Mutex
	streams    map[int64]*chatStream
	onFinished func(chatID int64)
}

type chatStream struct {
	cmd     *exec.Cmd
	track   *domain.Track
	paused  bool
	stopped bool
}

// NewRTMPStreamer creates an RTMPStreamer with no active streams.
func NewRTMPStreamer() *RTMPStreamer {
	return &RTMPStreamer{
		streams: make(map[int64]*chatStream),
	}
}

func (s *RTMPStreamer) OnFinished(fn func(chatID int64)) {
	s.onFinished = fn
}

// Play starts streaming the track into the chat's call through the given
// assistant. Any stream already running in the chat is replaced.
func (s *RTMPStreamer) Play(_ context.Context, chatID int64, assistant ports.AssistantHandle, track *domain.Track) error {
	holder, ok := assistant.(interface{ Client() *telegram.Client })
	if !ok {
		return fmt.Errorf("assistant %d carries no telegram client", assistant.Num())
	}

	if _, err := os.Stat(track.FilePath); err != nil {
		return fmt.Errorf("media file missing for chat %d: %w", chatID, err)
	}
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	addr, err := fetchIngest(holder.Client(), chatID)
	if err != nil {
		return err
	}

	s.teardown(chatID)

	cmd := exec.Command(ffmpeg, ffmpegArgs(track.FilePath, addr, track.Video)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg for chat %d: %w", chatID, err)
	}

	s.mu.Lock()
	s.streams[chatID] = &chatStream{cmd: cmd, track: track}
	s.mu.Unlock()

	go s.wait(chatID, cmd)
	return nil
}

func (s *RTMPStreamer) Stop(_ context.Context, chatID int64) error {
	s.teardown(chatID)
	return nil
}

func (s *RTMPStreamer) Pause(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.streams[chatID]
	if cs == nil {
		return fmt.Errorf("no active stream in chat %d", chatID)
	}
	if cs.paused {
		return fmt.Errorf("stream in chat %d is already paused", chatID)
	}
	if err := cs.cmd.Process.Signal(syscall.SIGSTOP); err != nil {
		return fmt.Errorf("failed to pause stream in chat %d: %w", chatID, err)
	}
	cs.paused = true
	return nil
}

func (s *RTMPStreamer) Resume(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.streams[chatID]
	if cs == nil {
		return fmt.Errorf("no active stream in chat %d", chatID)
	}
	if !cs.paused {
		return fmt.Errorf("stream in chat %d is not paused", chatID)
	}
	if err := cs.cmd.Process.Signal(syscall.SIGCONT); err != nil {
		return fmt.Errorf("failed to resume stream in chat %d: %w", chatID, err)
	}
	cs.paused = false
	return nil
}

// teardown kills and forgets the chat's stream without firing the finished
// callback.
func (s *RTMPStreamer) teardown(chatID int64) {
	s.mu.Lock()
	cs := s.streams[chatID]
	if cs != nil {
		cs.stopped = true
	}
	delete(s.streams, chatID)
	s.mu.Unlock()

	if cs == nil {
		return
	}
	if err := cs.cmd.Process.Kill(); err != nil {
		slog.Debug("failed to kill stream", "chat_id", chatID, "error", err)
	}
}

// wait blocks until ffmpeg exits. A deliberate teardown already forgot the
// stream; anything else means the track ran out (or the push died) and the
// coordinator should advance the queue.
func (s *RTMPStreamer) wait(chatID int64, cmd *exec.Cmd) {
	err := cmd.Wait()

	s.mu.Lock()
	cs := s.streams[chatID]
	deliberate := cs == nil || cs.stopped || cs.cmd != cmd
	delete(s.streams, chatID)
	s.mu.Unlock()

	if deliberate {
		return
	}
	if err != nil {
		slog.Error("stream ended abnormally", "chat_id", chatID, "error", err)
	}
	if s.onFinished != nil {
		go s.onFinished(chatID)
	}
}

// fetchIngest asks Telegram for the chat livestream's RTMP endpoint through
// the assistant's session.
func fetchIngest(client *telegram.Client, chatID int64) (string, error) {
	peer, err := client.ResolvePeer(chatID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve chat %d: %w", chatID, err)
	}
	res, err := client.PhoneGetGroupCallStreamRtmpURL(peer, false)
	if err != nil {
		return "", fmt.Errorf("failed to fetch rtmp url for chat %d: %w", chatID, err)
	}
	return ingestAddress(res.URL, res.Key), nil
}

func ingestAddress(url, key string) string {
	return strings.TrimSuffix(url, "/") + "/" + key
}

// ffmpegArgs builds the push command line. -re paces reading at native
// speed so the live stream does not outrun the call.
func ffmpegArgs(path, addr string, video bool) []string {
	args := []string{"-re", "-i", path}
	if video {
		args = append(args,
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-b:v", "2500k",
			"-maxrate", "2500k",
			"-bufsize", "5000k",
			"-pix_fmt", "yuv420p",
			"-g", "50",
		)
	} else {
		args = append(args, "-vn")
	}
	args = append(args,
		"-c:a", "aac",
		"-b:a", "160k",
		"-ar", "44100",
		"-f", "flv",
		addr,
	)
	return args
}
