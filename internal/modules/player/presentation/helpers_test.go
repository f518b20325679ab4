package presentation

import (
	"context"
	"strings"

	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
	"github.com/tgsonata/sonata/internal/modules/player/application/usecases"
	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

const (
	testChatID  int64 = -100123
	testOwnerID int64 = 99
	testAdminID int64 = 10
	testUserID  int64 = 50
)

// fakeRepo is an in-memory SessionRepository with just enough behavior for
// handler tests.
type fakeRepo struct {
	assistantNums map[int64]int
	playModes     map[int64]string
	authUsers     map[int64][]int64
	cacheSets     map[string][]int64
	logger        bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		assistantNums: make(map[int64]int),
		playModes:     make(map[int64]string),
		authUsers:     make(map[int64][]int64),
		cacheSets:     make(map[string][]int64),
	}
}

func (f *fakeRepo) Ping(context.Context) error { return nil }

func (f *fakeRepo) AssistantNum(_ context.Context, chatID int64) (int, error) {
	return f.assistantNums[chatID], nil
}

func (f *fakeRepo) SetAssistantNum(_ context.Context, chatID int64, num int) error {
	f.assistantNums[chatID] = num
	return nil
}

func (f *fakeRepo) PlayMode(_ context.Context, chatID int64) (string, error) {
	return f.playModes[chatID], nil
}

func (f *fakeRepo) SetPlayMode(_ context.Context, chatID int64, mode string) error {
	f.playModes[chatID] = mode
	return nil
}

func (f *fakeRepo) AuthUsers(_ context.Context, chatID int64) ([]int64, error) {
	return f.authUsers[chatID], nil
}

func (f *fakeRepo) AddAuthUser(_ context.Context, chatID, userID int64) error {
	f.authUsers[chatID] = append(f.authUsers[chatID], userID)
	return nil
}

func (f *fakeRepo) RemoveAuthUser(context.Context, int64, int64) error { return nil }
func (f *fakeRepo) Chats(context.Context) ([]int64, error)            { return nil, nil }
func (f *fakeRepo) AddChat(context.Context, int64) error              { return nil }
func (f *fakeRepo) RemoveChat(context.Context, int64) error           { return nil }
func (f *fakeRepo) Users(context.Context) ([]int64, error)            { return nil, nil }
func (f *fakeRepo) AddUser(context.Context, int64) error              { return nil }

func (f *fakeRepo) CacheSet(_ context.Context, id string) ([]int64, error) {
	return f.cacheSets[id], nil
}

func (f *fakeRepo) AddToCacheSet(_ context.Context, id string, value int64) error {
	f.cacheSets[id] = append(f.cacheSets[id], value)
	return nil
}

func (f *fakeRepo) RemoveFromCacheSet(context.Context, string, int64) error { return nil }

func (f *fakeRepo) LoggerEnabled(context.Context) (bool, error) { return f.logger, nil }

func (f *fakeRepo) SetLoggerEnabled(_ context.Context, enabled bool) error {
	f.logger = enabled
	return nil
}

// fakeGateway records outgoing platform calls.
type fakeGateway struct {
	admins    map[int64][]int64
	leftChats []int64
	sentTo    []int64
	sentText  []string
}

func (g *fakeGateway) MembershipStatus(context.Context, int64, int64) (ports.MembershipStatus, error) {
	return ports.MembershipMember, nil
}

func (g *fakeGateway) Unban(context.Context, int64, int64) error { return nil }
func (g *fakeGateway) InviteLink(context.Context, int64) (string, error) {
	return "https://t.me/+abc", nil
}
func (g *fakeGateway) ApproveJoinRequest(context.Context, int64, int64) error { return nil }

func (g *fakeGateway) AdminIDs(_ context.Context, chatID int64) ([]int64, error) {
	return g.admins[chatID], nil
}

func (g *fakeGateway) LeaveChat(_ context.Context, chatID int64) error {
	g.leftChats = append(g.leftChats, chatID)
	return nil
}

func (g *fakeGateway) SendText(_ context.Context, chatID int64, text string) error {
	g.sentTo = append(g.sentTo, chatID)
	g.sentText = append(g.sentText, text)
	return nil
}

type fakeAssistant struct{}

func (fakeAssistant) Num() int      { return 1 }
func (fakeAssistant) UserID() int64 { return 777 }
func (fakeAssistant) Join(context.Context, string) (ports.JoinResult, error) {
	return ports.JoinCompleted, nil
}
func (fakeAssistant) Leave(context.Context, int64) error { return nil }

type fakePool struct{}

func (fakePool) Size() int { return 1 }
func (fakePool) Get(int) (ports.AssistantHandle, error) {
	return fakeAssistant{}, nil
}

type fakeStreamer struct {
	played []*domain.Track
}

func (s *fakeStreamer) Play(_ context.Context, _ int64, _ ports.AssistantHandle, track *domain.Track) error {
	s.played = append(s.played, track)
	return nil
}

func (s *fakeStreamer) Stop(context.Context, int64) error   { return nil }
func (s *fakeStreamer) Pause(context.Context, int64) error  { return nil }
func (s *fakeStreamer) Resume(context.Context, int64) error { return nil }
func (s *fakeStreamer) OnFinished(func(int64))              {}

// fakeBackend serves canned results for both search and URL fetch.
type fakeBackend struct {
	source  domain.TrackSource
	track   *domain.Track
	fetches int
}

func (b *fakeBackend) Source() domain.TrackSource { return b.source }

func (b *fakeBackend) MatchesURL(url string) bool {
	return strings.Contains(url, "youtu")
}

func (b *fakeBackend) FetchByURL(context.Context, string, bool) (*domain.Track, error) {
	b.fetches++
	return b.track, nil
}

func (b *fakeBackend) Search(context.Context, string, bool) (*domain.Track, error) {
	return b.track, nil
}

func (b *fakeBackend) Download(_ context.Context, track *domain.Track) (string, error) {
	return "downloads/" + track.ID + ".m4a", nil
}

type handlerFixture struct {
	handlers *Handlers
	sessions *usecases.SessionStore
	playback *usecases.PlaybackService
	repo     *fakeRepo
	gateway  *fakeGateway
	streamer *fakeStreamer
	backend  *fakeBackend
}

func newHandlerFixture() *handlerFixture {
	repo := newFakeRepo()
	gateway := &fakeGateway{admins: map[int64][]int64{testChatID: {testAdminID}}}

	sessions := usecases.NewSessionStore(repo, gateway, 1, testOwnerID)
	queue := usecases.NewQueueService(usecases.DefaultQueueLimit)
	backend := &fakeBackend{
		source: domain.TrackSourceYouTube,
		track:  domain.NewTrack("vid11chars", "Test Song", 180, "https://youtu.be/vid11chars", "", "Channel", false, domain.TrackSourceYouTube),
	}
	resolver := usecases.NewResolver("downloads", backend)
	streamer := &fakeStreamer{}
	playback := usecases.NewPlaybackService(sessions, queue, resolver, gateway, fakePool{}, streamer, 3600, false)

	handlers := NewHandlers(sessions, playback, resolver, gateway, nil, 0)

	return &handlerFixture{
		handlers: handlers,
		sessions: sessions,
		playback: playback,
		repo:     repo,
		gateway:  gateway,
		streamer: streamer,
		backend:  backend,
	}
}

// groupRequest builds a supergroup command request with no reply context.
func groupRequest(senderID int64, args string) request {
	return request{
		chatID:          testChatID,
		senderID:        senderID,
		senderName:      "Tester",
		messageID:       1,
		args:            args,
		supergroup:      true,
		replyAttachment: func(bool) ports.Attachment { return nil },
		replyUserID:     func() int64 { return 0 },
	}
}
