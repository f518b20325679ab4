package usecases

import (
	"context"
	"strings"
	"sync"

	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

// mockRepository is an in-memory SessionRepository that counts writes so
// tests can assert no-op semantics.
type mockRepository struct {
	mu sync.Mutex

	pingErr error

	assistantNums     map[int64]int
	setAssistantCalls int

	playModes        map[int64]string
	setPlayModeCalls int

	authUsers       map[int64][]int64
	addAuthCalls    int
	removeAuthCalls int

	chats []int64
	users []int64

	cacheSets        map[string][]int64
	addCacheCalls    int
	removeCacheCalls int

	loggerEnabled  bool
	setLoggerCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		assistantNums: make(map[int64]int),
		playModes:     make(map[int64]string),
		authUsers:     make(map[int64][]int64),
		cacheSets:     make(map[string][]int64),
	}
}

func (r *mockRepository) Ping(_ context.Context) error { return r.pingErr }

func (r *mockRepository) AssistantNum(_ context.Context, chatID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.assistantNums[chatID], nil
}

func (r *mockRepository) SetAssistantNum(_ context.Context, chatID int64, num int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assistantNums[chatID] = num
	r.setAssistantCalls++
	return nil
}

func (r *mockRepository) PlayMode(_ context.Context, chatID int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playModes[chatID], nil
}

func (r *mockRepository) SetPlayMode(_ context.Context, chatID int64, mode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playModes[chatID] = mode
	r.setPlayModeCalls++
	return nil
}

func (r *mockRepository) AuthUsers(_ context.Context, chatID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.authUsers[chatID], nil
}

func (r *mockRepository) AddAuthUser(_ context.Context, chatID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authUsers[chatID] = append(r.authUsers[chatID], userID)
	r.addAuthCalls++
	return nil
}

func (r *mockRepository) RemoveAuthUser(_ context.Context, chatID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.authUsers[chatID][:0]
	for _, id := range r.authUsers[chatID] {
		if id != userID {
			kept = append(kept, id)
		}
	}
	r.authUsers[chatID] = kept
	r.removeAuthCalls++
	return nil
}

func (r *mockRepository) Chats(_ context.Context) ([]int64, error) { return r.chats, nil }

func (r *mockRepository) AddChat(_ context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats = append(r.chats, chatID)
	return nil
}

func (r *mockRepository) RemoveChat(_ context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.chats[:0]
	for _, id := range r.chats {
		if id != chatID {
			kept = append(kept, id)
		}
	}
	r.chats = kept
	return nil
}

func (r *mockRepository) Users(_ context.Context) ([]int64, error) { return r.users, nil }

func (r *mockRepository) AddUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	return nil
}

func (r *mockRepository) CacheSet(_ context.Context, id string) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cacheSets[id], nil
}

func (r *mockRepository) AddToCacheSet(_ context.Context, id string, value int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheSets[id] = append(r.cacheSets[id], value)
	r.addCacheCalls++
	return nil
}

func (r *mockRepository) RemoveFromCacheSet(_ context.Context, id string, value int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.cacheSets[id][:0]
	for _, v := range r.cacheSets[id] {
		if v != value {
			kept = append(kept, v)
		}
	}
	r.cacheSets[id] = kept
	r.removeCacheCalls++
	return nil
}

func (r *mockRepository) LoggerEnabled(_ context.Context) (bool, error) {
	return r.loggerEnabled, nil
}

func (r *mockRepository) SetLoggerEnabled(_ context.Context, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggerEnabled = enabled
	r.setLoggerCalls++
	return nil
}

// mockGateway is a scriptable ChatGateway.
type mockGateway struct {
	status    ports.MembershipStatus
	statusErr error

	unbanCalls int
	unbanErr   error

	invite    string
	inviteErr error

	approveCalls int
	approveErr   error

	admins     map[int64][]int64
	adminCalls int

	leftChats []int64
	sent      []string
}

func (g *mockGateway) MembershipStatus(_ context.Context, _, _ int64) (ports.MembershipStatus, error) {
	return g.status, g.statusErr
}

func (g *mockGateway) Unban(_ context.Context, _, _ int64) error {
	g.unbanCalls++
	return g.unbanErr
}

func (g *mockGateway) InviteLink(_ context.Context, _ int64) (string, error) {
	return g.invite, g.inviteErr
}

func (g *mockGateway) ApproveJoinRequest(_ context.Context, _, _ int64) error {
	g.approveCalls++
	return g.approveErr
}

func (g *mockGateway) AdminIDs(_ context.Context, chatID int64) ([]int64, error) {
	g.adminCalls++
	return g.admins[chatID], nil
}

func (g *mockGateway) LeaveChat(_ context.Context, chatID int64) error {
	g.leftChats = append(g.leftChats, chatID)
	return nil
}

func (g *mockGateway) SendText(_ context.Context, _ int64, text string) error {
	g.sent = append(g.sent, text)
	return nil
}

// mockAssistant is a scriptable AssistantHandle.
type mockAssistant struct {
	num    int
	userID int64

	joinResult ports.JoinResult
	joinErr    error
	joinCalls  int
	lastInvite string

	leaveCalls int
	leftChats  []int64
}

func (a *mockAssistant) Num() int      { return a.num }
func (a *mockAssistant) UserID() int64 { return a.userID }

func (a *mockAssistant) Join(_ context.Context, invite string) (ports.JoinResult, error) {
	a.joinCalls++
	a.lastInvite = invite
	return a.joinResult, a.joinErr
}

func (a *mockAssistant) Leave(_ context.Context, chatID int64) error {
	a.leaveCalls++
	a.leftChats = append(a.leftChats, chatID)
	return nil
}

// mockPool serves a single assistant for every index.
type mockPool struct {
	assistant *mockAssistant
	getErr    error
}

func (p *mockPool) Size() int { return 1 }

func (p *mockPool) Get(_ int) (ports.AssistantHandle, error) {
	if p.getErr != nil {
		return nil, p.getErr
	}
	return p.assistant, nil
}

// mockStreamer records streaming calls and exposes the finish callback.
type mockStreamer struct {
	playErr error

	played      []*domain.Track
	stopCalls   int
	pauseCalls  int
	resumeCalls int

	finished func(chatID int64)
}

func (s *mockStreamer) Play(_ context.Context, _ int64, _ ports.AssistantHandle, track *domain.Track) error {
	if s.playErr != nil {
		return s.playErr
	}
	s.played = append(s.played, track)
	return nil
}

func (s *mockStreamer) Stop(_ context.Context, _ int64) error {
	s.stopCalls++
	return nil
}

func (s *mockStreamer) Pause(_ context.Context, _ int64) error {
	s.pauseCalls++
	return nil
}

func (s *mockStreamer) Resume(_ context.Context, _ int64) error {
	s.resumeCalls++
	return nil
}

func (s *mockStreamer) OnFinished(fn func(chatID int64)) { s.finished = fn }

// mockBackend is a scriptable SourceBackend keyed on a URL substring.
type mockBackend struct {
	source      domain.TrackSource
	urlFragment string

	fetchTrack *domain.Track
	fetchErr   error

	searchTrack   *domain.Track
	searchErr     error
	searchQueries []string

	downloadPath  string
	downloadErr   error
	downloadCalls int
}

func (b *mockBackend) Source() domain.TrackSource { return b.source }

func (b *mockBackend) MatchesURL(url string) bool {
	return b.urlFragment != "" && strings.Contains(url, b.urlFragment)
}

func (b *mockBackend) FetchByURL(_ context.Context, _ string, _ bool) (*domain.Track, error) {
	return b.fetchTrack, b.fetchErr
}

func (b *mockBackend) Search(_ context.Context, query string, _ bool) (*domain.Track, error) {
	b.searchQueries = append(b.searchQueries, query)
	return b.searchTrack, b.searchErr
}

func (b *mockBackend) Download(_ context.Context, _ *domain.Track) (string, error) {
	b.downloadCalls++
	return b.downloadPath, b.downloadErr
}

// mockAttachment is a scriptable replied-media attachment.
type mockAttachment struct {
	id          string
	title       string
	durationSec int
	video       bool
	path        string
	downloadErr error
}

func (a *mockAttachment) ID() string       { return a.id }
func (a *mockAttachment) Title() string    { return a.title }
func (a *mockAttachment) DurationSec() int { return a.durationSec }
func (a *mockAttachment) IsVideo() bool    { return a.video }

func (a *mockAttachment) Download(_ context.Context, _ string) (string, error) {
	return a.path, a.downloadErr
}

func testTrack(id string, durationSec int) *domain.Track {
	return domain.NewTrack(id, "track "+id, durationSec, "https://youtu.be/"+id, "", "channel", false, domain.TrackSourceYouTube)
}

func downloadedTrack(id string, durationSec int) *domain.Track {
	t := testTrack(id, durationSec)
	t.FilePath = "downloads/" + id + ".webm"
	return t
}
