package usecases

import (
	"context"
	"testing"

	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

func TestGetAssistantAssignsOnceAndPersists(t *testing.T) {
	repo := newMockRepository()
	store := NewSessionStore(repo, &mockGateway{}, 3, 0)
	store.intn = func(int) int { return 1 } // always picks assistant 2

	num, err := store.GetAssistant(context.Background(), -100123)
	if err != nil {
		t.Fatalf("GetAssistant() error = %v", err)
	}
	if num != 2 {
		t.Errorf("GetAssistant() = %d, want 2", num)
	}
	if repo.setAssistantCalls != 1 {
		t.Errorf("setAssistantCalls = %d, want 1", repo.setAssistantCalls)
	}

	again, err := store.GetAssistant(context.Background(), -100123)
	if err != nil {
		t.Fatalf("GetAssistant() second call error = %v", err)
	}
	if again != num {
		t.Errorf("GetAssistant() second call = %d, want stable %d", again, num)
	}
	if repo.setAssistantCalls != 1 {
		t.Errorf("setAssistantCalls after repeat = %d, want 1", repo.setAssistantCalls)
	}
}

func TestGetAssistantReassignsOutOfRange(t *testing.T) {
	repo := newMockRepository()
	repo.assistantNums[-100123] = 7 // persisted index exceeds current pool

	store := NewSessionStore(repo, &mockGateway{}, 3, 0)
	store.intn = func(int) int { return 0 }

	num, err := store.GetAssistant(context.Background(), -100123)
	if err != nil {
		t.Fatalf("GetAssistant() error = %v", err)
	}
	if num != 1 {
		t.Errorf("GetAssistant() = %d, want reassigned 1", num)
	}
	if repo.assistantNums[-100123] != 1 {
		t.Errorf("persisted num = %d, want 1", repo.assistantNums[-100123])
	}
}

func TestPlayModeDefaultsToYouTube(t *testing.T) {
	store := NewSessionStore(newMockRepository(), &mockGateway{}, 1, 0)

	mode, err := store.GetPlayMode(context.Background(), -100123)
	if err != nil {
		t.Fatalf("GetPlayMode() error = %v", err)
	}
	if mode != domain.PlayModeYouTube {
		t.Errorf("GetPlayMode() = %q, want %q", mode, domain.PlayModeYouTube)
	}
}

func TestSetPlayModeNormalizesAndRoundTrips(t *testing.T) {
	repo := newMockRepository()
	store := NewSessionStore(repo, &mockGateway{}, 1, 0)

	mode, err := store.SetPlayMode(context.Background(), -100123, "  Spotify ")
	if err != nil {
		t.Fatalf("SetPlayMode() error = %v", err)
	}
	if mode != domain.PlayModeSpotify {
		t.Errorf("SetPlayMode() = %q, want %q", mode, domain.PlayModeSpotify)
	}
	if repo.playModes[-100123] != "spotify" {
		t.Errorf("persisted mode = %q, want %q", repo.playModes[-100123], "spotify")
	}

	// A fresh store must read the persisted value back.
	fresh := NewSessionStore(repo, &mockGateway{}, 1, 0)
	got, err := fresh.GetPlayMode(context.Background(), -100123)
	if err != nil {
		t.Fatalf("GetPlayMode() error = %v", err)
	}
	if got != domain.PlayModeSpotify {
		t.Errorf("GetPlayMode() after restart = %q, want %q", got, domain.PlayModeSpotify)
	}
}

func TestSetPlayModeRejectsInvalid(t *testing.T) {
	repo := newMockRepository()
	store := NewSessionStore(repo, &mockGateway{}, 1, 0)

	if _, err := store.SetPlayMode(context.Background(), -100123, "deezer"); err == nil {
		t.Fatal("SetPlayMode() with invalid mode expected error, got nil")
	}
	if repo.setPlayModeCalls != 0 {
		t.Errorf("setPlayModeCalls = %d, want 0 after rejected mode", repo.setPlayModeCalls)
	}

	mode, err := store.GetPlayMode(context.Background(), -100123)
	if err != nil {
		t.Fatalf("GetPlayMode() error = %v", err)
	}
	if mode != domain.DefaultPlayMode {
		t.Errorf("GetPlayMode() after rejected set = %q, want default %q", mode, domain.DefaultPlayMode)
	}
}

func TestGrantAuthIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	store := NewSessionStore(repo, &mockGateway{}, 1, 0)
	ctx := context.Background()

	if err := store.GrantAuth(ctx, -100123, 42); err != nil {
		t.Fatalf("GrantAuth() error = %v", err)
	}
	if err := store.GrantAuth(ctx, -100123, 42); err != nil {
		t.Fatalf("GrantAuth() repeat error = %v", err)
	}
	if repo.addAuthCalls != 1 {
		t.Errorf("addAuthCalls = %d, want 1", repo.addAuthCalls)
	}

	ok, err := store.IsAuthorized(ctx, -100123, 42)
	if err != nil {
		t.Fatalf("IsAuthorized() error = %v", err)
	}
	if !ok {
		t.Error("IsAuthorized() = false, want true after grant")
	}
}

func TestRevokeAuthAbsentUserIsNoOp(t *testing.T) {
	repo := newMockRepository()
	store := NewSessionStore(repo, &mockGateway{}, 1, 0)

	if err := store.RevokeAuth(context.Background(), -100123, 42); err != nil {
		t.Fatalf("RevokeAuth() error = %v", err)
	}
	if repo.removeAuthCalls != 0 {
		t.Errorf("removeAuthCalls = %d, want 0", repo.removeAuthCalls)
	}
}

func TestIsPrivileged(t *testing.T) {
	const chatID = -100123

	gateway := &mockGateway{admins: map[int64][]int64{chatID: {10, 11}}}
	repo := newMockRepository()
	repo.cacheSets[ports.CacheSudoers] = []int64{20}
	repo.authUsers[chatID] = []int64{30}

	store := NewSessionStore(repo, gateway, 1, 99)
	if err := store.LoadCache(context.Background()); err != nil {
		t.Fatalf("LoadCache() error = %v", err)
	}

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{"owner", 99, true},
		{"sudoer", 20, true},
		{"authorized user", 30, true},
		{"chat admin", 11, true},
		{"plain member", 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.IsPrivileged(context.Background(), chatID, tt.userID)
			if err != nil {
				t.Fatalf("IsPrivileged() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsPrivileged(%d) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestGetAdminsCachesUntilReload(t *testing.T) {
	const chatID = -100123

	gateway := &mockGateway{admins: map[int64][]int64{chatID: {10}}}
	store := NewSessionStore(newMockRepository(), gateway, 1, 0)
	ctx := context.Background()

	if _, err := store.GetAdmins(ctx, chatID, false); err != nil {
		t.Fatalf("GetAdmins() error = %v", err)
	}
	if _, err := store.GetAdmins(ctx, chatID, false); err != nil {
		t.Fatalf("GetAdmins() repeat error = %v", err)
	}
	if gateway.adminCalls != 1 {
		t.Errorf("adminCalls = %d, want 1 (cached)", gateway.adminCalls)
	}

	if _, err := store.GetAdmins(ctx, chatID, true); err != nil {
		t.Fatalf("GetAdmins(reload) error = %v", err)
	}
	if gateway.adminCalls != 2 {
		t.Errorf("adminCalls after reload = %d, want 2", gateway.adminCalls)
	}
}

func TestMutateCacheSetSkipsRedundantWrites(t *testing.T) {
	repo := newMockRepository()
	store := NewSessionStore(repo, &mockGateway{}, 1, 0)
	ctx := context.Background()

	if err := store.SetSudoer(ctx, 20, true); err != nil {
		t.Fatalf("SetSudoer() error = %v", err)
	}
	if err := store.SetSudoer(ctx, 20, true); err != nil {
		t.Fatalf("SetSudoer() repeat error = %v", err)
	}
	if repo.addCacheCalls != 1 {
		t.Errorf("addCacheCalls = %d, want 1", repo.addCacheCalls)
	}
	if !store.IsSudoer(20) {
		t.Error("IsSudoer(20) = false, want true")
	}

	if err := store.SetSudoer(ctx, 20, false); err != nil {
		t.Fatalf("SetSudoer(false) error = %v", err)
	}
	if repo.removeCacheCalls != 1 {
		t.Errorf("removeCacheCalls = %d, want 1", repo.removeCacheCalls)
	}
	if store.IsSudoer(20) {
		t.Error("IsSudoer(20) = true after removal, want false")
	}
}

func TestLoadCachePopulatesCollections(t *testing.T) {
	repo := newMockRepository()
	repo.chats = []int64{-1, -2}
	repo.users = []int64{1, 2, 3}
	repo.cacheSets[ports.CacheBlacklistedChats] = []int64{-9}
	repo.cacheSets[ports.CacheBlacklistedUsers] = []int64{66}
	repo.loggerEnabled = true

	store := NewSessionStore(repo, &mockGateway{}, 1, 0)
	if err := store.LoadCache(context.Background()); err != nil {
		t.Fatalf("LoadCache() error = %v", err)
	}

	if got := store.ChatCount(); got != 2 {
		t.Errorf("ChatCount() = %d, want 2", got)
	}
	if got := store.UserCount(); got != 3 {
		t.Errorf("UserCount() = %d, want 3", got)
	}
	if !store.IsBlacklistedChat(-9) {
		t.Error("IsBlacklistedChat(-9) = false, want true")
	}
	if !store.IsBlacklistedUser(66) {
		t.Error("IsBlacklistedUser(66) = false, want true")
	}
	if !store.LoggerEnabled() {
		t.Error("LoggerEnabled() = false, want true")
	}
}

func TestRememberChatWritesOnce(t *testing.T) {
	repo := newMockRepository()
	store := NewSessionStore(repo, &mockGateway{}, 1, 0)
	ctx := context.Background()

	if err := store.RememberChat(ctx, -100123); err != nil {
		t.Fatalf("RememberChat() error = %v", err)
	}
	if err := store.RememberChat(ctx, -100123); err != nil {
		t.Fatalf("RememberChat() repeat error = %v", err)
	}
	if len(repo.chats) != 1 {
		t.Errorf("stored chats = %d, want 1", len(repo.chats))
	}
}

func TestActiveCallStateIsEphemeral(t *testing.T) {
	store := NewSessionStore(newMockRepository(), &mockGateway{}, 1, 0)

	if store.IsActiveCall(-100123) {
		t.Error("IsActiveCall() = true before any call")
	}
	store.SetActiveCall(-100123, true)
	if !store.IsActiveCall(-100123) {
		t.Error("IsActiveCall() = false after SetActiveCall(true)")
	}
	store.SetActiveCall(-100123, false)
	if store.IsActiveCall(-100123) {
		t.Error("IsActiveCall() = true after SetActiveCall(false)")
	}
}
