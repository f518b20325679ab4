package player

import (
	"context"
	"fmt"
	"time"

	"github.com/amarnathcjd/gogram/telegram"
	"github.com/tgsonata/sonata/internal/bot"
	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
	"github.com/tgsonata/sonata/internal/modules/player/application/usecases"
	"github.com/tgsonata/sonata/internal/modules/player/infrastructure"
	"github.com/tgsonata/sonata/internal/modules/player/presentation"
)

// initTimeout bounds database connection and assistant login at startup.
const initTimeout = 2 * time.Minute

// databaseName is the MongoDB database holding all session state.
const databaseName = "sonata"

func init() {
	bot.Register(&Module{})
}

// Module provides group voice chat music playback.
type Module struct {
	repo      *infrastructure.MongoRepository
	pool      *infrastructure.AssistantPool
	handlers  *presentation.Handlers
	videoPlay bool
}

// Name returns the module name.
func (m *Module) Name() string {
	return "player"
}

// CommandHandlers returns the command handlers for this module.
func (m *Module) CommandHandlers() map[string]bot.CommandHandler {
	handlers := map[string]bot.CommandHandler{
		"play":      m.handlers.Play,
		"playforce": m.handlers.PlayForce,
		"mode":      m.handlers.Mode,
		"auth":      m.handlers.Auth,
		"unauth":    m.handlers.Unauth,
		"queue":     m.handlers.Queue,
		"skip":      m.handlers.Skip,
		"stop":      m.handlers.Stop,
		"pause":     m.handlers.Pause,
		"resume":    m.handlers.Resume,
		"reload":    m.handlers.Reload,
		"logger":    m.handlers.Logger,
		"block":     m.handlers.Block,
		"unblock":   m.handlers.Unblock,
		"blacklist": m.handlers.BlacklistChat,
		"whitelist": m.handlers.WhitelistChat,
		"stats":     m.handlers.Stats,
		"addsudo":   m.handlers.AddSudo,
		"delsudo":   m.handlers.DelSudo,
	}
	if m.videoPlay {
		handlers["vplay"] = m.handlers.VPlay
		handlers["vplayforce"] = m.handlers.VPlayForce
	}
	return handlers
}

// Init connects the database, logs in the assistant accounts, and wires the
// playback services.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	cfg := deps.Config
	m.videoPlay = cfg.VideoPlay

	repo, err := infrastructure.ConnectMongo(ctx, cfg.MongoURL, databaseName)
	if err != nil {
		return err
	}
	m.repo = repo

	pool, err := infrastructure.NewAssistantPool(cfg.APIID, cfg.APIHash, cfg.Sessions())
	if err != nil {
		return err
	}
	m.pool = pool

	gateway := infrastructure.NewTelegramGateway(deps.Client)

	sessions := usecases.NewSessionStore(repo, gateway, pool.Size(), cfg.OwnerID)
	if err := sessions.LoadCache(ctx); err != nil {
		return fmt.Errorf("failed to warm session cache: %w", err)
	}

	backends := []ports.SourceBackend{
		infrastructure.NewYouTubeSource(cfg.APIURL, cfg.DownloadsDir),
	}
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		backends = append(backends, infrastructure.NewSpotifySource(
			cfg.SpotifyClientID,
			cfg.SpotifyClientSecret,
			cfg.SpotifyDLURL,
			cfg.DownloadsDir,
		))
	}

	queue := usecases.NewQueueService(cfg.QueueLimit)
	resolver := usecases.NewResolver(cfg.DownloadsDir, backends...)
	streamer := infrastructure.NewRTMPStreamer()
	playback := usecases.NewPlaybackService(
		sessions,
		queue,
		resolver,
		gateway,
		pool,
		streamer,
		cfg.DurationLimitSeconds(),
		cfg.AutoLeave,
	)

	attachments := func(msg *telegram.NewMessage, video bool) ports.Attachment {
		return infrastructure.NewTelegramAttachment(msg, video)
	}
	m.handlers = presentation.NewHandlers(sessions, playback, resolver, gateway, attachments, cfg.LoggerID)

	return nil
}

// Shutdown disconnects the assistants and the database.
func (m *Module) Shutdown() error {
	if m.pool != nil {
		m.pool.Stop()
	}
	if m.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return m.repo.Close(ctx)
	}
	return nil
}
