package bot

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/amarnathcjd/gogram/telegram"
)

// Bot manages the Telegram bot lifecycle and module coordination.
type Bot struct {
	config   *Config
	client   *telegram.Client
	modules  []Module
	handlers map[string]CommandHandler
}

// NewBot creates a new Bot instance with the given configuration.
func NewBot(cfg *Config) *Bot {
	return &Bot{
		config:   cfg,
		modules:  make([]Module, 0),
		handlers: make(map[string]CommandHandler),
	}
}

// LoadModules loads modules from the global registry.
func (b *Bot) LoadModules() {
	b.modules = Modules()
}

// Client returns the underlying Telegram client. It is nil before Start.
func (b *Bot) Client() *telegram.Client {
	return b.client
}

// handleFlood pauses execution for the duration Telegram demands.
func handleFlood(err error) bool {
	if wait := telegram.GetFloodWait(err); wait > 0 {
		slog.Warn("flood wait triggered", "seconds", wait)
		time.Sleep(time.Duration(wait) * time.Second)
		return true
	}
	return false
}

// Start connects to Telegram, initializes modules, and registers command handlers.
func (b *Bot) Start() error {
	client, err := telegram.NewClient(telegram.ClientConfig{
		AppID:         b.config.APIID,
		AppHash:       b.config.APIHash,
		MemorySession: true,
		SessionName:   "bot",
		FloodHandler:  handleFlood,
	})
	if err != nil {
		return fmt.Errorf("failed to create Telegram client: %w", err)
	}
	b.client = client

	if _, err := b.client.Conn(); err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	if err := b.client.LoginBot(b.config.BotToken); err != nil {
		return fmt.Errorf("failed to authorize bot: %w", err)
	}

	// Load module-specific configuration
	if err := b.loadModuleConfigs(); err != nil {
		return err
	}

	// Initialize modules
	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	// Build handler map and register handlers
	b.buildHandlerMap()
	b.registerHandlers()

	slog.Info("started bot", "username", b.client.Me().Username)

	if b.config.LoggerID != 0 {
		// Best effort: a missing log chat must not stop startup.
		if _, err := b.client.SendMessage(b.config.LoggerID, "Bot started."); err != nil {
			slog.Warn("failed to notify logger chat", "error", err)
		}
	}

	return nil
}

// Stop gracefully shuts down the bot.
func (b *Bot) Stop() error {
	for _, mod := range b.modules {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	if b.client != nil {
		return b.client.Stop()
	}

	return nil
}

// loadModuleConfigs loads configuration for modules that require it.
func (b *Bot) loadModuleConfigs() error {
	for _, mod := range b.modules {
		cm, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := cm.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
		}
	}
	return nil
}

// initModules initializes all loaded modules.
func (b *Bot) initModules() error {
	deps := ModuleDependencies{
		Config: b.config,
		Client: b.client,
	}

	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(b.modules))
	for i, mod := range b.modules {
		moduleNames[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

// buildHandlerMap builds the command name to handler mapping.
func (b *Bot) buildHandlerMap() {
	for _, mod := range b.modules {
		maps.Copy(b.handlers, mod.CommandHandlers())
	}
}

// registerHandlers registers all collected command handlers with the client.
func (b *Bot) registerHandlers() {
	for name, handler := range b.handlers {
		b.client.On("message:/"+name, b.wrapHandler(name, handler))
		slog.Debug("registered command", "command", name)
	}
}

// wrapHandler adapts a CommandHandler to the gogram handler signature,
// attaching a live responder and logging failures.
func (b *Bot) wrapHandler(name string, handler CommandHandler) func(m *telegram.NewMessage) error {
	return func(m *telegram.NewMessage) error {
		responder := NewTelegramResponder(m)
		if err := handler(m, responder); err != nil {
			slog.Error("failed to handle command",
				"command", name,
				"chat_id", m.ChatID(),
				"error", err,
			)
		}
		return nil
	}
}
