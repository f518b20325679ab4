package bot

import (
	"github.com/amarnathcjd/gogram/telegram"
)

// CommandHandler handles a bot command message and replies through the Responder.
type CommandHandler func(m *telegram.NewMessage, r Responder) error

// ModuleDependencies provides dependencies that modules may need during initialization.
type ModuleDependencies struct {
	Config *Config
	Client *telegram.Client
}

// Module defines the interface that all bot modules must implement.
type Module interface {
	// Name returns the unique identifier for this module.
	Name() string

	// CommandHandlers returns a map of command names (without the leading
	// slash) to their handlers.
	CommandHandlers() map[string]CommandHandler

	// Init initializes the module with the provided dependencies.
	Init(deps ModuleDependencies) error

	// Shutdown gracefully shuts down the module.
	Shutdown() error
}

// ConfigurableModule is an optional interface for modules that need configuration.
// Modules implementing this interface will have LoadConfig called before Init.
type ConfigurableModule interface {
	// LoadConfig loads and validates module-specific configuration.
	// Called before Init() and before the Telegram connection is established.
	// Should return an error if required configuration is missing or invalid.
	LoadConfig() error
}
