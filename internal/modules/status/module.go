package status

import (
	"github.com/tgsonata/sonata/internal/bot"
	"github.com/tgsonata/sonata/internal/modules/status/application"
	"github.com/tgsonata/sonata/internal/modules/status/presentation"
)

func init() {
	bot.Register(&Module{})
}

// Module provides basic liveness and help commands.
type Module struct {
	startHandler *presentation.StartHandler
	helpHandler  *presentation.HelpHandler
	pingHandler  *presentation.PingHandler
}

// Name returns the module name.
func (m *Module) Name() string {
	return "status"
}

// CommandHandlers returns the command handlers for this module.
func (m *Module) CommandHandlers() map[string]bot.CommandHandler {
	return map[string]bot.CommandHandler{
		"start": m.startHandler.Handle,
		"help":  m.helpHandler.Handle,
		"ping":  m.pingHandler.Handle,
	}
}

// Init initializes the module.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	m.startHandler = presentation.NewStartHandler(deps.Config.SupportChatLink)
	m.helpHandler = presentation.NewHelpHandler(deps.Config.SupportChatLink)
	m.pingHandler = presentation.NewPingHandler(application.NewUptimeInteractor())
	return nil
}

// Shutdown cleans up module resources.
func (m *Module) Shutdown() error {
	return nil
}
