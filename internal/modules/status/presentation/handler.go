package presentation

import (
	"fmt"

	"github.com/amarnathcjd/gogram/telegram"
	"github.com/tgsonata/sonata/internal/bot"
	"github.com/tgsonata/sonata/internal/modules/status/application"
)

const textWelcome = "👋 Hi! I play music in group voice chats.\n" +
	"Add me to a supergroup, start a voice chat, and use /play to get going.\n" +
	"Send /help for the full command list."

const textHelp = `<b>Playback</b>
/play &lt;name or link&gt; — queue a track, or reply to a media message
/vplay — same as /play but streams video
/playforce — jump the queue (admins)
/skip /pause /resume /stop — control the stream (admins)
/queue — show what is up next
/mode youtube|spotify — default search source for this chat

<b>Access</b>
/auth /unauth — manage authorized users (admins)
/reload — refresh the admin cache

<b>Misc</b>
/ping — check that I am alive
/stats — chats and users served`

// StartHandler handles the /start command.
type StartHandler struct {
	supportLink string
}

// NewStartHandler creates a new StartHandler.
func NewStartHandler(supportLink string) *StartHandler {
	return &StartHandler{supportLink: supportLink}
}

// Handle sends the welcome message.
func (h *StartHandler) Handle(m *telegram.NewMessage, r bot.Responder) error {
	_, err := r.Reply(textWelcome + supportFooter(h.supportLink))
	return err
}

// HelpHandler handles the /help command.
type HelpHandler struct {
	supportLink string
}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler(supportLink string) *HelpHandler {
	return &HelpHandler{supportLink: supportLink}
}

// Handle sends the command reference.
func (h *HelpHandler) Handle(m *telegram.NewMessage, r bot.Responder) error {
	_, err := r.Reply(textHelp + supportFooter(h.supportLink))
	return err
}

func supportFooter(link string) string {
	if link == "" {
		return ""
	}
	return fmt.Sprintf("\n\nNeed help? Join the <a href=\"%s\">support chat</a>.", link)
}

// PingHandler handles the /ping command.
type PingHandler struct {
	interactor *application.UptimeInteractor
}

// NewPingHandler creates a new PingHandler.
func NewPingHandler(interactor *application.UptimeInteractor) *PingHandler {
	return &PingHandler{interactor: interactor}
}

// Handle reports liveness and uptime.
func (h *PingHandler) Handle(m *telegram.NewMessage, r bot.Responder) error {
	report := h.interactor.Execute()

	_, err := r.Reply(fmt.Sprintf("🏓 Pong! Up for <b>%s</b>.", report.Uptime))
	return err
}
