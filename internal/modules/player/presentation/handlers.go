package presentation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/amarnathcjd/gogram/telegram"
	"github.com/tgsonata/sonata/internal/bot"
	"github.com/tgsonata/sonata/internal/modules/player/application/ports"
	"github.com/tgsonata/sonata/internal/modules/player/application/usecases"
	"github.com/tgsonata/sonata/internal/modules/player/domain"
)

// handlerTimeout bounds one command end to end, downloads included.
const handlerTimeout = 10 * time.Minute

// AttachmentFactory builds a playable attachment from a replied media message.
type AttachmentFactory func(msg *telegram.NewMessage, video bool) ports.Attachment

// Handlers carries the command handlers for the player module.
type Handlers struct {
	sessions    *usecases.SessionStore
	playback    *usecases.PlaybackService
	resolver    *usecases.Resolver
	gateway     ports.ChatGateway
	attachments AttachmentFactory
	loggerID    int64
}

// NewHandlers wires the command handlers.
func NewHandlers(
	sessions *usecases.SessionStore,
	playback *usecases.PlaybackService,
	resolver *usecases.Resolver,
	gateway ports.ChatGateway,
	attachments AttachmentFactory,
	loggerID int64,
) *Handlers {
	return &Handlers{
		sessions:    sessions,
		playback:    playback,
		resolver:    resolver,
		gateway:     gateway,
		attachments: attachments,
		loggerID:    loggerID,
	}
}

// request is the platform-independent view of one command message. The
// reply accessors are lazy: fetching the replied message is a network call
// and most commands never need it.
type request struct {
	chatID     int64
	senderID   int64
	senderName string
	messageID  int32
	args       string
	supergroup bool

	replyAttachment func(video bool) ports.Attachment
	replyUserID     func() int64
}

func (h *Handlers) newRequest(m *telegram.NewMessage) request {
	req := request{
		chatID:          m.ChatID(),
		messageID:       m.ID,
		args:            commandArgs(m.Text()),
		supergroup:      m.ChannelID() != 0,
		replyAttachment: func(bool) ports.Attachment { return nil },
		replyUserID:     func() int64 { return 0 },
	}
	if m.Sender != nil {
		req.senderID = m.Sender.ID
		req.senderName = m.Sender.FirstName
	}
	if m.IsReply() {
		req.replyAttachment = func(video bool) ports.Attachment {
			replied, err := m.GetReplyMessage()
			if err != nil || !replied.IsMedia() {
				return nil
			}
			return h.attachments(replied, video)
		}
		req.replyUserID = func() int64 {
			replied, err := m.GetReplyMessage()
			if err != nil || replied.Sender == nil {
				return 0
			}
			return replied.Sender.ID
		}
	}
	return req
}

// --- command entry points (bot.CommandHandler adapters) ---

func (h *Handlers) Play(m *telegram.NewMessage, r bot.Responder) error {
	return h.play(h.newRequest(m), r, false, false)
}

func (h *Handlers) VPlay(m *telegram.NewMessage, r bot.Responder) error {
	return h.play(h.newRequest(m), r, true, false)
}

func (h *Handlers) PlayForce(m *telegram.NewMessage, r bot.Responder) error {
	return h.play(h.newRequest(m), r, false, true)
}

func (h *Handlers) VPlayForce(m *telegram.NewMessage, r bot.Responder) error {
	return h.play(h.newRequest(m), r, true, true)
}

func (h *Handlers) Mode(m *telegram.NewMessage, r bot.Responder) error {
	return h.mode(h.newRequest(m), r)
}

func (h *Handlers) Auth(m *telegram.NewMessage, r bot.Responder) error {
	return h.auth(h.newRequest(m), r, true)
}

func (h *Handlers) Unauth(m *telegram.NewMessage, r bot.Responder) error {
	return h.auth(h.newRequest(m), r, false)
}

func (h *Handlers) Queue(m *telegram.NewMessage, r bot.Responder) error {
	return h.queueList(h.newRequest(m), r)
}

func (h *Handlers) Skip(m *telegram.NewMessage, r bot.Responder) error {
	return h.skip(h.newRequest(m), r)
}

func (h *Handlers) Stop(m *telegram.NewMessage, r bot.Responder) error {
	return h.stop(h.newRequest(m), r)
}

func (h *Handlers) Pause(m *telegram.NewMessage, r bot.Responder) error {
	return h.pause(h.newRequest(m), r)
}

func (h *Handlers) Resume(m *telegram.NewMessage, r bot.Responder) error {
	return h.resume(h.newRequest(m), r)
}

func (h *Handlers) Reload(m *telegram.NewMessage, r bot.Responder) error {
	return h.reload(h.newRequest(m), r)
}

func (h *Handlers) Logger(m *telegram.NewMessage, r bot.Responder) error {
	return h.logger(h.newRequest(m), r)
}

func (h *Handlers) Block(m *telegram.NewMessage, r bot.Responder) error {
	return h.blockUser(h.newRequest(m), r, true)
}

func (h *Handlers) Unblock(m *telegram.NewMessage, r bot.Responder) error {
	return h.blockUser(h.newRequest(m), r, false)
}

func (h *Handlers) BlacklistChat(m *telegram.NewMessage, r bot.Responder) error {
	return h.blacklistChat(h.newRequest(m), r, true)
}

func (h *Handlers) WhitelistChat(m *telegram.NewMessage, r bot.Responder) error {
	return h.blacklistChat(h.newRequest(m), r, false)
}

func (h *Handlers) Stats(m *telegram.NewMessage, r bot.Responder) error {
	return h.stats(h.newRequest(m), r)
}

func (h *Handlers) AddSudo(m *telegram.NewMessage, r bot.Responder) error {
	return h.setSudo(h.newRequest(m), r, true)
}

func (h *Handlers) DelSudo(m *telegram.NewMessage, r bot.Responder) error {
	return h.setSudo(h.newRequest(m), r, false)
}

// --- core handlers ---

func (h *Handlers) play(req request, r bot.Responder, video, force bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.admitPlayback(ctx, req, r) {
		return nil
	}

	h.remember(ctx, req)

	if force {
		ok, err := h.sessions.IsPrivileged(ctx, req.chatID, req.senderID)
		if err != nil {
			return err
		}
		if !ok {
			_, err := r.Reply(textNotAllowed)
			return err
		}
	}

	attachment := req.replyAttachment(video)
	if req.args == "" && attachment == nil {
		_, err := r.Reply(textPlayUsage)
		return err
	}

	status, err := r.Reply(textSearching)
	if err != nil {
		return err
	}

	track, err := h.resolveRequest(ctx, req, attachment, video)
	if err != nil {
		return status.Edit(errorText(err))
	}

	track.RequesterID = req.senderID
	track.RequesterName = req.senderName
	track.MessageID = req.messageID

	outcome, err := h.playback.EnqueueOrPlay(ctx, req.chatID, track, force)
	if err != nil {
		return status.Edit(errorText(err))
	}

	// The trigger has served its purpose; keeping chats clean is best-effort.
	_ = r.DeleteTrigger()

	if outcome.PlayedImmediately {
		err = status.Edit(textNowPlaying(outcome.Track))
	} else {
		err = status.Edit(textQueuedAt(track, outcome.Position))
	}
	if err != nil {
		return err
	}

	h.logPlay(ctx, req.chatID, track)
	return nil
}

func (h *Handlers) resolveRequest(ctx context.Context, req request, attachment ports.Attachment, video bool) (*domain.Track, error) {
	if attachment != nil && req.args == "" {
		return h.resolver.ResolveAttachment(ctx, attachment)
	}
	if h.resolver.MatchesAny(req.args) {
		return h.resolver.ResolveURL(ctx, req.args, video)
	}

	mode, err := h.sessions.GetPlayMode(ctx, req.chatID)
	if err != nil {
		mode = domain.DefaultPlayMode
	}
	return h.resolver.ResolveQuery(ctx, req.args, mode, mode.Source(), video)
}

func (h *Handlers) mode(req request, r bot.Responder) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.admitPlayback(ctx, req, r) {
		return nil
	}

	if req.args == "" {
		mode, err := h.sessions.GetPlayMode(ctx, req.chatID)
		if err != nil {
			return err
		}
		_, err = r.Reply(textPlayMode(mode))
		return err
	}

	if !h.requirePrivileged(ctx, req, r) {
		return nil
	}

	mode, err := h.sessions.SetPlayMode(ctx, req.chatID, req.args)
	if err != nil {
		_, rerr := r.Reply(textModeChoices)
		return rerr
	}
	_, err = r.Reply(textPlayModeSet(mode))
	return err
}

func (h *Handlers) auth(req request, r bot.Responder, grant bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.admitPlayback(ctx, req, r) {
		return nil
	}
	if !h.requirePrivileged(ctx, req, r) {
		return nil
	}

	target := req.replyUserID()
	if target == 0 {
		target = parseID(req.args)
	}
	if target == 0 {
		_, err := r.Reply(textNeedTarget)
		return err
	}

	var err error
	var confirmation string
	if grant {
		err = h.sessions.GrantAuth(ctx, req.chatID, target)
		confirmation = fmt.Sprintf("✅ <code>%d</code> can now use player commands here.", target)
	} else {
		err = h.sessions.RevokeAuth(ctx, req.chatID, target)
		confirmation = fmt.Sprintf("✅ <code>%d</code> is no longer authorized here.", target)
	}
	if err != nil {
		return err
	}

	_, err = r.Reply(confirmation)
	return err
}

func (h *Handlers) queueList(req request, r bot.Responder) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.admitPlayback(ctx, req, r) {
		return nil
	}

	_, err := r.Reply(textQueueList(h.playback.Queue().List(req.chatID)))
	return err
}

func (h *Handlers) skip(req request, r bot.Responder) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.admitPlayback(ctx, req, r) {
		return nil
	}
	if !h.requirePrivileged(ctx, req, r) {
		return nil
	}

	next, err := h.playback.Skip(ctx, req.chatID)
	if err != nil {
		_, rerr := r.Reply(errorText(err))
		return rerr
	}
	if next == nil {
		_, err := r.Reply(textQueueEnd)
		return err
	}
	_, err = r.Reply(textSkippedTo(next))
	return err
}

func (h *Handlers) stop(req request, r bot.Responder) error {
	return h.control(req, r, h.playback.Stop, textStopped)
}

func (h *Handlers) pause(req request, r bot.Responder) error {
	return h.control(req, r, h.playback.Pause, textPaused)
}

func (h *Handlers) resume(req request, r bot.Responder) error {
	return h.control(req, r, h.playback.Resume, textResumed)
}

func (h *Handlers) control(req request, r bot.Responder, op func(context.Context, int64) error, success string) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.admitPlayback(ctx, req, r) {
		return nil
	}
	if !h.requirePrivileged(ctx, req, r) {
		return nil
	}

	if err := op(ctx, req.chatID); err != nil {
		_, rerr := r.Reply(errorText(err))
		return rerr
	}
	_, err := r.Reply(success)
	return err
}

func (h *Handlers) reload(req request, r bot.Responder) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.admitPlayback(ctx, req, r) {
		return nil
	}
	if !h.requirePrivileged(ctx, req, r) {
		return nil
	}

	if _, err := h.sessions.GetAdmins(ctx, req.chatID, true); err != nil {
		_, rerr := r.Reply(errorText(err))
		return rerr
	}
	_, err := r.Reply(textReloaded)
	return err
}

func (h *Handlers) logger(req request, r bot.Responder) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.requireOperator(req, r) {
		return nil
	}

	var enabled bool
	switch strings.ToLower(strings.TrimSpace(req.args)) {
	case "on", "enable":
		enabled = true
	case "off", "disable":
		enabled = false
	default:
		_, err := r.Reply(textNeedOnOff)
		return err
	}

	if err := h.sessions.SetLoggerEnabled(ctx, enabled); err != nil {
		return err
	}
	text := textLoggerOff
	if enabled {
		text = textLoggerOn
	}
	_, err := r.Reply(text)
	return err
}

func (h *Handlers) blockUser(req request, r bot.Responder, block bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.requireOperator(req, r) {
		return nil
	}

	target := req.replyUserID()
	if target == 0 {
		target = parseID(req.args)
	}
	if target == 0 {
		_, err := r.Reply(textNeedTarget)
		return err
	}

	if err := h.sessions.SetBlacklistedUser(ctx, target, block); err != nil {
		return err
	}

	confirmation := fmt.Sprintf("✅ <code>%d</code> unblocked.", target)
	if block {
		confirmation = fmt.Sprintf("✅ <code>%d</code> blocked from using the bot.", target)
	}
	_, err := r.Reply(confirmation)
	return err
}

func (h *Handlers) blacklistChat(req request, r bot.Responder, blacklist bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.requireOperator(req, r) {
		return nil
	}

	target := parseID(req.args)
	if target == 0 {
		target = req.chatID
	}

	if err := h.sessions.SetBlacklistedChat(ctx, target, blacklist); err != nil {
		return err
	}

	confirmation := fmt.Sprintf("✅ Chat <code>%d</code> removed from the blacklist.", target)
	if blacklist {
		confirmation = fmt.Sprintf("✅ Chat <code>%d</code> blacklisted.", target)
		if err := h.gateway.LeaveChat(ctx, target); err != nil {
			slog.Debug("failed to leave blacklisted chat", "chat_id", target, "error", err)
		}
	}
	_, err := r.Reply(confirmation)
	return err
}

func (h *Handlers) setSudo(req request, r bot.Responder, sudo bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !h.sessions.IsOwner(req.senderID) {
		_, err := r.Reply(textOwnerOnly)
		return err
	}

	target := req.replyUserID()
	if target == 0 {
		target = parseID(req.args)
	}
	if target == 0 {
		_, err := r.Reply(textNeedTarget)
		return err
	}

	if err := h.sessions.SetSudoer(ctx, target, sudo); err != nil {
		return err
	}

	confirmation := fmt.Sprintf("✅ <code>%d</code> removed from sudoers.", target)
	if sudo {
		confirmation = fmt.Sprintf("✅ <code>%d</code> added to sudoers.", target)
	}
	_, err := r.Reply(confirmation)
	return err
}

func (h *Handlers) stats(req request, r bot.Responder) error {
	_, err := r.Reply(textStats(h.sessions.ChatCount(), h.sessions.UserCount()))
	return err
}

// --- gates ---

// admitPlayback rejects non-supergroup chats and blacklisted chats/users.
// Basic groups get a notice and the bot leaves; blacklisted entities are
// ignored silently.
func (h *Handlers) admitPlayback(ctx context.Context, req request, r bot.Responder) bool {
	if !req.supergroup {
		_, _ = r.Reply(textGroupOnly)
		if req.chatID < 0 {
			if err := h.gateway.LeaveChat(ctx, req.chatID); err != nil {
				slog.Debug("failed to leave basic group", "chat_id", req.chatID, "error", err)
			}
		}
		return false
	}
	if h.sessions.IsBlacklistedChat(req.chatID) || h.sessions.IsBlacklistedUser(req.senderID) {
		return false
	}
	return true
}

func (h *Handlers) requirePrivileged(ctx context.Context, req request, r bot.Responder) bool {
	ok, err := h.sessions.IsPrivileged(ctx, req.chatID, req.senderID)
	if err != nil {
		slog.Warn("privilege check failed", "chat_id", req.chatID, "user_id", req.senderID, "error", err)
		return false
	}
	if !ok {
		_, _ = r.Reply(textNotAllowed)
	}
	return ok
}

func (h *Handlers) requireOperator(req request, r bot.Responder) bool {
	if h.sessions.IsOperator(req.senderID) {
		return true
	}
	_, _ = r.Reply(textSudoOnly)
	return false
}

func (h *Handlers) remember(ctx context.Context, req request) {
	if err := h.sessions.RememberChat(ctx, req.chatID); err != nil {
		slog.Debug("failed to record chat", "chat_id", req.chatID, "error", err)
	}
	if err := h.sessions.RememberUser(ctx, req.senderID); err != nil {
		slog.Debug("failed to record user", "user_id", req.senderID, "error", err)
	}
}

func (h *Handlers) logPlay(ctx context.Context, chatID int64, track *domain.Track) {
	if h.loggerID == 0 || !h.sessions.LoggerEnabled() {
		return
	}
	if err := h.gateway.SendText(ctx, h.loggerID, textPlayLog(chatID, track)); err != nil {
		slog.Warn("failed to send play log", "error", err)
	}
}

// --- helpers ---

// commandArgs strips the command itself from the message text.
func commandArgs(text string) string {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseID(args string) int64 {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return 0
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
