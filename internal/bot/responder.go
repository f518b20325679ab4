package bot

import (
	"github.com/amarnathcjd/gogram/telegram"
)

// Reply is a message sent by the bot that can still be edited or removed.
// Status messages ("Searching...") are edited in place as a request advances.
type Reply interface {
	// Edit replaces the reply text.
	Edit(text string) error

	// Delete removes the reply.
	Delete() error
}

// Responder provides an abstraction for replying to command messages.
// This interface enables testing handlers without a live Telegram connection.
type Responder interface {
	// Reply sends a reply to the triggering message.
	Reply(text string) (Reply, error)

	// DeleteTrigger removes the triggering message. Failures are the
	// caller's to ignore: trigger cleanup is best-effort.
	DeleteTrigger() error
}

// TelegramResponder implements Responder using a live gogram message.
type TelegramResponder struct {
	message *telegram.NewMessage
}

// NewTelegramResponder creates a new TelegramResponder.
func NewTelegramResponder(m *telegram.NewMessage) *TelegramResponder {
	return &TelegramResponder{message: m}
}

// Reply sends an HTML-formatted reply to the triggering message.
func (r *TelegramResponder) Reply(text string) (Reply, error) {
	msg, err := r.message.Reply(text, telegram.SendOptions{ParseMode: "HTML"})
	if err != nil {
		return nil, err
	}
	return &telegramReply{message: msg}, nil
}

// DeleteTrigger removes the triggering message.
func (r *TelegramResponder) DeleteTrigger() error {
	_, err := r.message.Delete()
	return err
}

type telegramReply struct {
	message *telegram.NewMessage
}

func (r *telegramReply) Edit(text string) error {
	_, err := r.message.Edit(text, telegram.SendOptions{ParseMode: "HTML"})
	return err
}

func (r *telegramReply) Delete() error {
	_, err := r.message.Delete()
	return err
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	Replies        []string
	Edits          []string
	TriggerDeleted bool
	Err            error
}

// Reply records the reply text for testing.
func (m *MockResponder) Reply(text string) (Reply, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Replies = append(m.Replies, text)
	return &mockReply{parent: m}, nil
}

// DeleteTrigger records the trigger deletion for testing.
func (m *MockResponder) DeleteTrigger() error {
	m.TriggerDeleted = true
	return m.Err
}

type mockReply struct {
	parent  *MockResponder
	deleted bool
}

func (r *mockReply) Edit(text string) error {
	r.parent.Edits = append(r.parent.Edits, text)
	return nil
}

func (r *mockReply) Delete() error {
	r.deleted = true
	return nil
}
