// Package mailer delivers transactional mail such as recovery codes.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"institute-service/internal/config"
)

// Message is a single plain-text mail to one recipient.
type Message struct {
	To      string
	Subject string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the sender for the configured provider.
func New(cfg config.MailConfig, logger *slog.Logger) (Sender, error) {
	switch cfg.Provider {
	case "sendgrid":
		return NewSendGrid(cfg.SendGridAPIKey, cfg.FromName, cfg.FromEmail, logger), nil
	case "", "console":
		return NewConsole(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// Console logs messages instead of sending them. Used locally.
type Console struct {
	logger *slog.Logger
}

func NewConsole(logger *slog.Logger) *Console {
	return &Console{logger: logger}
}

func (c *Console) Send(ctx context.Context, msg Message) error {
	c.logger.InfoContext(ctx, "mail not sent, console provider",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}

// Memory keeps messages for tests to inspect.
type Memory struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (m *Memory) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *Memory) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

// Last returns the most recent message and whether there was one.
func (m *Memory) Last() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}
