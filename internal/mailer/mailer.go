// Package mailer is the boundary to the transactional email collaborator.
// The real sender is an external SaaS service and stays outside this
// repository; the core only depends on the Sender contract.
package mailer

import (
	"context"

	"github.com/waxworks/vinylvault/internal/logging"
)

// Message is a templated transactional email.
type Message struct {
	To       string
	ToName   string
	Template string
	Params   map[string]string
}

// Sender delivers a single message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender is a Sender that only logs. Used in development and wherever the
// external email service is not configured; delivery always "succeeds".
type LogSender struct {
	log logging.Logger
}

// NewLogSender returns a LogSender writing through the given logger.
func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log.With("component", "mailer")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info(ctx, "email suppressed (log-only sender)",
		"to", msg.To, "template", msg.Template)
	return nil
}
