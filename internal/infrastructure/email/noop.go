package email

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/core/ports"
)

// NoopMailer is wired when email delivery is disabled. It keeps the whole
// notification path exercised while sending nothing.
type NoopMailer struct {
	log zerolog.Logger
}

func NewNoopMailer(log zerolog.Logger) *NoopMailer {
	return &NoopMailer{log: log}
}

func (m *NoopMailer) Send(_ context.Context, msg ports.EmailMessage) error {
	m.log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("email delivery disabled, dropping message")
	return nil
}
