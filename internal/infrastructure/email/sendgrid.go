package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/taskhive/task-api/internal/core/ports"
)

// SendGridMailer delivers transactional email through SendGrid. The API key
// and sender address are injected at construction, never read from globals.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridMailer(apiKey, senderEmail, senderName string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(senderName, senderEmail),
	}
}

// Send delivers one message. A non-2xx SendGrid response is an error.
func (m *SendGridMailer) Send(ctx context.Context, msg ports.EmailMessage) error {
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmailPlainText(m.from, msg.Subject, to, msg.Body)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
