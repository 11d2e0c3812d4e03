package ports

import "context"

// EmailMessage is a single transactional email to be delivered.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Mailer delivers a single email synchronously.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Notifier dispatches account lifecycle notifications. Implementations are
// fire-and-forget: enqueueing must not block the caller and delivery
// failures must never surface to the triggering request.
type Notifier interface {
	AccountCreated(email, name string)
	AccountDeleted(email, name string)
}
