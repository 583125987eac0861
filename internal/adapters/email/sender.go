package email

import (
	"context"
	"time"
)

// Kind labels a message so deliveries can be filtered at the provider.
type Kind string

// Message kinds sent by the festival site.
const (
	KindCredential Kind = "coordinator_credential"
	KindContact    Kind = "contact_forward"
)

// SendRequest is one outgoing email. From and ReplyTo fall back to the
// sender's defaults when empty.
type SendRequest struct {
	Kind    Kind
	To      []string
	From    string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// SendResult identifies an accepted message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a single email through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
