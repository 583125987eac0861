package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ErrNoRecipients is returned for a request with an empty To list.
var ErrNoRecipients = errors.New("email has no recipients")

// ResendSender delivers through the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
}

// NewResendSender creates a sender with default From and Reply-To addresses.
// PRE: apiKey is a Resend API key; from is a verified sender address
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, replyTo: replyTo}
}

// Send submits one message and tags it with its kind.
// PRE: req.To is non-empty
// POST: on success the Resend message id is returned; the body is never logged
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, ErrNoRecipients
	}
	params := &resend.SendEmailRequest{
		From:    orDefault(req.From, s.from),
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
		ReplyTo: orDefault(req.ReplyTo, s.replyTo),
	}
	if req.Kind != "" {
		params.Tags = []resend.Tag{{Name: "kind", Value: string(req.Kind)}}
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("email_send_failed", "kind", req.Kind, "error", err)
		return SendResult{}, fmt.Errorf("resend %s: %w", req.Kind, err)
	}
	slog.Info("email_sent", "kind", req.Kind, "message_id", sent.Id)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
