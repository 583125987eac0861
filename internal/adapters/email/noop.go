package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NoopSender accepts every message without delivering it. Only the kind and
// the recipient count are logged; bodies may hold a credential.
type NoopSender struct{}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the envelope and reports success.
// POST: MessageID is unique and prefixed with "noop-"
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("email_skipped", "kind", req.Kind, "recipients", len(req.To))
	return SendResult{MessageID: "noop-" + uuid.NewString(), SentAt: time.Now()}, nil
}
