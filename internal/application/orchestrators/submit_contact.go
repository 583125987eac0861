package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"meraki/internal/adapters/email"
	"meraki/internal/domain/contact"
	"meraki/internal/domain/outbox"
)

// ContactStore defines the store interface needed by the contact orchestrators.
type ContactStore interface {
	Save(ctx context.Context, m contact.Message) error
	GetByID(ctx context.Context, id string) (contact.Message, error)
}

// SubmitContactDeps holds dependencies for SubmitContact.
type SubmitContactDeps struct {
	Messages   ContactStore
	Sender     email.Sender
	Outbox     OutboxWriter
	Inbox      string
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSubmitContact stores a contact form message and forwards it to the
// organizer inbox.
// PRE: none
// POST: on nil error the message is stored; Forwarded reports whether the inbox got it
// POST: a failed forward is logged and recorded in the outbox; it is not an error
func ExecuteSubmitContact(ctx context.Context, input contact.Message, deps SubmitContactDeps) (contact.Message, error) {
	m := input.Normalize()
	if err := m.Validate(); err != nil {
		return contact.Message{}, err
	}
	now := clockFunc(deps.Now)
	m.ID = idFunc(deps.GenerateID)()
	m.CreatedAt = now().UTC()
	m.Forwarded = false
	if err := deps.Messages.Save(ctx, m); err != nil {
		return contact.Message{}, &PersistenceError{Op: "contact message", Err: err}
	}
	slog.Info("contact_received", "message_id", m.ID)

	if err := forwardContact(ctx, deps.Sender, deps.Inbox, m); err != nil {
		recordFailedDelivery(ctx, deps.Outbox, idFunc(deps.GenerateID)(), outbox.ActionTypeContactForward,
			outbox.ContactPayload{MessageID: m.ID}, err, now())
		return m, nil
	}
	m.Forwarded = true
	if err := deps.Messages.Save(ctx, m); err != nil {
		slog.Error("contact_mark_forwarded_failed", "message_id", m.ID, "error", err)
	}
	return m, nil
}

func forwardContact(ctx context.Context, sender email.Sender, inbox string, m contact.Message) error {
	req, err := email.ContactMessage(inbox, m.Name, m.Email, m.Subject, m.Body)
	if err != nil {
		return err
	}
	if _, err := sender.Send(ctx, req); err != nil {
		slog.Warn("contact_forward_failed", "message_id", m.ID, "error", err.Error())
		return err
	}
	return nil
}
