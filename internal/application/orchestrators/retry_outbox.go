package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meraki/internal/adapters/email"
	outboxStore "meraki/internal/adapters/storage/outbox"
	domain "meraki/internal/domain/outbox"
)

// OutboxProcessor lets an operator repeat or dismiss failed deliveries.
// Nothing here runs on a timer: every resend is a deliberate operator action.
type OutboxProcessor struct {
	store     outboxStore.Store
	executors map[string]ActionExecutor
	now       func() time.Time
}

// ActionExecutor repeats one kind of failed delivery.
type ActionExecutor interface {
	// Execute runs the delivery described by the JSON payload.
	Execute(ctx context.Context, payload string) error
}

// NewOutboxProcessor creates a processor with one executor per action type.
func NewOutboxProcessor(store outboxStore.Store, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{store: store, executors: executors, now: time.Now}
}

// ListFailed returns the entries still awaiting an operator, newest first.
func (p *OutboxProcessor) ListFailed(ctx context.Context, limit int) ([]domain.Entry, error) {
	return p.store.List(ctx, domain.StatusFailed, limit)
}

// Resend repeats the delivery recorded by one entry.
// PRE: entryID is non-empty
// POST: the entry is done on success or stays failed with the new error
// POST: the returned entry reflects the saved state
func (p *OutboxProcessor) Resend(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("get outbox entry: %w", err)
	}
	if err := entry.MarkAttempt(p.now()); err != nil {
		return entry, fmt.Errorf("entry %s: %w", entryID, err)
	}

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		return entry, fmt.Errorf("%w: %s", domain.ErrUnknownAction, entry.ActionType)
	}
	execErr := executor.Execute(ctx, entry.Payload)
	if execErr != nil {
		entry.MarkFailed(execErr)
		slog.Warn("outbox_resend_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", execErr.Error())
	} else {
		entry.MarkSuccess()
		slog.Info("outbox_resend_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType)
	}
	if err := p.store.Save(ctx, entry); err != nil {
		return entry, &PersistenceError{Op: "outbox entry", Err: err}
	}
	return entry, execErr
}

// Abandon marks an entry as dismissed by an operator.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) Abandon(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("get outbox entry: %w", err)
	}
	if err := entry.MarkAbandoned(); err != nil {
		return entry, fmt.Errorf("entry %s: %w", entryID, err)
	}
	if err := p.store.Save(ctx, entry); err != nil {
		return entry, &PersistenceError{Op: "outbox entry", Err: err}
	}
	slog.Info("outbox_abandoned", "entry_id", entry.ID)
	return entry, nil
}

// resolveScanLimit bounds how many failed entries ResolveCredentials inspects.
const resolveScanLimit = 500

// ResolveCredentials closes the failed credential deliveries of a registration
// after its credential was delivered some other way. Resending one of them
// later would rotate the credential the coordinator just received.
// POST: matching failed entries are done; returns how many were closed
func (p *OutboxProcessor) ResolveCredentials(ctx context.Context, registrationID string) (int, error) {
	entries, err := p.store.List(ctx, domain.StatusFailed, resolveScanLimit)
	if err != nil {
		return 0, err
	}
	closed := 0
	for _, entry := range entries {
		if entry.ActionType != domain.ActionTypeCoordinatorCredentials {
			continue
		}
		var payload domain.CredentialPayload
		if err := entry.DecodePayload(&payload); err != nil || payload.RegistrationID != registrationID {
			continue
		}
		entry.MarkSuccess()
		if err := p.store.Save(ctx, entry); err != nil {
			return closed, &PersistenceError{Op: "outbox entry", Err: err}
		}
		closed++
		slog.Info("outbox_resolved", "entry_id", entry.ID, "registration_id", registrationID)
	}
	return closed, nil
}

// --- Credential executor ---

// CredentialResendExecutor issues a fresh credential to the coordinator named in the payload.
type CredentialResendExecutor struct {
	Deps ResendCredentialsDeps
}

// Execute rotates and emails the coordinator credential.
// PRE: payload is a domain.CredentialPayload
func (e *CredentialResendExecutor) Execute(ctx context.Context, payload string) error {
	var p domain.CredentialPayload
	entry := domain.Entry{Payload: payload}
	if err := entry.DecodePayload(&p); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	_, err := ExecuteResendCredentials(ctx, ResendCredentialsInput{RegistrationID: p.RegistrationID, Email: p.Email}, e.Deps)
	return err
}

// --- Contact forward executor ---

// ContactForwardExecutor forwards a stored contact message again.
type ContactForwardExecutor struct {
	Messages ContactStore
	Sender   email.Sender
	Inbox    string
}

// Execute forwards the message and marks it forwarded.
// PRE: payload is a domain.ContactPayload
func (e *ContactForwardExecutor) Execute(ctx context.Context, payload string) error {
	var p domain.ContactPayload
	entry := domain.Entry{Payload: payload}
	if err := entry.DecodePayload(&p); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	m, err := e.Messages.GetByID(ctx, p.MessageID)
	if err != nil {
		return fmt.Errorf("get contact message: %w", err)
	}
	if err := forwardContact(ctx, e.Sender, e.Inbox, m); err != nil {
		return err
	}
	m.Forwarded = true
	return e.Messages.Save(ctx, m)
}
