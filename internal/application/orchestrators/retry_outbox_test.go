package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"meraki/internal/domain/contact"
	"meraki/internal/domain/outbox"
)

func failedEntry(t *testing.T, id, actionType string, payload any) outbox.Entry {
	t.Helper()
	e, err := outbox.NewFailedEntry(id, actionType, payload, errors.New("first failure"), fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// TestOutboxProcessor_ResendCredentials tests that a successful resend closes the entry.
func TestOutboxProcessor_ResendCredentials(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["o1"] = failedEntry(t, "o1", outbox.ActionTypeCoordinatorCredentials,
		outbox.CredentialPayload{RegistrationID: "r1", CoordinatorID: "c1", Email: "Asha@example.com"})
	regs := newMockRegistrationStore(registeredCoordinator(t))
	sender := &mockSender{}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{
		outbox.ActionTypeCoordinatorCredentials: &CredentialResendExecutor{Deps: ResendCredentialsDeps{
			Registrations: regs, Cache: &mockCache{}, Sender: sender,
		}},
	})
	p.now = func() time.Time { return fixedNow.Add(time.Hour) }

	got, err := p.Resend(context.Background(), "o1")
	if err != nil {
		t.Fatalf("Resend: %v", err)
	}
	if got.Status != outbox.StatusDone || got.Attempts != 2 || store.entries["o1"].Status != outbox.StatusDone {
		t.Errorf("entry = %+v", got)
	}
	if len(sender.sent) != 1 {
		t.Errorf("sent = %d", len(sender.sent))
	}
	if _, err := p.Resend(context.Background(), "o1"); !errors.Is(err, outbox.ErrInvalidStatus) {
		t.Errorf("second resend error = %v, want ErrInvalidStatus", err)
	}
}

// TestOutboxProcessor_ResendFailure tests that a failed resend stays failed with the new error.
func TestOutboxProcessor_ResendFailure(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["o1"] = failedEntry(t, "o1", outbox.ActionTypeContactForward, outbox.ContactPayload{MessageID: "m1"})
	messages := newMockContactStore()
	messages.rows["m1"] = contact.Message{ID: "m1", Name: "Jo", Email: "jo@example.com", Subject: "Hello", Body: "Ten chars!"}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{
		outbox.ActionTypeContactForward: &ContactForwardExecutor{Messages: messages, Sender: &mockSender{err: errors.New("still down")}, Inbox: "hello@meraki.example"},
	})

	got, err := p.Resend(context.Background(), "o1")
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if got.Status != outbox.StatusFailed || got.ErrorMessage != "still down" || store.entries["o1"].Attempts != 2 {
		t.Errorf("entry = %+v", store.entries["o1"])
	}
	if messages.rows["m1"].Forwarded {
		t.Error("message marked forwarded after failure")
	}

	listed, _ := p.ListFailed(context.Background(), 10)
	if len(listed) != 1 {
		t.Errorf("ListFailed = %d entries", len(listed))
	}
}

// TestOutboxProcessor_ContactForward tests the contact executor success path.
func TestOutboxProcessor_ContactForward(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["o1"] = failedEntry(t, "o1", outbox.ActionTypeContactForward, outbox.ContactPayload{MessageID: "m1"})
	messages := newMockContactStore()
	messages.rows["m1"] = contact.Message{ID: "m1", Name: "Jo", Email: "jo@example.com", Subject: "Hello", Body: "Ten chars!"}
	sender := &mockSender{}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{
		outbox.ActionTypeContactForward: &ContactForwardExecutor{Messages: messages, Sender: sender, Inbox: "hello@meraki.example"},
	})
	if _, err := p.Resend(context.Background(), "o1"); err != nil {
		t.Fatalf("Resend: %v", err)
	}
	if !messages.rows["m1"].Forwarded || sender.sent[0].To[0] != "hello@meraki.example" {
		t.Errorf("message = %+v, sent = %+v", messages.rows["m1"], sender.sent)
	}
}

// TestOutboxProcessor_Abandon tests dismissal and unknown ids.
func TestOutboxProcessor_Abandon(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["o1"] = failedEntry(t, "o1", outbox.ActionTypeContactForward, outbox.ContactPayload{MessageID: "m1"})
	p := NewOutboxProcessor(store, nil)

	got, err := p.Abandon(context.Background(), "o1")
	if err != nil || got.Status != outbox.StatusAbandoned {
		t.Fatalf("Abandon = %+v, %v", got, err)
	}
	if _, err := p.Resend(context.Background(), "o1"); !errors.Is(err, outbox.ErrInvalidStatus) {
		t.Errorf("resend after abandon error = %v", err)
	}
	if _, err := p.Abandon(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown entry")
	}
}

// TestOutboxProcessor_UnknownAction tests entries with no registered executor.
func TestOutboxProcessor_UnknownAction(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["o1"] = failedEntry(t, "o1", outbox.ActionTypeContactForward, outbox.ContactPayload{MessageID: "m1"})
	p := NewOutboxProcessor(store, map[string]ActionExecutor{})
	if _, err := p.Resend(context.Background(), "o1"); !errors.Is(err, outbox.ErrUnknownAction) {
		t.Errorf("error = %v, want ErrUnknownAction", err)
	}
}

// TestOutboxProcessor_ResendAfterEmailChange tests that a recorded credential
// delivery still reaches the coordinator after they changed their email.
func TestOutboxProcessor_ResendAfterEmailChange(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["o1"] = failedEntry(t, "o1", outbox.ActionTypeCoordinatorCredentials,
		outbox.CredentialPayload{RegistrationID: "r1", CoordinatorID: "c1", Email: "Asha@example.com"})
	reg := registeredCoordinator(t)
	reg.Coordinator.Email = "asha.rao@school.example"
	sender := &mockSender{}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{
		outbox.ActionTypeCoordinatorCredentials: &CredentialResendExecutor{Deps: ResendCredentialsDeps{
			Registrations: newMockRegistrationStore(reg), Cache: &mockCache{}, Sender: sender,
		}},
	})

	if _, err := p.Resend(context.Background(), "o1"); err != nil {
		t.Fatalf("Resend: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].To[0] != "asha.rao@school.example" {
		t.Errorf("sent = %+v, want delivery to the current address", sender.sent)
	}
}

// TestOutboxProcessor_ResolveCredentials tests that only the registration's
// failed credential entries are closed.
func TestOutboxProcessor_ResolveCredentials(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["o1"] = failedEntry(t, "o1", outbox.ActionTypeCoordinatorCredentials,
		outbox.CredentialPayload{RegistrationID: "r1", CoordinatorID: "c1"})
	store.entries["o2"] = failedEntry(t, "o2", outbox.ActionTypeCoordinatorCredentials,
		outbox.CredentialPayload{RegistrationID: "r2", CoordinatorID: "c2"})
	store.entries["o3"] = failedEntry(t, "o3", outbox.ActionTypeContactForward, outbox.ContactPayload{MessageID: "m1"})
	p := NewOutboxProcessor(store, nil)

	n, err := p.ResolveCredentials(context.Background(), "r1")
	if err != nil || n != 1 {
		t.Fatalf("ResolveCredentials = %d, %v", n, err)
	}
	want := map[string]string{"o1": outbox.StatusDone, "o2": outbox.StatusFailed, "o3": outbox.StatusFailed}
	for id, status := range want {
		if got := store.entries[id].Status; got != status {
			t.Errorf("%s status = %q, want %q", id, got, status)
		}
	}
}
