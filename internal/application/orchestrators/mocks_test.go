package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"meraki/internal/adapters/email"
	registrationStore "meraki/internal/adapters/storage/registration"
	"meraki/internal/domain/contact"
	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/event"
	"meraki/internal/domain/outbox"
	"meraki/internal/domain/participant"
	"meraki/internal/domain/registration"
	"meraki/internal/domain/school"
)

// --- Registration store ---

type mockRegistrationStore struct {
	regs      map[string]registration.Registration
	createErr error
	updates   int
}

func newMockRegistrationStore(regs ...registration.Registration) *mockRegistrationStore {
	m := &mockRegistrationStore{regs: make(map[string]registration.Registration)}
	for _, r := range regs {
		m.regs[r.ID] = r
	}
	return m
}

// Create stores the aggregate unless createErr is set.
func (m *mockRegistrationStore) Create(_ context.Context, reg registration.Registration) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, r := range m.regs {
		if r.Coordinator.Email == reg.Coordinator.Email {
			return registrationStore.ErrDuplicateEmail
		}
	}
	m.regs[reg.ID] = reg
	return nil
}

// EmailTaken matches emails exactly.
func (m *mockRegistrationStore) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	for _, r := range m.regs {
		if r.Coordinator.Email == email && r.Coordinator.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// GetByID returns the aggregate or a wrapped sql.ErrNoRows.
func (m *mockRegistrationStore) GetByID(_ context.Context, id string) (registration.Registration, error) {
	r, ok := m.regs[id]
	if !ok {
		return registration.Registration{}, fmt.Errorf("registration not found: %w", sql.ErrNoRows)
	}
	return r, nil
}

// GetByCoordinatorEmail matches emails exactly, case included.
func (m *mockRegistrationStore) GetByCoordinatorEmail(_ context.Context, email string) (registration.Registration, error) {
	for _, r := range m.regs {
		if r.Coordinator.Email == email {
			return r, nil
		}
	}
	return registration.Registration{}, fmt.Errorf("registration not found: %w", sql.ErrNoRows)
}

// UpdateCredential replaces the hash of the matching coordinator.
func (m *mockRegistrationStore) UpdateCredential(_ context.Context, coordinatorID, hash string) error {
	for id, r := range m.regs {
		if r.Coordinator.ID == coordinatorID {
			r.Coordinator.PasswordHash = hash
			m.regs[id] = r
			m.updates++
			return nil
		}
	}
	return fmt.Errorf("coordinator not found: %w", sql.ErrNoRows)
}

// UpdateCoordinator rewrites the coordinator when it belongs to registrationID.
func (m *mockRegistrationStore) UpdateCoordinator(_ context.Context, registrationID string, c coordinator.Coordinator) error {
	r, ok := m.regs[registrationID]
	if !ok || r.Coordinator.ID != c.ID {
		return fmt.Errorf("coordinator not found: %w", sql.ErrNoRows)
	}
	c.PasswordHash = r.Coordinator.PasswordHash
	r.Coordinator = c
	m.regs[registrationID] = r
	m.updates++
	return nil
}

// --- Event store ---

type mockEventStore struct {
	events map[string]event.Event
}

func newMockEventStore(events ...event.Event) *mockEventStore {
	m := &mockEventStore{events: make(map[string]event.Event)}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

// GetByID returns the event or a wrapped sql.ErrNoRows.
func (m *mockEventStore) GetByID(_ context.Context, id string) (event.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return event.Event{}, fmt.Errorf("event not found: %w", sql.ErrNoRows)
	}
	return e, nil
}

// --- Email sender ---

type mockSender struct {
	mu   sync.Mutex
	sent []email.SendRequest
	err  error
}

// Send records the request or fails with err.
func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: fmt.Sprintf("mock-%d", len(m.sent))}, nil
}

// --- Outbox store ---

type mockOutboxStore struct {
	entries map[string]outbox.Entry
	saveErr error
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: make(map[string]outbox.Entry)}
}

// GetByID returns an entry or a wrapped sql.ErrNoRows.
func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, fmt.Errorf("outbox entry not found: %w", sql.ErrNoRows)
	}
	return e, nil
}

// Save stores an entry.
func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries[e.ID] = e
	return nil
}

// List returns entries with the given status.
func (m *mockOutboxStore) List(_ context.Context, status string, _ int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.entries {
		if status == "" || e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- Registration cache ---

type mockCache struct {
	puts        []string
	invalidated []string
}

// Put records the cached id.
func (m *mockCache) Put(reg registration.Registration) { m.puts = append(m.puts, reg.ID) }

// Invalidate records the evicted id.
func (m *mockCache) Invalidate(id string) { m.invalidated = append(m.invalidated, id) }

// --- School store ---

type mockSchoolStore struct {
	owner   map[string]string // school id -> registration id
	saved   map[string]school.School
	failErr error
}

// Update saves s when it belongs to registrationID.
func (m *mockSchoolStore) Update(_ context.Context, registrationID string, s school.School) error {
	if m.failErr != nil {
		return m.failErr
	}
	if m.owner[s.ID] != registrationID {
		return fmt.Errorf("school not found: %w", sql.ErrNoRows)
	}
	m.saved[s.ID] = s
	return nil
}

// --- Participant store ---

type mockParticipantStore struct {
	owner  map[string]string
	rows   map[string]participant.Participant
	getErr error
}

// GetByID returns a stored participant.
func (m *mockParticipantStore) GetByID(_ context.Context, id string) (participant.Participant, error) {
	if m.getErr != nil {
		return participant.Participant{}, m.getErr
	}
	p, ok := m.rows[id]
	if !ok {
		return participant.Participant{}, fmt.Errorf("participant not found: %w", sql.ErrNoRows)
	}
	return p, nil
}

// Update rewrites the editable fields when p belongs to registrationID.
func (m *mockParticipantStore) Update(_ context.Context, registrationID string, p participant.Participant) error {
	cur, ok := m.rows[p.ID]
	if !ok || m.owner[p.ID] != registrationID {
		return fmt.Errorf("participant not found: %w", sql.ErrNoRows)
	}
	cur.Name, cur.Email, cur.Grade, cur.Details = p.Name, p.Email, p.Grade, p.Details
	m.rows[p.ID] = cur
	return nil
}

// --- Contact store ---

type mockContactStore struct {
	rows  map[string]contact.Message
	saves int
	err   error
}

func newMockContactStore() *mockContactStore {
	return &mockContactStore{rows: make(map[string]contact.Message)}
}

// Save stores a message.
func (m *mockContactStore) Save(_ context.Context, msg contact.Message) error {
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.rows[msg.ID] = msg
	return nil
}

// GetByID returns a message.
func (m *mockContactStore) GetByID(_ context.Context, id string) (contact.Message, error) {
	msg, ok := m.rows[id]
	if !ok {
		return contact.Message{}, errors.New("not found")
	}
	return msg, nil
}

// sequentialIDs returns a generator of "id-1", "id-2", ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}
