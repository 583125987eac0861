package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"meraki/internal/domain/wizard"
)

const wizardCookieName = "meraki_wizard"

// wizardIdleTTL is how long an untouched wizard is kept.
const wizardIdleTTL = 2 * time.Hour

// WizardStore keeps one in-memory wizard per browser. Wizards are volatile:
// a restart or an idle timeout starts the visitor over.
type WizardStore struct {
	mu      sync.Mutex
	entries map[string]*wizardEntry
	ttl     time.Duration
	now     func() time.Time
}

type wizardEntry struct {
	session  *wizard.Session
	lastSeen time.Time
}

// NewWizardStore creates an empty store.
func NewWizardStore(ttl time.Duration) *WizardStore {
	return &WizardStore{entries: make(map[string]*wizardEntry), ttl: ttl, now: time.Now}
}

// Get returns the wizard for key, if it exists and is not idle past the TTL.
func (ws *WizardStore) Get(key string) (*wizard.Session, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	e, ok := ws.entries[key]
	if !ok {
		return nil, false
	}
	now := ws.now()
	if now.Sub(e.lastSeen) > ws.ttl && !e.session.InFlight() {
		delete(ws.entries, key)
		return nil, false
	}
	e.lastSeen = now
	return e.session, true
}

// Create starts a new wizard and returns its key.
// POST: idle wizards are swept
func (ws *WizardStore) Create() (string, *wizard.Session) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	now := ws.now()
	for k, e := range ws.entries {
		if now.Sub(e.lastSeen) > ws.ttl && !e.session.InFlight() {
			delete(ws.entries, k)
		}
	}
	key := uuid.New().String()
	s := wizard.NewSession()
	ws.entries[key] = &wizardEntry{session: s, lastSeen: now}
	return key, s
}

// Len returns the number of live wizards.
func (ws *WizardStore) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.entries)
}

// wizardFor returns the caller's wizard, creating one and setting its cookie
// when the browser has none.
func wizardFor(w http.ResponseWriter, r *http.Request) *wizard.Session {
	if c, err := r.Cookie(wizardCookieName); err == nil {
		if s, ok := wizards.Get(c.Value); ok {
			return s
		}
	}
	key, s := wizards.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     wizardCookieName,
		Value:    key,
		HttpOnly: true,
		Secure:   options.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/register",
	})
	return s
}
