package web

import (
	"testing"
	"time"
)

// TestWizardStore_IdleExpiry tests that an idle wizard is dropped on the next
// lookup while an active one survives.
func TestWizardStore_IdleExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ws := NewWizardStore(time.Hour)
	ws.now = func() time.Time { return now }

	idleKey, _ := ws.Create()
	now = now.Add(50 * time.Minute)
	activeKey, _ := ws.Create()

	now = now.Add(20 * time.Minute)
	if _, ok := ws.Get(idleKey); ok {
		t.Error("idle wizard survived past its TTL")
	}
	if _, ok := ws.Get(activeKey); !ok {
		t.Error("active wizard was dropped")
	}
	if ws.Len() != 1 {
		t.Errorf("Len = %d, want 1", ws.Len())
	}
}

// TestWizardStore_CreateSweeps tests that creating a wizard removes idle ones.
func TestWizardStore_CreateSweeps(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ws := NewWizardStore(time.Minute)
	ws.now = func() time.Time { return now }

	ws.Create()
	ws.Create()
	now = now.Add(2 * time.Minute)
	ws.Create()
	if ws.Len() != 1 {
		t.Errorf("Len = %d, want 1", ws.Len())
	}
}
