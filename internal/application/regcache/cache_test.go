package regcache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"meraki/internal/domain/registration"
	"meraki/internal/domain/school"
)

type countingLoader struct {
	regs  map[string]registration.Registration
	calls int
}

// GetByID returns the stored aggregate and counts the call.
func (l *countingLoader) GetByID(_ context.Context, id string) (registration.Registration, error) {
	l.calls++
	reg, ok := l.regs[id]
	if !ok {
		return registration.Registration{}, errors.New("not found")
	}
	return reg, nil
}

func newLoader() *countingLoader {
	return &countingLoader{regs: map[string]registration.Registration{
		"r1": {ID: "r1", School: school.School{Name: "Lincoln High"}},
	}}
}

// TestCache_ReadThrough tests that a miss loads once and later reads hit.
func TestCache_ReadThrough(t *testing.T) {
	loader := newLoader()
	c := New(loader)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		reg, err := c.Get(ctx, "r1")
		if err != nil || reg.School.Name != "Lincoln High" {
			t.Fatalf("Get = %+v, %v", reg, err)
		}
	}
	if loader.calls != 1 {
		t.Errorf("loader calls = %d, want 1", loader.calls)
	}
}

// TestCache_Invalidate tests that the next read after an invalidation reloads.
func TestCache_Invalidate(t *testing.T) {
	loader := newLoader()
	c := New(loader)
	ctx := context.Background()
	c.Get(ctx, "r1")

	loader.regs["r1"] = registration.Registration{ID: "r1", School: school.School{Name: "Lincoln Senior High"}}
	if reg, _ := c.Get(ctx, "r1"); reg.School.Name != "Lincoln High" {
		t.Fatalf("expected stale hit before invalidation, got %q", reg.School.Name)
	}
	c.Invalidate("r1")
	reg, err := c.Get(ctx, "r1")
	if err != nil || reg.School.Name != "Lincoln Senior High" {
		t.Errorf("Get after Invalidate = %+v, %v", reg, err)
	}
	if loader.calls != 2 {
		t.Errorf("loader calls = %d, want 2", loader.calls)
	}
}

// TestCache_MissError tests that failed loads are not cached.
func TestCache_MissError(t *testing.T) {
	c := New(newLoader())
	if _, err := c.Get(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown id")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

// TestCache_Put tests that Put makes an aggregate readable without a load.
func TestCache_Put(t *testing.T) {
	loader := newLoader()
	c := New(loader)
	c.Put(registration.Registration{ID: "r2"})
	if _, err := c.Get(context.Background(), "r2"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loader.calls != 0 {
		t.Errorf("loader calls = %d, want 0", loader.calls)
	}
}

type gatedLoader struct {
	mu      sync.Mutex
	reg     registration.Registration
	started chan struct{}
	release chan struct{}
}

// GetByID snapshots the current aggregate, then blocks until released.
func (l *gatedLoader) GetByID(context.Context, string) (registration.Registration, error) {
	l.mu.Lock()
	snap := l.reg
	l.mu.Unlock()
	close(l.started)
	<-l.release
	return snap, nil
}

func (l *gatedLoader) set(reg registration.Registration) {
	l.mu.Lock()
	l.reg = reg
	l.mu.Unlock()
}

// TestCache_InvalidateDuringLoad tests that a load which read the store before
// an invalidation does not put its older copy back into the cache.
func TestCache_InvalidateDuringLoad(t *testing.T) {
	loader := &gatedLoader{
		reg:     registration.Registration{ID: "r1", School: school.School{Name: "Old Name"}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := New(loader)

	done := make(chan registration.Registration)
	go func() {
		reg, _ := c.Get(context.Background(), "r1")
		done <- reg
	}()
	<-loader.started
	loader.set(registration.Registration{ID: "r1", School: school.School{Name: "New Name"}})
	c.Invalidate("r1")
	close(loader.release)

	if reg := <-done; reg.School.Name != "Old Name" {
		t.Errorf("in-flight Get = %q, want the snapshot it loaded", reg.School.Name)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0: stale aggregate cached after Invalidate", c.Len())
	}
}
