package wizard

import (
	"errors"
	"sync"

	"meraki/internal/domain/registration"
)

// Session errors
var (
	ErrWrongStep          = errors.New("action is not available at the current step")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrNotConfirming      = errors.New("registration is not ready for submission")
)

// Session holds one browser's wizard state. While a submission is in flight
// every transition and a second submit are rejected.
type Session struct {
	mu       sync.Mutex
	state    State
	inFlight bool
}

// NewSession returns a session at the school step.
func NewSession() *Session {
	return &Session{state: Start()}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// InFlight reports whether a submission is running.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Apply runs fn on the current state and stores the result on success.
// POST: on error the current state is unchanged
func (s *Session) Apply(fn func(State) (State, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrSubmissionInFlight
	}
	next, err := fn(s.state)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Transition applies fn when the session is at step type S.
// POST: returns ErrWrongStep when the current state is not an S
func Transition[S State](s *Session, fn func(S) (State, error)) error {
	return s.Apply(func(cur State) (State, error) {
		st, ok := cur.(S)
		if !ok {
			return nil, ErrWrongStep
		}
		return fn(st)
	})
}

// BeginSubmit marks a submission in flight and returns the aggregate to persist.
// PRE: the session is at the confirmation step and no submission is running
// POST: transitions are rejected until FinishSubmit is called
func (s *Session) BeginSubmit() (registration.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return registration.Registration{}, ErrSubmissionInFlight
	}
	st, ok := s.state.(ConfirmationState)
	if !ok {
		return registration.Registration{}, ErrNotConfirming
	}
	s.inFlight = true
	return st.Registration(), nil
}

// FinishSubmit ends an in-flight submission. Full success resets the wizard;
// any failure leaves the confirmation state intact for a retry.
func (s *Session) FinishSubmit(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if ok {
		s.state = Start()
	}
}

// Reset discards all wizard data unless a submission is running.
func (s *Session) Reset() error {
	return s.Apply(func(State) (State, error) { return Start(), nil })
}
