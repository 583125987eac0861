package orchestrators

import (
	"context"
	"time"

	"meraki/internal/domain/content"
	"meraki/internal/domain/event"
	"meraki/internal/domain/validation"
)

// ContentDeps holds the catalog stores written by the content orchestrators.
type ContentDeps struct {
	Events     EventStoreForSeed
	Blog       BlogStoreForSeed
	Speakers   SpeakerStoreForSeed
	Sponsors   SponsorStoreForSeed
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateEvent validates and stores a catalog event.
// PRE: none
// POST: the event has an id; an existing id is replaced
func ExecuteCreateEvent(ctx context.Context, e event.Event, deps ContentDeps) (event.Event, error) {
	if err := e.Validate(); err != nil {
		return event.Event{}, validation.Fail(eventField(err), err.Error())
	}
	if e.ID == "" {
		e.ID = idFunc(deps.GenerateID)()
	}
	if err := deps.Events.Save(ctx, e); err != nil {
		return event.Event{}, &PersistenceError{Op: "event", Err: err}
	}
	return e, nil
}

// ExecuteCreateBlogPost validates and stores a blog post.
// POST: CreatedAt is set when it was zero
func ExecuteCreateBlogPost(ctx context.Context, p content.BlogPost, deps ContentDeps) (content.BlogPost, error) {
	if err := p.Validate(); err != nil {
		return content.BlogPost{}, err
	}
	if p.ID == "" {
		p.ID = idFunc(deps.GenerateID)()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = clockFunc(deps.Now)().UTC()
	}
	if err := deps.Blog.Save(ctx, p); err != nil {
		return content.BlogPost{}, &PersistenceError{Op: "blog post", Err: err}
	}
	return p, nil
}

// ExecuteCreateSpeaker validates and stores a speaker.
func ExecuteCreateSpeaker(ctx context.Context, s content.Speaker, deps ContentDeps) (content.Speaker, error) {
	if err := s.Validate(); err != nil {
		return content.Speaker{}, err
	}
	if s.ID == "" {
		s.ID = idFunc(deps.GenerateID)()
	}
	if err := deps.Speakers.Save(ctx, s); err != nil {
		return content.Speaker{}, &PersistenceError{Op: "speaker", Err: err}
	}
	return s, nil
}

// ExecuteCreateSponsor validates and stores a sponsor.
func ExecuteCreateSponsor(ctx context.Context, s content.Sponsor, deps ContentDeps) (content.Sponsor, error) {
	if err := s.Validate(); err != nil {
		return content.Sponsor{}, err
	}
	if s.ID == "" {
		s.ID = idFunc(deps.GenerateID)()
	}
	if err := deps.Sponsors.Save(ctx, s); err != nil {
		return content.Sponsor{}, &PersistenceError{Op: "sponsor", Err: err}
	}
	return s, nil
}

func eventField(err error) string {
	switch err {
	case event.ErrEmptyTitle:
		return "title"
	case event.ErrInvalidCapacity:
		return "maxParticipants"
	case event.ErrMissingDate:
		return "date"
	}
	return "event"
}
