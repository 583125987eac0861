package projections

import (
	"context"

	"meraki/internal/domain/content"
	"meraki/internal/domain/event"
	"meraki/internal/domain/registration"
)

// RegistrationReader returns registration aggregates, normally through the cache.
type RegistrationReader interface {
	Get(ctx context.Context, id string) (registration.Registration, error)
}

// EventLister lists the event catalog.
type EventLister interface {
	List(ctx context.Context) ([]event.Event, error)
}

// BlogLister lists blog posts.
type BlogLister interface {
	List(ctx context.Context, publishedOnly bool) ([]content.BlogPost, error)
}

// SpeakerLister lists speakers.
type SpeakerLister interface {
	List(ctx context.Context) ([]content.Speaker, error)
}

// SponsorLister lists sponsors.
type SponsorLister interface {
	List(ctx context.Context) ([]content.Sponsor, error)
}
