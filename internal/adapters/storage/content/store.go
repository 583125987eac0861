package content

import (
	"context"

	domain "meraki/internal/domain/content"
)

// BlogStore persists blog posts.
type BlogStore interface {
	// List returns posts newest first; publishedOnly hides drafts.
	List(ctx context.Context, publishedOnly bool) ([]domain.BlogPost, error)
	// GetByID retrieves a post by id.
	// POST: wraps sql.ErrNoRows when absent
	GetByID(ctx context.Context, id string) (domain.BlogPost, error)
	// Save inserts or replaces a post.
	Save(ctx context.Context, p domain.BlogPost) error
	Count(ctx context.Context) (int, error)
}

// SpeakerStore persists speakers.
type SpeakerStore interface {
	List(ctx context.Context) ([]domain.Speaker, error)
	GetByID(ctx context.Context, id string) (domain.Speaker, error)
	Save(ctx context.Context, s domain.Speaker) error
	Count(ctx context.Context) (int, error)
}

// SponsorStore persists sponsors.
type SponsorStore interface {
	// List returns sponsors by tier rank, then name.
	List(ctx context.Context) ([]domain.Sponsor, error)
	GetByID(ctx context.Context, id string) (domain.Sponsor, error)
	Save(ctx context.Context, s domain.Sponsor) error
	Count(ctx context.Context) (int, error)
}
