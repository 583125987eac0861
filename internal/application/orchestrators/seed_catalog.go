package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"meraki/internal/domain/content"
	"meraki/internal/domain/event"
)

// EventStoreForSeed defines the store interface needed by SeedCatalog.
type EventStoreForSeed interface {
	Save(ctx context.Context, e event.Event) error
	Count(ctx context.Context) (int, error)
}

// BlogStoreForSeed defines the blog store interface needed by SeedCatalog.
type BlogStoreForSeed interface {
	Save(ctx context.Context, p content.BlogPost) error
	Count(ctx context.Context) (int, error)
}

// SpeakerStoreForSeed defines the speaker store interface needed by SeedCatalog.
type SpeakerStoreForSeed interface {
	Save(ctx context.Context, s content.Speaker) error
	Count(ctx context.Context) (int, error)
}

// SponsorStoreForSeed defines the sponsor store interface needed by SeedCatalog.
type SponsorStoreForSeed interface {
	Save(ctx context.Context, s content.Sponsor) error
	Count(ctx context.Context) (int, error)
}

// SeedCatalogDeps holds dependencies for SeedCatalog.
type SeedCatalogDeps struct {
	Events   EventStoreForSeed
	Blog     BlogStoreForSeed
	Speakers SpeakerStoreForSeed
	Sponsors SponsorStoreForSeed
	Now      func() time.Time
}

// FestivalStart returns the opening day of the next festival: March 20 of
// the current year, or of next year once that day has passed.
func FestivalStart(now time.Time) time.Time {
	start := time.Date(now.Year(), time.March, 20, 0, 0, 0, 0, time.UTC)
	if now.UTC().After(start.AddDate(0, 0, 3)) {
		start = start.AddDate(1, 0, 0)
	}
	return start
}

// SampleEvents returns the festival programme starting on day one.
func SampleEvents(start time.Time) []event.Event {
	return []event.Event{
		{
			ID:               "1",
			Title:            "Poetry Slam Competition",
			Description:      "Express your thoughts through verses in this competitive poetry event",
			Date:             start,
			Category:         event.CategoryCompetition,
			RegistrationOpen: true,
			MaxParticipants:  3,
		},
		{
			ID:               "2",
			Title:            "Creative Writing Workshop",
			Description:      "Learn the art of storytelling from experienced authors",
			Date:             start.AddDate(0, 0, 1),
			Category:         event.CategoryWorkshop,
			RegistrationOpen: true,
			MaxParticipants:  2,
		},
		{
			ID:               "3",
			Title:            "Literary Debate",
			Description:      "Engage in intellectual discourse on contemporary literary topics",
			Date:             start.AddDate(0, 0, 2),
			Category:         event.CategoryDebate,
			RegistrationOpen: true,
			MaxParticipants:  4,
		},
	}
}

var sampleSpeakers = []content.Speaker{
	{ID: "1", Name: "Dr. Sarah Johnson", Bio: "Award-winning poet and professor of Creative Writing at Literary University", ImageURL: "https://picsum.photos/200", EventID: "1"},
	{ID: "2", Name: "Michael Chen", Bio: "Bestselling author and creative writing workshop facilitator", ImageURL: "https://picsum.photos/201", EventID: "2"},
	{ID: "3", Name: "Priya Patel", Bio: "Literary critic and cultural commentator for The Literary Review", ImageURL: "https://picsum.photos/202", EventID: "3"},
}

var sampleSponsors = []content.Sponsor{
	{ID: "1", Name: "Wordsmith Publishing House", Tier: content.TierPlatinum, LogoURL: "https://picsum.photos/203", Website: "https://example.com/wordsmith"},
	{ID: "2", Name: "Literary Cafe Chain", Tier: content.TierGold, LogoURL: "https://picsum.photos/204", Website: "https://example.com/literary-cafe"},
	{ID: "3", Name: "Global Books", Tier: content.TierSilver, LogoURL: "https://picsum.photos/205", Website: "https://example.com/global-books"},
}

func samplePosts(now time.Time) []content.BlogPost {
	return []content.BlogPost{
		{ID: "1", Title: "The Evolution of Modern Literature", Author: "Festival Team", Published: true, CreatedAt: now.Add(-72 * time.Hour),
			Content: "Exploring how the digital age has transformed storytelling.\n\nFrom serialised fiction to *interactive* narratives, writers now reach readers in ways that were unthinkable a generation ago."},
		{ID: "2", Title: "Why Poetry Matters Today", Author: "Festival Team", Published: true, CreatedAt: now.Add(-48 * time.Hour),
			Content: "The continuing relevance of poetic expression in our fast-paced world.\n\nPoetry asks us to **slow down** and listen, which is exactly why students keep coming back to it."},
		{ID: "3", Title: "Literary Festivals: A Global Perspective", Author: "Festival Team", Published: true, CreatedAt: now.Add(-24 * time.Hour),
			Content: "How literary events are shaping cultural exchange worldwide.\n\nFestivals bring schools, authors and readers into the same room. Here is what we learned from a few of them."},
	}
}

// ExecuteSeedCatalog loads the sample catalog into empty tables.
// It is idempotent: a kind that already has rows is left alone.
// POST: each of events, blog posts, speakers and sponsors has at least the sample rows when it was empty
func ExecuteSeedCatalog(ctx context.Context, deps SeedCatalogDeps) error {
	now := clockFunc(deps.Now)().UTC()

	if n, err := deps.Events.Count(ctx); err != nil {
		return err
	} else if n == 0 {
		for _, e := range SampleEvents(FestivalStart(now)) {
			if err := deps.Events.Save(ctx, e); err != nil {
				return err
			}
		}
		slog.Info("seed_event", "event", "events_seeded", "count", 3)
	}

	if n, err := deps.Blog.Count(ctx); err != nil {
		return err
	} else if n == 0 {
		for _, p := range samplePosts(now) {
			if err := deps.Blog.Save(ctx, p); err != nil {
				return err
			}
		}
		slog.Info("seed_event", "event", "blog_posts_seeded", "count", 3)
	}

	if n, err := deps.Speakers.Count(ctx); err != nil {
		return err
	} else if n == 0 {
		for _, s := range sampleSpeakers {
			if err := deps.Speakers.Save(ctx, s); err != nil {
				return err
			}
		}
		slog.Info("seed_event", "event", "speakers_seeded", "count", len(sampleSpeakers))
	}

	if n, err := deps.Sponsors.Count(ctx); err != nil {
		return err
	} else if n == 0 {
		for _, s := range sampleSponsors {
			if err := deps.Sponsors.Save(ctx, s); err != nil {
				return err
			}
		}
		slog.Info("seed_event", "event", "sponsors_seeded", "count", len(sampleSponsors))
	}
	return nil
}
