package projections

import (
	"context"
	"time"

	"meraki/internal/domain/content"
	"meraki/internal/domain/event"
)

// GetHomeDeps holds dependencies for the home page projection.
type GetHomeDeps struct {
	Events   EventLister
	Blog     BlogLister
	Sponsors SponsorLister
}

// HomeView is the public landing page.
type HomeView struct {
	Upcoming    []event.Event      `json:"upcoming"`
	LatestPosts []content.BlogPost `json:"latestPosts"`
	Sponsors    []content.Sponsor  `json:"sponsors"`
}

// QueryGetHome lists the upcoming events, the newest published posts and the sponsors.
// PRE: maxPosts >= 0
// POST: Upcoming keeps catalog order and excludes events before today
func QueryGetHome(ctx context.Context, now time.Time, maxPosts int, deps GetHomeDeps) (HomeView, error) {
	events, err := deps.Events.List(ctx)
	if err != nil {
		return HomeView{}, err
	}
	var view HomeView
	for _, e := range events {
		if e.IsUpcoming(now) {
			view.Upcoming = append(view.Upcoming, e)
		}
	}

	posts, err := deps.Blog.List(ctx, true)
	if err != nil {
		return HomeView{}, err
	}
	if len(posts) > maxPosts {
		posts = posts[:maxPosts]
	}
	view.LatestPosts = posts

	if view.Sponsors, err = deps.Sponsors.List(ctx); err != nil {
		return HomeView{}, err
	}
	return view, nil
}
