package web

import (
	"database/sql"
	"errors"
	"net/http"

	"meraki/internal/application/orchestrators"
	"meraki/internal/application/projections"
	"meraki/internal/domain/content"
	"meraki/internal/domain/event"
)

// homePosts is how many posts the landing page shows.
const homePosts = 3

func contentDeps() orchestrators.ContentDeps {
	return orchestrators.ContentDeps{
		Events:   stores.Events,
		Blog:     stores.Blog,
		Speakers: stores.Speakers,
		Sponsors: stores.Sponsors,
	}
}

// handleHome handles GET /
func handleHome(w http.ResponseWriter, r *http.Request) {
	view, err := projections.QueryGetHome(r.Context(), timeNow(), homePosts, projections.GetHomeDeps{
		Events:   stores.Events,
		Blog:     stores.Blog,
		Sponsors: stores.Sponsors,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "home.html", page{Title: "Welcome", Data: view})
}

// handleEventsPage handles GET /events
func handleEventsPage(w http.ResponseWriter, r *http.Request) {
	events, err := stores.Events.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "events.html", page{Title: "Events", Data: events})
}

// handleBlogPage handles GET /blog
func handleBlogPage(w http.ResponseWriter, r *http.Request) {
	posts, err := stores.Blog.List(r.Context(), true)
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "blog.html", page{Title: "Blog", Data: posts})
}

// handleBlogPostPage handles GET /blog/{id}
// Drafts are not public.
func handleBlogPostPage(w http.ResponseWriter, r *http.Request) {
	p, err := stores.Blog.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !p.Published) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "blog_post.html", page{Title: p.Title, Data: p})
}

// handleSpeakersPage handles GET /speakers
func handleSpeakersPage(w http.ResponseWriter, r *http.Request) {
	speakers, err := stores.Speakers.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "speakers.html", page{Title: "Speakers", Data: speakers})
}

// handleSponsorsPage handles GET /sponsors
func handleSponsorsPage(w http.ResponseWriter, r *http.Request) {
	sponsors, err := stores.Sponsors.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "sponsors.html", page{Title: "Sponsors", Data: sponsors})
}

// handleAPIListEvents handles GET /api/events
func handleAPIListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := stores.Events.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

// handleAPIGetEvent handles GET /api/events/{id}
func handleAPIGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := stores.Events.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, r, orchestrators.ErrNotFound)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleAPICreateEvent handles POST /api/events
func handleAPICreateEvent(w http.ResponseWriter, r *http.Request) {
	var e event.Event
	if err := strictDecode(r, &e); err != nil {
		badRequest(w, err)
		return
	}
	saved, err := orchestrators.ExecuteCreateEvent(r.Context(), e, contentDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleAPIListBlogPosts handles GET /api/blog-posts
func handleAPIListBlogPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := stores.Blog.List(r.Context(), true)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(posts))
}

// handleAPIGetBlogPost handles GET /api/blog-posts/{id}
func handleAPIGetBlogPost(w http.ResponseWriter, r *http.Request) {
	p, err := stores.Blog.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !p.Published) {
		writeError(w, r, orchestrators.ErrNotFound)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleAPICreateBlogPost handles POST /api/blog-posts
func handleAPICreateBlogPost(w http.ResponseWriter, r *http.Request) {
	var p content.BlogPost
	if err := strictDecode(r, &p); err != nil {
		badRequest(w, err)
		return
	}
	saved, err := orchestrators.ExecuteCreateBlogPost(r.Context(), p, contentDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleAPIListSpeakers handles GET /api/speakers
func handleAPIListSpeakers(w http.ResponseWriter, r *http.Request) {
	speakers, err := stores.Speakers.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(speakers))
}

// handleAPICreateSpeaker handles POST /api/speakers
func handleAPICreateSpeaker(w http.ResponseWriter, r *http.Request) {
	var s content.Speaker
	if err := strictDecode(r, &s); err != nil {
		badRequest(w, err)
		return
	}
	saved, err := orchestrators.ExecuteCreateSpeaker(r.Context(), s, contentDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleAPIListSponsors handles GET /api/sponsors
func handleAPIListSponsors(w http.ResponseWriter, r *http.Request) {
	sponsors, err := stores.Sponsors.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sponsors))
}

// handleAPICreateSponsor handles POST /api/sponsors
func handleAPICreateSponsor(w http.ResponseWriter, r *http.Request) {
	var s content.Sponsor
	if err := strictDecode(r, &s); err != nil {
		badRequest(w, err)
		return
	}
	saved, err := orchestrators.ExecuteCreateSponsor(r.Context(), s, contentDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
