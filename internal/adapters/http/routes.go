package web

import (
	"net/http"

	"meraki/internal/adapters/http/middleware"
)

func registerRoutes(mux *http.ServeMux) {
	coordinatorOnly := func(h http.HandlerFunc) http.Handler { return middleware.RequireCoordinator(h) }
	adminOnly := func(h http.HandlerFunc) http.Handler { return middleware.RequireAdminToken(options.AdminToken)(h) }

	// Public pages
	mux.HandleFunc("GET /{$}", handleHome)
	mux.HandleFunc("GET /events", handleEventsPage)
	mux.HandleFunc("GET /blog", handleBlogPage)
	mux.HandleFunc("GET /blog/{id}", handleBlogPostPage)
	mux.HandleFunc("GET /speakers", handleSpeakersPage)
	mux.HandleFunc("GET /sponsors", handleSponsorsPage)
	mux.HandleFunc("GET /contact", handleContactPage)
	mux.HandleFunc("POST /contact", handleContact)
	mux.Handle("GET /static/", staticHandler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Registration wizard
	mux.HandleFunc("GET /register", handleRegisterPage)
	mux.HandleFunc("GET /register/complete", handleRegisterComplete)
	mux.HandleFunc("POST /register/school", handleRegisterSchool)
	mux.HandleFunc("POST /register/coordinator", handleRegisterCoordinator)
	mux.HandleFunc("POST /register/events", handleRegisterToggleEvent)
	mux.HandleFunc("POST /register/events/next", handleRegisterEventsNext)
	mux.HandleFunc("POST /register/participants", handleRegisterAddParticipant)
	mux.HandleFunc("POST /register/participants/remove", handleRegisterRemoveParticipant)
	mux.HandleFunc("POST /register/participants/next", handleRegisterParticipantsNext)
	mux.HandleFunc("POST /register/back", handleRegisterBack)
	mux.HandleFunc("POST /register/reset", handleRegisterReset)
	mux.HandleFunc("POST /register/submit", handleRegisterSubmit)

	// Coordinator session
	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.Handle("GET /dashboard", coordinatorOnly(handleDashboard))
	mux.Handle("POST /dashboard/school", coordinatorOnly(handleDashboardSchool))
	mux.Handle("POST /dashboard/coordinator", coordinatorOnly(handleDashboardCoordinator))
	mux.Handle("POST /dashboard/participants/{id}", coordinatorOnly(handleDashboardParticipant))

	// JSON API
	mux.HandleFunc("GET /api/events", handleAPIListEvents)
	mux.HandleFunc("GET /api/events/{id}", handleAPIGetEvent)
	mux.Handle("POST /api/events", adminOnly(handleAPICreateEvent))
	mux.HandleFunc("GET /api/blog-posts", handleAPIListBlogPosts)
	mux.HandleFunc("GET /api/blog-posts/{id}", handleAPIGetBlogPost)
	mux.Handle("POST /api/blog-posts", adminOnly(handleAPICreateBlogPost))
	mux.HandleFunc("GET /api/speakers", handleAPIListSpeakers)
	mux.Handle("POST /api/speakers", adminOnly(handleAPICreateSpeaker))
	mux.HandleFunc("GET /api/sponsors", handleAPIListSponsors)
	mux.Handle("POST /api/sponsors", adminOnly(handleAPICreateSponsor))
	mux.HandleFunc("POST /api/contact", handleAPIContact)
	mux.HandleFunc("POST /api/register", handleAPIRegister)
	mux.HandleFunc("POST /api/login", handleAPILogin)
	mux.HandleFunc("POST /api/logout", handleAPILogout)
	mux.Handle("GET /api/dashboard", coordinatorOnly(handleAPIDashboard))
	mux.Handle("GET /api/schools/{id}", coordinatorOnly(handleAPIGetSchool))
	mux.Handle("PUT /api/schools/{id}", coordinatorOnly(handleAPIUpdateSchool))
	mux.Handle("PUT /api/coordinators/{id}", coordinatorOnly(handleAPIUpdateCoordinator))
	mux.Handle("PUT /api/participants/{id}", coordinatorOnly(handleAPIUpdateParticipant))

	// Operator endpoints
	mux.Handle("POST /api/send-coordinator-credentials", adminOnly(handleSendCoordinatorCredentials))
	mux.Handle("GET /api/admin/outbox", adminOnly(handleAdminOutbox))
	mux.Handle("POST /api/admin/outbox/{id}/{action}", adminOnly(handleAdminOutboxAction))
	mux.Handle("GET /api/admin/perf", adminOnly(handleAdminPerf))
	mux.Handle("GET /api/admin/contact-messages", adminOnly(handleAdminContactMessages))
}
