package web

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"meraki/internal/adapters/email"
	"meraki/internal/adapters/http/middleware"
	"meraki/internal/adapters/http/perf"
	contactStore "meraki/internal/adapters/storage/contact"
	contentStore "meraki/internal/adapters/storage/content"
	eventStore "meraki/internal/adapters/storage/event"
	outboxStore "meraki/internal/adapters/storage/outbox"
	participantStore "meraki/internal/adapters/storage/participant"
	registrationStore "meraki/internal/adapters/storage/registration"
	schoolStore "meraki/internal/adapters/storage/school"
	"meraki/internal/application/orchestrators"
	"meraki/internal/application/regcache"
	outboxDomain "meraki/internal/domain/outbox"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Stores holds all storage dependencies.
type Stores struct {
	Registrations registrationStore.Store
	Schools       schoolStore.Store
	Participants  participantStore.Store
	Events        eventStore.Store
	Blog          contentStore.BlogStore
	Speakers      contentStore.SpeakerStore
	Sponsors      contentStore.SponsorStore
	Contacts      contactStore.Store
	Outbox        outboxStore.Store
}

// Options carries the settings the HTTP layer needs from config.
type Options struct {
	CSRFKey            []byte
	SessionKey         []byte
	SessionTTL         time.Duration
	AdminToken         string
	LoginURL           string
	ContactInbox       string
	SecureCookies      bool
	TrustedOrigins     []string
	RateLimitPerSecond int
	SlowRequest        time.Duration
}

var stores *Stores

var options Options

var signer *middleware.SessionSigner

var registrations *regcache.Cache

var wizards *WizardStore

var perfCollector *perf.Collector

var emailSender email.Sender = email.NewNoopSender()

var outboxProcessor *orchestrators.OutboxProcessor

// NewMux wires every route and the middleware chain.
// PRE: s has every store set; opts carries 32-byte keys
// POST: the returned handler is ready to serve; package state is replaced
func NewMux(opts Options, s *Stores, sender email.Sender, collector *perf.Collector) http.Handler {
	stores = s
	options = opts
	perfCollector = collector
	if sender != nil {
		emailSender = sender
	}
	signer = middleware.NewSessionSigner(opts.SessionKey, opts.SessionTTL)
	registrations = regcache.New(s.Registrations)
	wizards = NewWizardStore(wizardIdleTTL)
	outboxProcessor = orchestrators.NewOutboxProcessor(s.Outbox, map[string]orchestrators.ActionExecutor{
		outboxDomain.ActionTypeCoordinatorCredentials: &orchestrators.CredentialResendExecutor{Deps: resendDeps()},
		outboxDomain.ActionTypeContactForward: &orchestrators.ContactForwardExecutor{
			Messages: s.Contacts,
			Sender:   emailSender,
			Inbox:    opts.ContactInbox,
		},
	})

	mux := http.NewServeMux()
	registerRoutes(mux)

	rate := opts.RateLimitPerSecond
	if rate <= 0 {
		rate = 10
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	return middleware.Chain(mux,
		middleware.Timing(collector, opts.SlowRequest),
		middleware.RateLimit(limiter),
		middleware.Auth(signer),
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.SecurityHeaders,
	)
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

func resendDeps() orchestrators.ResendCredentialsDeps {
	return orchestrators.ResendCredentialsDeps{
		Registrations: stores.Registrations,
		Cache:         registrations,
		Sender:        emailSender,
		LoginURL:      options.LoginURL,
	}
}
