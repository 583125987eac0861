package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	emailPkg "meraki/internal/adapters/email"
	web "meraki/internal/adapters/http"
	"meraki/internal/adapters/http/perf"
	"meraki/internal/adapters/storage"
	contactStore "meraki/internal/adapters/storage/contact"
	contentStore "meraki/internal/adapters/storage/content"
	eventStore "meraki/internal/adapters/storage/event"
	outboxStore "meraki/internal/adapters/storage/outbox"
	participantStore "meraki/internal/adapters/storage/participant"
	registrationStore "meraki/internal/adapters/storage/registration"
	schoolStore "meraki/internal/adapters/storage/school"
	"meraki/internal/adapters/telemetry"
	"meraki/internal/application/orchestrators"
	"meraki/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint)
	if err != nil {
		log.Fatalf("failed to start tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Every store goes through the timed wrapper so slow queries show up in /api/admin/perf.
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)

	stores := &web.Stores{
		Registrations: registrationStore.NewSQLiteStore(timedDB),
		Schools:       schoolStore.NewSQLiteStore(timedDB),
		Participants:  participantStore.NewSQLiteStore(timedDB),
		Events:        eventStore.NewSQLiteStore(timedDB),
		Blog:          contentStore.NewSQLiteBlogStore(timedDB),
		Speakers:      contentStore.NewSQLiteSpeakerStore(timedDB),
		Sponsors:      contentStore.NewSQLiteSponsorStore(timedDB),
		Contacts:      contactStore.NewSQLiteStore(timedDB),
		Outbox:        outboxStore.NewSQLiteStore(timedDB),
	}

	if cfg.SeedSampleData {
		err := orchestrators.ExecuteSeedCatalog(ctx, orchestrators.SeedCatalogDeps{
			Events:   stores.Events,
			Blog:     stores.Blog,
			Speakers: stores.Speakers,
			Sponsors: stores.Sponsors,
		})
		if err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
	}

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.EmailReplyTo)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_configured", "provider", "noop", "note", "MERAKI_RESEND_KEY is not set; coordinator credentials will not be delivered")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	handler := web.NewMux(web.Options{
		CSRFKey:            cfg.CSRFKey,
		SessionKey:         cfg.SessionKey,
		SessionTTL:         cfg.SessionTTL,
		AdminToken:         cfg.AdminToken,
		LoginURL:           cfg.LoginURL(),
		ContactInbox:       cfg.ContactInbox,
		SecureCookies:      cfg.IsProduction(),
		TrustedOrigins:     nil,
		RateLimitPerSecond: cfg.RateLimit,
		SlowRequest:        cfg.SlowRequest,
	}, stores, sender, collector)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	case <-ctx.Done():
		slog.Info("server_stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server_shutdown_failed", "error", err.Error())
		}
	}
}

// setupLogging installs a JSON handler in production and a text handler elsewhere.
func setupLogging(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
