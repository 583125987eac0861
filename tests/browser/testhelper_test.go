package browser_test

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"meraki/internal/adapters/email"
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
	"meraki/internal/application/orchestrators"
)

// capturingSender keeps every email so tests can read the coordinator credential.
type capturingSender struct {
	mu   sync.Mutex
	sent []email.SendRequest
}

func (s *capturingSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	return email.SendResult{MessageID: fmt.Sprintf("msg-%d", len(s.sent)), SentAt: time.Now()}, nil
}

var passwordPattern = regexp.MustCompile(`Password: <code>([^<]+)</code>`)

// credentialFor returns the plaintext credential last mailed to addr.
func (s *capturingSender) credentialFor(t *testing.T, addr string) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.sent) - 1; i >= 0; i-- {
		if len(s.sent[i].To) == 1 && s.sent[i].To[0] == addr {
			if m := passwordPattern.FindStringSubmatch(s.sent[i].HTML); m != nil {
				return html.UnescapeString(m[1])
			}
		}
	}
	t.Fatalf("no credential email to %s", addr)
	return ""
}

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
	Mail    *capturingSender
}

// newTestApp creates a fully wired app with a temp SQLite DB seeded with the
// sample catalog and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	stores := &web.Stores{
		Registrations: registrationStore.NewSQLiteStore(db),
		Schools:       schoolStore.NewSQLiteStore(db),
		Participants:  participantStore.NewSQLiteStore(db),
		Events:        eventStore.NewSQLiteStore(db),
		Blog:          contentStore.NewSQLiteBlogStore(db),
		Speakers:      contentStore.NewSQLiteSpeakerStore(db),
		Sponsors:      contentStore.NewSQLiteSponsorStore(db),
		Contacts:      contactStore.NewSQLiteStore(db),
		Outbox:        outboxStore.NewSQLiteStore(db),
	}
	err = orchestrators.ExecuteSeedCatalog(ctx, orchestrators.SeedCatalogDeps{
		Events: stores.Events, Blog: stores.Blog, Speakers: stores.Speakers, Sponsors: stores.Sponsors,
	})
	if err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	mail := &capturingSender{}
	handler := web.NewMux(web.Options{
		CSRFKey:            bytes.Repeat([]byte("k"), 32),
		SessionKey:         bytes.Repeat([]byte("j"), 32),
		SessionTTL:         time.Hour,
		AdminToken:         "browser-admin",
		LoginURL:           baseURL + "/login",
		ContactInbox:       "team@meraki.test",
		TrustedOrigins:     []string{fmt.Sprintf("127.0.0.1:%d", port)},
		RateLimitPerSecond: 1000,
	}, stores, mail, perf.NewCollector(perf.DefaultRingSize))

	srv := &http.Server{Addr: fmt.Sprintf("127.0.0.1:%d", port), Handler: handler}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
		Mail:    mail,
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})
	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// fill types value into the input matched by selector.
func fill(t *testing.T, page playwright.Page, selector, value string) {
	t.Helper()
	if err := page.Locator(selector).Fill(value); err != nil {
		t.Fatalf("failed to fill %s: %v", selector, err)
	}
}

// click presses the element matched by selector.
func click(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	if err := page.Locator(selector).First().Click(); err != nil {
		t.Fatalf("failed to click %s: %v", selector, err)
	}
}

// login signs a coordinator in and waits for the dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page, email, password string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	fill(t, page, "main input[name=email]", email)
	fill(t, page, "main input[name=password]", password)
	click(t, page, "main form[action='/login'] button[type=submit]")
	if err := page.WaitForURL(a.BaseURL+"/dashboard", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to dashboard: %v", err)
	}
}
