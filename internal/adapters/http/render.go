package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"meraki/internal/adapters/http/middleware"
	"meraki/internal/application/orchestrators"
	"meraki/internal/domain/validation"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var siteLanguage = language.English

// titleCase upper-cases the first letter of each word. A cases.Caser holds
// state, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(siteLanguage).String(s)
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	if wantsJSON(r) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err.Error())
	}
}

func badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
}

// writeError maps the orchestrator error taxonomy onto JSON responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var persistErr *orchestrators.PersistenceError
	var notifyErr *orchestrators.NotificationError
	if ve, ok := validation.As(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "validation_failed", "fields": ve.Fields})
		return
	}
	switch {
	case errors.Is(err, orchestrators.ErrRegistrationNotFound), errors.Is(err, orchestrators.ErrInvalidCredential):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": msgLoginFailed})
	case errors.Is(err, orchestrators.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.As(err, &notifyErr):
		slog.Error("notification_failed", "registration_id", notifyErr.RegistrationID, "error", notifyErr.Err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"id": notifyErr.RegistrationID, "error": "notification_failed"})
	case errors.As(err, &persistErr):
		slog.Error("persistence_failed", "op", persistErr.Op, "error", persistErr.Err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": persistErr.Error()})
	default:
		internalError(w, r, err)
	}
}

// fieldErrors returns the field map of a validation error, or nil.
func fieldErrors(err error) map[string]string {
	if ve, ok := validation.As(err); ok {
		return ve.Fields
	}
	return nil
}

var (
	templatesOnce sync.Once
	pageTemplates map[string]*template.Template
	templatesErr  error
)

// printer formats catalog strings for the site language.
func printer() *message.Printer {
	return message.NewPrinter(siteLanguage)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// Replaced per request in renderTemplate.
		"csrfField":  func() template.HTML { return "" },
		"signedIn":   func() bool { return false },
		"t": func(key string, args ...any) string {
			return printer().Sprintf(key, args...)
		},
		"title": titleCase,
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2 January 2006")
		},
		"add": func(a, b int) int { return a + b },
		"fieldError": func(fields map[string]string, key string) string {
			return fields[key]
		},
		"detailsText": formatDetails,
	}
}

// loadTemplates parses every page against the shared layout once.
func loadTemplates() (map[string]*template.Template, error) {
	templatesOnce.Do(func() {
		pages, err := templateFS.ReadDir("templates")
		if err != nil {
			templatesErr = err
			return
		}
		pageTemplates = make(map[string]*template.Template, len(pages))
		for _, p := range pages {
			name := p.Name()
			if name == "layout.html" {
				continue
			}
			tpl, err := template.New("layout.html").Funcs(templateFuncs()).
				ParseFS(templateFS, "templates/layout.html", "templates/"+name)
			if err != nil {
				templatesErr = err
				return
			}
			pageTemplates[name] = tpl
		}
	})
	return pageTemplates, templatesErr
}

// page is the data every template receives; Data is page specific.
type page struct {
	Title  string
	Flash  string
	Errors map[string]string
	Data   any
}

func renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName string, p page) {
	all, err := loadTemplates()
	if err != nil {
		internalError(w, r, err)
		return
	}
	base, ok := all[templateName]
	if !ok {
		internalError(w, r, errors.New("unknown template "+templateName))
		return
	}
	tpl, err := base.Clone()
	if err != nil {
		internalError(w, r, err)
		return
	}
	_, signed := middleware.GetSessionFromContext(r.Context())
	tpl.Funcs(template.FuncMap{
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
		"signedIn":  func() bool { return signed },
	})

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// formatDetails renders a details map as "key: value" lines for a textarea.
func formatDetails(details map[string]string) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k + ": " + details[k] + "\n")
	}
	return b.String()
}

// parseDetails reads "key: value" lines; blank lines and lines without a colon are skipped.
func parseDetails(text string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if k = strings.TrimSpace(k); k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
