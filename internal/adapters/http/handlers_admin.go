package web

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"meraki/internal/application/orchestrators"
	"meraki/internal/domain/outbox"
)

// queryLimit reads ?limit=, clamped to [1, 100] with a default of 50.
func queryLimit(r *http.Request) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
		return n
	}
	return 50
}

// handleSendCoordinatorCredentials handles POST /api/send-coordinator-credentials
// The credential is rotated; it is never echoed back. Failed credential
// deliveries recorded for the same registration are closed.
func handleSendCoordinatorCredentials(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.ResendCredentialsInput
	if err := strictDecode(r, &input); err != nil {
		badRequest(w, err)
		return
	}
	id, err := orchestrators.ExecuteResendCredentials(r.Context(), input, resendDeps())
	if errors.Is(err, orchestrators.ErrRegistrationNotFound) {
		writeError(w, r, orchestrators.ErrNotFound)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	resolved, err := outboxProcessor.ResolveCredentials(r.Context(), id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "sent": true, "resolvedOutboxEntries": resolved})
}

// handleAdminOutbox handles GET /api/admin/outbox
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = outbox.StatusFailed
	}
	entries, err := stores.Outbox.List(r.Context(), status, queryLimit(r))
	if err != nil {
		internalError(w, r, err)
		return
	}
	summary := ""
	if status == outbox.StatusFailed {
		summary = printer().Sprintf("admin.failed_count", len(entries))
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary, "entries": nonNil(entries)})
}

// handleAdminOutboxAction handles POST /api/admin/outbox/{id}/{action}
// Actions: resend, abandon.
func handleAdminOutboxAction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var entry outbox.Entry
	var err error
	switch r.PathValue("action") {
	case "resend":
		entry, err = outboxProcessor.Resend(r.Context(), id)
	case "abandon":
		entry, err = outboxProcessor.Abandon(r.Context(), id)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown action"})
		return
	}
	var persistErr *orchestrators.PersistenceError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, entry)
	case errors.As(err, &persistErr):
		writeError(w, r, err)
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, r, orchestrators.ErrNotFound)
	case errors.Is(err, outbox.ErrInvalidStatus), errors.Is(err, outbox.ErrUnknownAction):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "entry": entry})
	default:
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "resend_failed", "detail": err.Error(), "entry": entry})
	}
}

// handleAdminPerf handles GET /api/admin/perf
// ?minutes= selects the window, default 15.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "perf collection disabled"})
		return
	}
	minutes := 15
	if n, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && n > 0 && n <= 24*60 {
		minutes = n
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, 10))
}

// handleAdminContactMessages handles GET /api/admin/contact-messages
func handleAdminContactMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := stores.Contacts.List(r.Context(), queryLimit(r))
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(msgs))
}
