package web

import (
	"net/http"

	"meraki/internal/application/orchestrators"
	"meraki/internal/domain/contact"
)

func submitContactDeps() orchestrators.SubmitContactDeps {
	return orchestrators.SubmitContactDeps{
		Messages: stores.Contacts,
		Sender:   emailSender,
		Outbox:   stores.Outbox,
		Inbox:    options.ContactInbox,
	}
}

// handleContactPage handles GET /contact
func handleContactPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "contact.html", page{Title: "Contact", Data: contact.Message{}})
}

// handleContact handles POST /contact
func handleContact(w http.ResponseWriter, r *http.Request) {
	m := contact.Message{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Subject: r.FormValue("subject"),
		Body:    r.FormValue("message"),
	}
	saved, err := orchestrators.ExecuteSubmitContact(r.Context(), m, submitContactDeps())
	if fields := fieldErrors(err); fields != nil {
		renderTemplate(w, r, http.StatusUnprocessableEntity, "contact.html", page{Title: "Contact", Errors: fields, Data: m})
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "contact.html", page{
		Title: "Contact",
		Flash: printer().Sprintf("contact.sent", saved.Name),
		Data:  contact.Message{},
	})
}

// handleAPIContact handles POST /api/contact
func handleAPIContact(w http.ResponseWriter, r *http.Request) {
	var m contact.Message
	if err := strictDecode(r, &m); err != nil {
		badRequest(w, err)
		return
	}
	saved, err := orchestrators.ExecuteSubmitContact(r.Context(), m, submitContactDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": saved.ID, "forwarded": saved.Forwarded})
}
