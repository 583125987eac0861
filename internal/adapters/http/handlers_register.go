package web

import (
	"errors"
	"net/http"
	"strconv"

	"meraki/internal/application/orchestrators"
	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/event"
	"meraki/internal/domain/participant"
	"meraki/internal/domain/school"
	"meraki/internal/domain/validation"
	"meraki/internal/domain/wizard"
)

const wizardSteps = 5

// eventOption is one catalog event on the selection step.
type eventOption struct {
	Event    event.Event
	Selected bool
}

// registerView is everything the wizard template needs for the current step.
type registerView struct {
	Step        string
	StepNumber  int
	TotalSteps  int
	School      school.School
	Coordinator coordinator.Coordinator
	Catalog     []eventOption
	Rosters     []wizard.Roster
	Focus       event.Event
	HasFocus    bool
	Draft       participant.Participant
	DraftDetail string
	InFlight    bool
}

func submitRegistrationDeps() orchestrators.SubmitRegistrationDeps {
	return orchestrators.SubmitRegistrationDeps{
		Registrations: stores.Registrations,
		Events:        stores.Events,
		Sender:        emailSender,
		Outbox:        stores.Outbox,
		LoginURL:      options.LoginURL,
	}
}

// advance adapts a typed transition to wizard.Transition.
func advance[S wizard.State, N wizard.State](fn func(S) (N, error)) func(S) (wizard.State, error) {
	return func(st S) (wizard.State, error) {
		next, err := fn(st)
		if err != nil {
			return nil, err
		}
		return next, nil
	}
}

// buildRegisterView projects the session state; edit lets a failed post keep
// what the visitor typed.
func buildRegisterView(r *http.Request, sess *wizard.Session, edit func(*registerView)) (registerView, error) {
	cur := sess.State()
	v := registerView{
		Step:       cur.Step().String(),
		StepNumber: int(cur.Step()) + 1,
		TotalSteps: wizardSteps,
		InFlight:   sess.InFlight(),
	}
	switch st := cur.(type) {
	case wizard.SchoolState:
		v.School = st.Prefill()
	case wizard.CoordinatorState:
		v.School = st.School()
		v.Coordinator = st.Prefill()
	case wizard.EventsState:
		catalog, err := stores.Events.List(r.Context())
		if err != nil {
			return v, err
		}
		sel := st.Selection()
		for _, e := range catalog {
			v.Catalog = append(v.Catalog, eventOption{Event: e, Selected: sel.Has(e.ID)})
		}
	case wizard.ParticipantsState:
		v.Rosters = st.Rosters()
		v.Focus, v.HasFocus = st.Focus()
	case wizard.ConfirmationState:
		reg := st.Registration()
		v.School = reg.School
		v.Coordinator = reg.Coordinator
		v.Rosters = st.Rosters()
	}
	if edit != nil {
		edit(&v)
	}
	return v, nil
}

func renderWizard(w http.ResponseWriter, r *http.Request, sess *wizard.Session, status int, flash string, errs map[string]string, edit func(*registerView)) {
	v, err := buildRegisterView(r, sess, edit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, status, "register.html", page{Title: "Register", Flash: flash, Errors: errs, Data: v})
}

// wizardFailed re-renders the current step with the error; field errors go
// next to their inputs, anything else becomes the flash line.
func wizardFailed(w http.ResponseWriter, r *http.Request, sess *wizard.Session, err error, edit func(*registerView)) {
	if fields := fieldErrors(err); fields != nil {
		renderWizard(w, r, sess, http.StatusUnprocessableEntity, "", fields, edit)
		return
	}
	status := http.StatusUnprocessableEntity
	if errors.Is(err, wizard.ErrSubmissionInFlight) || errors.Is(err, wizard.ErrWrongStep) {
		status = http.StatusConflict
	}
	renderWizard(w, r, sess, status, err.Error(), nil, edit)
}

func backToWizard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

// handleRegisterPage handles GET /register
func handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	renderWizard(w, r, wizardFor(w, r), http.StatusOK, "", nil, nil)
}

// handleRegisterSchool handles POST /register/school
func handleRegisterSchool(w http.ResponseWriter, r *http.Request) {
	sess := wizardFor(w, r)
	s := school.School{
		Name:    r.FormValue("name"),
		Address: r.FormValue("address"),
		City:    r.FormValue("city"),
		State:   r.FormValue("state"),
		Pincode: r.FormValue("pincode"),
		Phone:   r.FormValue("phone"),
	}
	err := wizard.Transition(sess, advance(func(st wizard.SchoolState) (wizard.CoordinatorState, error) {
		return st.Submit(s)
	}))
	if err != nil {
		wizardFailed(w, r, sess, err, func(v *registerView) { v.School = s })
		return
	}
	backToWizard(w, r)
}

// handleRegisterCoordinator handles POST /register/coordinator
func handleRegisterCoordinator(w http.ResponseWriter, r *http.Request) {
	sess := wizardFor(w, r)
	c := coordinator.Coordinator{
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
		Phone: r.FormValue("phone"),
	}
	err := wizard.Transition(sess, advance(func(st wizard.CoordinatorState) (wizard.EventsState, error) {
		return st.Submit(c)
	}))
	if err != nil {
		wizardFailed(w, r, sess, err, func(v *registerView) { v.Coordinator = c })
		return
	}
	backToWizard(w, r)
}

// handleRegisterToggleEvent handles POST /register/events
func handleRegisterToggleEvent(w http.ResponseWriter, r *http.Request) {
	sess := wizardFor(w, r)
	ev, err := stores.Events.GetByID(r.Context(), r.FormValue("event_id"))
	if err != nil {
		wizardFailed(w, r, sess, validation.Fail("event", "is not in the festival programme"), nil)
		return
	}
	err = wizard.Transition(sess, advance(func(st wizard.EventsState) (wizard.EventsState, error) {
		return st.Toggle(ev)
	}))
	if err != nil {
		wizardFailed(w, r, sess, err, nil)
		return
	}
	backToWizard(w, r)
}

// handleRegisterEventsNext handles POST /register/events/next
func handleRegisterEventsNext(w http.ResponseWriter, r *http.Request) {
	sess := wizardFor(w, r)
	err := wizard.Transition(sess, advance(func(st wizard.EventsState) (wizard.ParticipantsState, error) {
		return st.Next()
	}))
	if err != nil {
		wizardFailed(w, r, sess, err, nil)
		return
	}
	backToWizard(w, r)
}

// handleRegisterAddParticipant handles POST /register/participants
// An event_id form value targets that roster; otherwise the focused one.
func handleRegisterAddParticipant(w http.ResponseWriter, r *http.Request) {
	sess := wizardFor(w, r)
	p := participant.Participant{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Grade:   r.FormValue("grade"),
		Details: parseDetails(r.FormValue("details")),
	}
	eventID := r.FormValue("event_id")
	err := wizard.Transition(sess, advance(func(st wizard.ParticipantsState) (wizard.ParticipantsState, error) {
		if eventID != "" {
			return st.AddParticipantTo(eventID, p)
		}
		return st.AddParticipant(p)
	}))
	if err != nil {
		wizardFailed(w, r, sess, err, func(v *registerView) {
			v.Draft = p
			v.DraftDetail = r.FormValue("details")
		})
		return
	}
	backToWizard(w, r)
}

// handleRegisterRemoveParticipant handles POST /register/participants/remove
func handleRegisterRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	sess := wizardFor(w, r)
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		wizardFailed(w, r, sess, wizard.ErrParticipantIndex, nil)
		return
	}
	eventID := r.FormValue("event_id")
	err = wizard.Transition(sess, advance(func(st wizard.ParticipantsState) (wizard.ParticipantsState, error) {
		return st.RemoveParticipant(eventID, index)
	}))
	if err != nil {
		wizardFailed(w, r, sess, err, nil)
		return
	}
	backToWizard(w, r)
}

// handleRegisterParticipantsNext handles POST /register/participants/next
func handleRegisterParticipantsNext(w http.ResponseWriter, r *http.Request) {
	sess := wizardFor(w, r)
	err := wizard.Transition(sess, advance(func(st wizard.ParticipantsState) (wizard.ConfirmationState, error) {
		return st.Next()
	}))
	if err != nil {
		wizardFailed(w, r, sess, err, nil)
		return
	}
	backToWizard(w, r)
}

// handleRegisterBack handles POST /register/back
func handleRegisterBack(w http.ResponseWriter, r *http.Request) {
	sess := wizardFor(w, r)
	err := sess.Apply(func(cur wizard.State) (wizard.State, error) {
		switch st := cur.(type) {
		case wizard.CoordinatorState:
			return st.Back(), nil
		case wizard.EventsState:
			return st.Back(), nil
		case wizard.ParticipantsState:
			return st.Back(), nil
		case wizard.ConfirmationState:
			return st.Back(), nil
		}
		return nil, wizard.ErrWrongStep
	})
	if err != nil {
		wizardFailed(w, r, sess, err, nil)
		return
	}
	backToWizard(w, r)
}

// handleRegisterReset handles POST /register/reset
func handleRegisterReset(w http.ResponseWriter, r *http.Request) {
	sess := wizardFor(w, r)
	if err := sess.Reset(); err != nil {
		wizardFailed(w, r, sess, err, nil)
		return
	}
	backToWizard(w, r)
}

// handleRegisterSubmit handles POST /register/submit
func handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	sess := wizardFor(w, r)
	reg, err := sess.BeginSubmit()
	if err != nil {
		flash := err.Error()
		if errors.Is(err, wizard.ErrSubmissionInFlight) {
			flash = printer().Sprintf("wizard.in_flight")
		}
		renderWizard(w, r, sess, http.StatusConflict, flash, nil, nil)
		return
	}

	saved, err := orchestrators.ExecuteSubmitRegistration(r.Context(), orchestrators.InputFromRegistration(reg), submitRegistrationDeps())
	sess.FinishSubmit(err == nil)
	if err == nil {
		http.Redirect(w, r, "/register/complete?id="+saved.ID, http.StatusSeeOther)
		return
	}

	var notifyErr *orchestrators.NotificationError
	var persistErr *orchestrators.PersistenceError
	switch {
	case errors.As(err, &notifyErr):
		renderWizard(w, r, sess, http.StatusBadGateway, printer().Sprintf("wizard.notification_failed", notifyErr.RegistrationID), nil, nil)
	case errors.As(err, &persistErr):
		renderWizard(w, r, sess, http.StatusInternalServerError, persistErr.Error(), nil, nil)
	default:
		if fields := fieldErrors(err); fields != nil {
			renderWizard(w, r, sess, http.StatusUnprocessableEntity, "", fields, nil)
			return
		}
		internalError(w, r, err)
	}
}

// handleRegisterComplete handles GET /register/complete
func handleRegisterComplete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	renderTemplate(w, r, http.StatusOK, "register_complete.html", page{
		Title: "Registration complete",
		Flash: printer().Sprintf("wizard.submitted", id),
		Data:  id,
	})
}

// handleAPIRegister handles POST /api/register
// The payload is replayed through the wizard rules before anything is saved.
func handleAPIRegister(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.SubmitRegistrationInput
	if err := strictDecode(r, &input); err != nil {
		badRequest(w, err)
		return
	}
	reg, err := orchestrators.ExecuteSubmitRegistration(r.Context(), input, submitRegistrationDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": reg.ID})
}
