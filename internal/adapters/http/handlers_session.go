package web

import (
	"errors"
	"net/http"

	"meraki/internal/adapters/http/middleware"
	"meraki/internal/application/orchestrators"
	"meraki/internal/application/projections"
	"meraki/internal/domain/coordinator"
	"meraki/internal/domain/participant"
	"meraki/internal/domain/registration"
	"meraki/internal/domain/school"
)

func loginDeps() orchestrators.LoginDeps {
	return orchestrators.LoginDeps{Registrations: stores.Registrations, Cache: registrations}
}

func dashboardDeps() projections.GetDashboardDeps {
	return projections.GetDashboardDeps{Registrations: registrations, Events: stores.Events}
}

// startSession issues the signed cookie for a freshly authenticated coordinator.
func startSession(w http.ResponseWriter, reg registration.Registration) error {
	token, sess, err := signer.Issue(reg.ID, reg.Coordinator.ID)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(w, token, sess, options.SecureCookies)
	return nil
}

func endSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		orchestrators.ExecuteLogout(r.Context(), sess.RegistrationID, orchestrators.LogoutDeps{Cache: registrations})
	}
	middleware.ClearSessionCookie(w, options.SecureCookies)
}

func currentSession(r *http.Request) middleware.Session {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return sess
}

// handleLoginPage handles GET /login
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, http.StatusOK, "login.html", page{Title: "Coordinator login"})
}

// handleLogin handles POST /login
// Both failure kinds show the same message.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	input := orchestrators.LoginInput{Email: r.FormValue("email"), Password: r.FormValue("password")}
	reg, err := orchestrators.ExecuteLogin(r.Context(), input, loginDeps())
	if errors.Is(err, orchestrators.ErrRegistrationNotFound) || errors.Is(err, orchestrators.ErrInvalidCredential) {
		renderTemplate(w, r, http.StatusUnauthorized, "login.html", page{
			Title: "Coordinator login",
			Flash: msgLoginFailed,
			Data:  input.Email,
		})
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	if err := startSession(w, reg); err != nil {
		internalError(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	endSession(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleAPILogin handles POST /api/login
func handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.LoginInput
	if err := strictDecode(r, &input); err != nil {
		badRequest(w, err)
		return
	}
	reg, err := orchestrators.ExecuteLogin(r.Context(), input, loginDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := startSession(w, reg); err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// handleAPILogout handles POST /api/logout
func handleAPILogout(w http.ResponseWriter, r *http.Request) {
	endSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// loadDashboard runs the projection; a session whose registration vanished is ended.
func loadDashboard(w http.ResponseWriter, r *http.Request) (projections.DashboardView, bool) {
	view, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		RegistrationID: currentSession(r).RegistrationID,
	}, dashboardDeps())
	if errors.Is(err, projections.ErrRegistrationGone) {
		endSession(w, r)
		if wantsJSON(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		} else {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		}
		return view, false
	}
	if err != nil {
		internalError(w, r, err)
		return view, false
	}
	return view, true
}

// handleDashboard handles GET /dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, ok := loadDashboard(w, r)
	if !ok {
		return
	}
	flash := ""
	if saved := r.URL.Query().Get("saved"); savedEntities[saved] {
		flash = printer().Sprintf("dashboard.saved", titleCase(saved))
	}
	renderTemplate(w, r, http.StatusOK, "dashboard.html", page{Title: "Dashboard", Flash: flash, Data: view})
}

// handleAPIDashboard handles GET /api/dashboard
func handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	view, ok := loadDashboard(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// dashboardEditFailed re-renders the dashboard with the failed form's errors.
func dashboardEditFailed(w http.ResponseWriter, r *http.Request, form string, err error) {
	fields := fieldErrors(err)
	if fields == nil {
		if errors.Is(err, orchestrators.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		var persistErr *orchestrators.PersistenceError
		if !errors.As(err, &persistErr) {
			internalError(w, r, err)
			return
		}
		fields = map[string]string{"form": persistErr.Error()}
	}
	view, ok := loadDashboard(w, r)
	if !ok {
		return
	}
	scoped := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		scoped[form+"."+k] = v
	}
	scoped["open"] = form
	renderTemplate(w, r, http.StatusUnprocessableEntity, "dashboard.html", page{Title: "Dashboard", Errors: scoped, Data: view})
}

// savedEntities are the values the dashboard accepts in its saved= query.
var savedEntities = map[string]bool{"school": true, "coordinator": true, "participant": true}

func dashboardSaved(w http.ResponseWriter, r *http.Request, entity string) {
	http.Redirect(w, r, "/dashboard?saved="+entity, http.StatusSeeOther)
}

func schoolFromForm(r *http.Request) school.School {
	return school.School{
		Name:    r.FormValue("name"),
		Address: r.FormValue("address"),
		City:    r.FormValue("city"),
		State:   r.FormValue("state"),
		Pincode: r.FormValue("pincode"),
		Phone:   r.FormValue("phone"),
	}
}

// handleDashboardSchool handles POST /dashboard/school
func handleDashboardSchool(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	s := schoolFromForm(r)
	s.ID = r.FormValue("id")
	_, err := orchestrators.ExecuteUpdateSchool(r.Context(), orchestrators.UpdateSchoolInput{RegistrationID: sess.RegistrationID, School: s},
		orchestrators.UpdateSchoolDeps{Schools: stores.Schools, Cache: registrations})
	if err != nil {
		dashboardEditFailed(w, r, "school", err)
		return
	}
	dashboardSaved(w, r, "school")
}

// handleDashboardCoordinator handles POST /dashboard/coordinator
func handleDashboardCoordinator(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	c := coordinator.Coordinator{
		ID:    r.FormValue("id"),
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
		Phone: r.FormValue("phone"),
	}
	_, err := orchestrators.ExecuteUpdateCoordinator(r.Context(), orchestrators.UpdateCoordinatorInput{RegistrationID: sess.RegistrationID, Coordinator: c},
		orchestrators.UpdateCoordinatorDeps{Coordinators: stores.Registrations, Cache: registrations})
	if err != nil {
		dashboardEditFailed(w, r, "coordinator", err)
		return
	}
	dashboardSaved(w, r, "coordinator")
}

// handleDashboardParticipant handles POST /dashboard/participants/{id}
func handleDashboardParticipant(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	p := participant.Participant{
		ID:      r.PathValue("id"),
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Grade:   r.FormValue("grade"),
		Details: parseDetails(r.FormValue("details")),
	}
	_, err := orchestrators.ExecuteUpdateParticipant(r.Context(), orchestrators.UpdateParticipantInput{RegistrationID: sess.RegistrationID, Participant: p},
		orchestrators.UpdateParticipantDeps{Participants: stores.Participants, Cache: registrations})
	if err != nil {
		dashboardEditFailed(w, r, "participant-"+p.ID, err)
		return
	}
	dashboardSaved(w, r, "participant")
}

// handleAPIGetSchool handles GET /api/schools/{id}
// Only the session's own school is visible.
func handleAPIGetSchool(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	reg, err := registrations.Get(r.Context(), currentSession(r).RegistrationID)
	if err != nil || reg.School.ID != id {
		writeError(w, r, orchestrators.ErrNotFound)
		return
	}
	s, err := stores.Schools.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, orchestrators.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleAPIUpdateSchool handles PUT /api/schools/{id}
func handleAPIUpdateSchool(w http.ResponseWriter, r *http.Request) {
	var s school.School
	if err := strictDecode(r, &s); err != nil {
		badRequest(w, err)
		return
	}
	s.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteUpdateSchool(r.Context(), orchestrators.UpdateSchoolInput{RegistrationID: currentSession(r).RegistrationID, School: s},
		orchestrators.UpdateSchoolDeps{Schools: stores.Schools, Cache: registrations})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleAPIUpdateCoordinator handles PUT /api/coordinators/{id}
func handleAPIUpdateCoordinator(w http.ResponseWriter, r *http.Request) {
	var c coordinator.Coordinator
	if err := strictDecode(r, &c); err != nil {
		badRequest(w, err)
		return
	}
	c.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteUpdateCoordinator(r.Context(), orchestrators.UpdateCoordinatorInput{RegistrationID: currentSession(r).RegistrationID, Coordinator: c},
		orchestrators.UpdateCoordinatorDeps{Coordinators: stores.Registrations, Cache: registrations})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleAPIUpdateParticipant handles PUT /api/participants/{id}
func handleAPIUpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var p participant.Participant
	if err := strictDecode(r, &p); err != nil {
		badRequest(w, err)
		return
	}
	p.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteUpdateParticipant(r.Context(), orchestrators.UpdateParticipantInput{RegistrationID: currentSession(r).RegistrationID, Participant: p},
		orchestrators.UpdateParticipantDeps{Participants: stores.Participants, Cache: registrations})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
