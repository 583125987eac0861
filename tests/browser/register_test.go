package browser_test

import (
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"
)

// TestRegistrationWizard_EndToEnd walks every wizard step in a real browser,
// then signs in with the emailed credential and edits the school.
func TestRegistrationWizard_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newTestApp(t)
	page := app.newPage(t)

	if _, err := page.Goto(app.BaseURL + "/register"); err != nil {
		t.Fatalf("failed to open wizard: %v", err)
	}

	// School
	fill(t, page, "#school-form input[name=name]", "Lincoln High School")
	fill(t, page, "#school-form textarea[name=address]", "12 Park Street, Central")
	fill(t, page, "#school-form input[name=city]", "Springfield")
	fill(t, page, "#school-form input[name=state]", "Illinois")
	fill(t, page, "#school-form input[name=pincode]", "620001")
	fill(t, page, "#school-form input[name=phone]", "9876543210")
	click(t, page, "#school-form button[type=submit]")

	// Coordinator
	fill(t, page, "#coordinator-form input[name=name]", "Asha Rao")
	fill(t, page, "#coordinator-form input[name=email]", "asha@example.com")
	fill(t, page, "#coordinator-form input[name=phone]", "9876543210")
	click(t, page, "#coordinator-form button[type=submit]")

	// Events: pick the poetry slam
	click(t, page, "form[action='/register/events'] button:has-text('Select')")
	if n, _ := page.Locator(".card.selected").Count(); n != 1 {
		t.Fatalf("selected cards = %d, want 1", n)
	}
	click(t, page, "form[action='/register/events/next'] button")

	// Participants
	fill(t, page, "#roster-1 input[name=name]", "Ravi Kumar")
	fill(t, page, "#roster-1 input[name=email]", "ravi@example.com")
	fill(t, page, "#roster-1 input[name=grade]", "9")
	click(t, page, "#roster-1 form.add-participant button[type=submit]")
	text, err := page.Locator("#roster-1").InnerText()
	if err != nil || !strings.Contains(text, "Ravi Kumar") {
		t.Fatalf("roster does not list the participant: %q %v", text, err)
	}
	click(t, page, "form[action='/register/participants/next'] button")

	// Confirmation
	summary, err := page.Locator(".summary").InnerText()
	if err != nil {
		t.Fatalf("no summary: %v", err)
	}
	for _, want := range []string{"Lincoln High School", "Asha Rao", "Poetry Slam Competition", "Ravi Kumar"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary lacks %q", want)
		}
	}
	click(t, page, "#submit-form button")
	if err := page.WaitForURL("**/register/complete?id=*", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("submission did not complete: %v", err)
	}

	// Dashboard
	app.login(t, page, "asha@example.com", app.Mail.credentialFor(t, "asha@example.com"))
	click(t, page, "details.edit summary:has-text('School details')")
	fill(t, page, "#school-form input[name=name]", "Lincoln Senior School")
	click(t, page, "#school-form button[type=submit]")
	heading, err := page.Locator("main h1").InnerText()
	if err != nil || heading != "Lincoln Senior School" {
		t.Errorf("heading after edit = %q, %v", heading, err)
	}
	flash, _ := page.Locator(".flash").InnerText()
	if !strings.Contains(flash, "School details saved") {
		t.Errorf("flash = %q", flash)
	}
}

// TestLogin_WrongPassword shows the generic failure message.
func TestLogin_WrongPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newTestApp(t)
	page := app.newPage(t)
	if _, err := page.Goto(app.BaseURL + "/login"); err != nil {
		t.Fatal(err)
	}
	fill(t, page, "main input[name=email]", "nobody@example.com")
	fill(t, page, "main input[name=password]", "Wrong-password-1")
	click(t, page, "main form[action='/login'] button[type=submit]")
	flash, err := page.Locator(".flash").InnerText()
	if err != nil || flash != "login failed" {
		t.Errorf("flash = %q, %v", flash, err)
	}
}
