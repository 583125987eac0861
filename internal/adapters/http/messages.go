package web

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/message"
)

// msgLoginFailed is the only text a failed login ever shows.
const msgLoginFailed = "login failed"

func init() {
	lang := siteLanguage

	message.SetString(lang, "site.name", "Meraki Literary Festival")
	message.SetString(lang, "title.page", "%s | Meraki Literary Festival")

	// Registration wizard
	message.SetString(lang, "wizard.step", "Step %d of %d")
	message.SetString(lang, "wizard.submitted", "Registration %s is complete. Check your inbox for the coordinator login.")
	message.SetString(lang, "wizard.notification_failed", "Registration %s was saved, but the login email could not be sent. The organizers have been notified and will resend it.")
	message.SetString(lang, "wizard.in_flight", "Your registration is already being submitted.")
	message.Set(lang, "wizard.remaining", plural.Selectf(1, "%d",
		"=0", "Roster complete",
		"=1", "One more participant needed",
		"other", "%d more participants needed",
	))

	// Coordinator dashboard
	message.SetString(lang, "dashboard.saved", "%s details saved.")
	message.Set(lang, "dashboard.participants", plural.Selectf(1, "%d",
		"=1", "One participant registered",
		"other", "%d participants registered",
	))

	// Contact
	message.SetString(lang, "contact.sent", "Thanks %s, your message has been received.")

	// Outbox
	message.Set(lang, "admin.failed_count", plural.Selectf(1, "%d",
		"=0", "No failed deliveries",
		"=1", "One failed delivery",
		"other", "%d failed deliveries",
	))
}
