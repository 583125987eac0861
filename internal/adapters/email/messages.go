package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var credentialTmpl = template.Must(template.New("credential").Parse(`<p>Dear {{.Name}},</p>
<p>Your school's festival registration is confirmed. Sign in to the coordinator dashboard to review or update it.</p>
<p>Login email: <strong>{{.Email}}</strong><br>
Password: <code>{{.Credential}}</code></p>
{{if .LoginURL}}<p><a href="{{.LoginURL}}">{{.LoginURL}}</a></p>{{end}}
<p>Keep this password private. An organizer can issue a new one if it is lost.</p>`))

var contactTmpl = template.Must(template.New("contact").Parse(`<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p style="white-space: pre-wrap">{{.Body}}</p>`))

// CredentialMessage builds the email that hands a coordinator their login credential.
// PRE: credential is the plaintext just hashed into the store
// POST: the credential appears only in the bodies, never in the subject
func CredentialMessage(name, to, credential, loginURL string) (SendRequest, error) {
	var buf bytes.Buffer
	err := credentialTmpl.Execute(&buf, struct {
		Name, Email, Credential, LoginURL string
	}{name, to, credential, loginURL})
	if err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		Kind:    KindCredential,
		To:      []string{to},
		Subject: "Your Meraki festival coordinator login",
		HTML:    buf.String(),
		Text:    fmt.Sprintf("Login email: %s\nPassword: %s\n%s\n", to, credential, loginURL),
	}, nil
}

// ContactMessage builds the email forwarding a contact form submission to the organizers.
// POST: ReplyTo is the sender so organizers can answer directly
func ContactMessage(inbox, name, from, subject, body string) (SendRequest, error) {
	var buf bytes.Buffer
	err := contactTmpl.Execute(&buf, struct {
		Name, Email, Subject, Body string
	}{name, from, subject, body})
	if err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		Kind:    KindContact,
		To:      []string{inbox},
		Subject: "[Contact] " + subject,
		HTML:    buf.String(),
		Text:    fmt.Sprintf("From: %s <%s>\nSubject: %s\n\n%s\n", name, from, subject, body),
		ReplyTo: from,
	}, nil
}
