package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"net/url"

	"gopkg.in/gomail.v2"

	"github.com/evea/evea_backend/metrics"
	"github.com/evea/evea_backend/models"
)

// SMTPConfig for the outbound mail server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers email through gomail
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, email models.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.HTML)

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Printf("Failed to send email %q to %s: %v", email.Subject, email.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Email sent successfully: %s", email.Subject)
	return nil
}

// LogMailer prints emails instead of sending them; used in development without SMTP
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, email models.Email) error {
	log.Printf("[MAIL] to=%s subject=%q\n%s", email.To, email.Subject, email.HTML)
	return nil
}

// Email template names, also used as metric labels
const (
	templateVerification      = "verification"
	templateSubmitted         = "submitted"
	templateApproved          = "approved"
	templateRejected          = "rejected"
	templateDocumentsRequired = "documents_requested"
	templateSuspended         = "suspended"
	templateReinstated        = "reinstated"
	templatePasswordReset     = "password_reset"
)

const layout = `<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222;max-width:600px;margin:auto">
<h2 style="color:#7c3aed">EVEA</h2>
<p>Hi {{.Name}},</p>
{{template "content" .}}
<p style="color:#888;font-size:12px">You are receiving this email because of your EVEA vendor account.</p>
</body></html>`

var emailBodies = map[string]struct {
	subject string
	body    string
}{
	templateVerification: {
		subject: "Verify your email for EVEA",
		body:    `<p>Thanks for registering <b>{{.BusinessName}}</b>. Please confirm your email address to continue.</p><p><a href="{{.Link}}">Verify email</a></p><p>This link expires in 24 hours.</p>`,
	},
	templateSubmitted: {
		subject: "Your EVEA registration has been submitted",
		body:    `<p>We received the registration for <b>{{.BusinessName}}</b>. Our team will review your documents and get back to you.</p>`,
	},
	templateApproved: {
		subject: "Welcome to EVEA, your vendor account is approved",
		body:    `<p>Good news! <b>{{.BusinessName}}</b> is now an approved EVEA vendor.</p><p><a href="{{.Link}}">Go to your dashboard</a></p>`,
	},
	templateRejected: {
		subject: "Update on your EVEA registration",
		body:    `<p>Unfortunately the registration for <b>{{.BusinessName}}</b> was not approved.</p>{{if .Note}}<p>Reviewer note: {{.Note}}</p>{{end}}`,
	},
	templateDocumentsRequired: {
		subject: "More documents needed for your EVEA registration",
		body:    `<p>Our reviewers need more information for <b>{{.BusinessName}}</b>.</p>{{if .Note}}<p>Reviewer note: {{.Note}}</p>{{end}}<p><a href="{{.Link}}">Update your documents</a></p>`,
	},
	templateSuspended: {
		subject: "Your EVEA vendor account has been suspended",
		body:    `<p>The vendor account for <b>{{.BusinessName}}</b> has been suspended.</p>{{if .Note}}<p>Reason: {{.Note}}</p>{{end}}`,
	},
	templateReinstated: {
		subject: "Your EVEA vendor account is active again",
		body:    `<p>The suspension on <b>{{.BusinessName}}</b> has been lifted.</p>`,
	},
	templatePasswordReset: {
		subject: "Reset your EVEA password",
		body:    `<p>We received a request to reset your password.</p><p><a href="{{.Link}}">Choose a new password</a></p><p>If you did not ask for this you can ignore this email.</p>`,
	},
}

type emailData struct {
	Name         string
	BusinessName string
	Link         string
	Note         string
}

// EmailComposer renders the transactional emails
type EmailComposer struct {
	baseURL   string
	templates map[string]*template.Template
}

func NewEmailComposer(baseURL string) *EmailComposer {
	c := &EmailComposer{baseURL: baseURL, templates: make(map[string]*template.Template)}
	for name, def := range emailBodies {
		t := template.Must(template.New(name).Parse(layout))
		template.Must(t.New("content").Parse(def.body))
		c.templates[name] = t
	}
	return c
}

func (c *EmailComposer) render(name, to string, data emailData) (models.Email, error) {
	var buf bytes.Buffer
	if err := c.templates[name].Execute(&buf, data); err != nil {
		return models.Email{}, fmt.Errorf("render %s email: %w", name, err)
	}
	return models.Email{To: to, Subject: emailBodies[name].subject, HTML: buf.String()}, nil
}

func (c *EmailComposer) link(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *EmailComposer) Verification(reg *models.VendorRegistration, token string) (models.Email, error) {
	return c.render(templateVerification, reg.BusinessInfo.Email, emailData{
		Name:         reg.BusinessInfo.OwnerName,
		BusinessName: reg.BusinessInfo.BusinessName,
		Link:         c.link("/vendor/verify-email", url.Values{"token": {token}}),
	})
}

func (c *EmailComposer) PasswordReset(email, token string) (models.Email, error) {
	return c.render(templatePasswordReset, email, emailData{
		Name: email,
		Link: c.link("/reset-password", url.Values{"token": {token}}),
	})
}

// StatusEmail renders the notification for a registration event template
func (c *EmailComposer) StatusEmail(name string, reg *models.VendorRegistration, note string) (models.Email, error) {
	return c.render(name, reg.BusinessInfo.Email, emailData{
		Name:         reg.BusinessInfo.OwnerName,
		BusinessName: reg.BusinessInfo.BusinessName,
		Link:         c.link("/vendor/dashboard", nil),
		Note:         note,
	})
}

// sendBestEffort delivers a status email and only logs failures
func sendBestEffort(ctx context.Context, notifier Notifier, composer *EmailComposer, name string, reg *models.VendorRegistration, note string) {
	email, err := composer.StatusEmail(name, reg, note)
	if err == nil {
		err = notifier.Send(ctx, email)
	}
	metrics.Email(name, err)
	if err != nil {
		log.Printf("Best-effort %s email for registration %s failed: %v", name, reg.ID.Hex(), err)
	}
}
