package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// EmailService sends account notifications over SMTP. When no SMTP host is
// configured the service stays disabled and every send is a logged no-op, so
// local setups run without a mail server.
type EmailService struct {
	context.DefaultService

	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string

	templates map[string]*template.Template
}

const EMAIL_SVC = "email_svc"

func (svc EmailService) Id() string {
	return EMAIL_SVC
}

func (svc *EmailService) Configure(ctx *context.Context) error {
	svc.smtpHost = os.Getenv("SMTP_HOST")
	svc.smtpPort = os.Getenv("SMTP_PORT")
	svc.smtpUsername = os.Getenv("SMTP_USERNAME")
	svc.smtpPassword = os.Getenv("SMTP_PASSWORD")
	svc.fromEmail = os.Getenv("FROM_EMAIL")
	svc.fromName = os.Getenv("FROM_NAME")

	if svc.smtpPort == "" {
		svc.smtpPort = "587"
	}
	if svc.fromName == "" {
		svc.fromName = "AuthGuard"
	}

	svc.loadTemplates()
	return svc.DefaultService.Configure(ctx)
}

func (svc *EmailService) Start() error {
	if !svc.Enabled() {
		log.Info("SMTP not configured, email notifications disabled")
	}
	return nil
}

func (svc *EmailService) Enabled() bool {
	return svc.smtpHost != ""
}

func (svc *EmailService) loadTemplates() {
	svc.templates = map[string]*template.Template{
		"welcome": template.Must(template.New("welcome").Parse(`
<html><body>
<h2>Welcome, {{.Name}}</h2>
<p>Your account <b>{{.LoginID}}</b> has been created.</p>
<p>If this wasn't you, contact support immediately.</p>
</body></html>`)),
		"new_login": template.Must(template.New("new_login").Parse(`
<html><body>
<h2>New login to your account</h2>
<p>Account <b>{{.LoginID}}</b> was just signed in from {{.Location}} ({{.IP}}).</p>
<p>If this wasn't you, change your password now.</p>
</body></html>`)),
	}
}

// SendWelcome notifies a new user their account exists.
func (svc *EmailService) SendWelcome(to, name, loginID string) {
	svc.send(to, "Welcome to AuthGuard", "welcome", map[string]string{
		"Name":    name,
		"LoginID": loginID,
	})
}

// SendLoginAlert notifies the account owner of a fresh login.
func (svc *EmailService) SendLoginAlert(to, loginID, ip, location string) {
	svc.send(to, "New login to your account", "new_login", map[string]string{
		"LoginID":  loginID,
		"IP":       ip,
		"Location": location,
	})
}

// send is fire and forget: notification failures are logged, never surfaced.
func (svc *EmailService) send(to, subject, templateName string, data map[string]string) {
	if !svc.Enabled() {
		log.WithField("to", to).WithField("template", templateName).Debug("email disabled, skipping send")
		return
	}

	tmpl, ok := svc.templates[templateName]
	if !ok {
		log.WithField("template", templateName).Error("unknown email template")
		return
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		log.WithError(err).WithField("template", templateName).Error("failed to render email")
		return
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		svc.fromName, svc.fromEmail, to, subject, body.String())

	go func() {
		addr := svc.smtpHost + ":" + svc.smtpPort
		auth := smtp.PlainAuth("", svc.smtpUsername, svc.smtpPassword, svc.smtpHost)
		if err := smtp.SendMail(addr, auth, svc.fromEmail, []string{to}, []byte(msg)); err != nil {
			log.WithError(err).WithField("to", to).Warn("failed to send email")
		}
	}()
}
