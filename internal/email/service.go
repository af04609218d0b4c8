// Package email provides email sending capabilities via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"
)

// Config holds SMTP configuration
type Config struct {
	Host      string
	Port      string
	Username  string
	Password  string
	From      string
	FromName  string
	ContactTo string
	EnableTLS bool
}

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewService creates a new email service
func NewService(config Config) *Service {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
		send:   smtp.SendMail,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendEmail sends a plain text email
func (s *Service) SendEmail(to []string, subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		s.fromHeader(),
		subject,
		body,
	))

	return s.send(s.server, s.auth, s.config.From, to, msg)
}

// SendHTMLEmail sends an HTML email
func (s *Service) SendHTMLEmail(to []string, subject, htmlBody string) error {
	return s.sendHTML(to, "", subject, htmlBody)
}

func (s *Service) sendHTML(to []string, replyTo, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	// Simple multipart message
	boundary := "boundary-portfolio"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", s.fromHeader())
	if replyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	// Plain text part (fallback)
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "Please view this email in an HTML-capable email client.\r\n")
	fmt.Fprintf(&msg, "\r\n")

	// HTML part
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return s.send(s.server, s.auth, s.config.From, to, msg.Bytes())
}

func (s *Service) fromHeader() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}
	return s.config.From
}

// ContactMessage is one submission from the contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type notificationData struct {
	Name    string
	Email   string
	Subject string
	Message string
	SentAt  string
}

type confirmationData struct {
	Name    string
	Subject string
	Message string
}

// SendContactNotification delivers a contact-form submission to the site
// owner. The visitor's address goes into Reply-To so the owner can answer
// directly.
func (s *Service) SendContactNotification(msg ContactMessage) error {
	subject := msg.Subject
	if subject == "" {
		subject = "New message"
	}

	data := notificationData{
		Name:    msg.Name,
		Email:   msg.Email,
		Subject: subject,
		Message: msg.Message,
		SentAt:  time.Now().Format("Jan 2, 2006 15:04 MST"),
	}

	html, err := renderTemplate(notificationEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render notification template: %w", err)
	}

	to := s.config.ContactTo
	if to == "" {
		to = s.config.From
	}

	return s.sendHTML([]string{to}, msg.Email, "Website Contact: "+subject, html)
}

// SendContactConfirmation sends a copy of the submitted message back to
// the visitor.
func (s *Service) SendContactConfirmation(msg ContactMessage) error {
	subject := msg.Subject
	if subject == "" {
		subject = "No subject"
	}

	data := confirmationData{
		Name:    msg.Name,
		Subject: subject,
		Message: msg.Message,
	}

	html, err := renderTemplate(confirmationEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render confirmation template: %w", err)
	}

	return s.sendHTML([]string{msg.Email}, "", "Thank you for your message", html)
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const notificationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New contact message</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #3fca9a; padding-bottom: 10px; margin-bottom: 20px; }
        .card { background: #f9f9f9; padding: 16px; border-radius: 4px; margin: 20px 0; }
        .label { color: #666; font-size: 14px; margin: 4px 0; }
        .message { background: #fff; border-left: 3px solid #3fca9a; padding: 12px; border-radius: 3px; }
        .timestamp { font-size: 12px; color: #999; font-style: italic; margin-top: 20px; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>New Contact Message</h1>
        <p>You've received a new message from your website contact form.</p>
    </div>

    <div class="card">
        <p class="label"><strong>From:</strong> {{.Name}}</p>
        <p class="label"><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
        <p class="label"><strong>Subject:</strong> {{.Subject}}</p>
        <p class="label"><strong>Message:</strong></p>
        <div class="message">{{.Message}}</div>
        <p class="timestamp">Received on: {{.SentAt}}</p>
    </div>

    <div class="footer">
        <p>Reply to this email to answer the sender directly.</p>
    </div>
</body>
</html>`

const confirmationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Thank you for your message</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #3fca9a; padding-bottom: 10px; margin-bottom: 20px; }
        .card { background: #f9f9f9; padding: 16px; border-radius: 4px; margin: 20px 0; }
        .message { background: #fff; border-left: 3px solid #3fca9a; padding: 12px; border-radius: 3px; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Thank You!</h1>
    </div>

    <h2>Message Received</h2>

    <p>Hi {{.Name}}, thank you for reaching out! I've received your message and will get back to you soon.</p>

    <div class="card">
        <p><strong>Subject:</strong> {{.Subject}}</p>
        <p><strong>Your message:</strong></p>
        <div class="message">{{.Message}}</div>
    </div>

    <div class="footer">
        <p>This is an automatic confirmation. No action is needed.</p>
    </div>
</body>
</html>`
