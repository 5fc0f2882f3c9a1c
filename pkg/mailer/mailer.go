// Package mailer sends transactional email over SMTP. When no SMTP host is
// configured the mailer logs the message instead of sending it, so local
// development works without credentials.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Config holds SMTP settings. An empty Host disables sending.
type Config struct {
	Host   string
	Port   string
	User   string
	Pass   string
	Sender string
}

// Mailer sends transactional email.
type Mailer struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a Mailer. A nil logger panics: the log fallback depends on it.
func New(cfg Config, logger *zap.Logger) *Mailer {
	if logger == nil {
		panic("mailer.New requires a non-nil zap.Logger instance")
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// Configured reports whether the mailer has a real SMTP transport.
func (m *Mailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.User != "" && m.cfg.Pass != ""
}

// Send delivers a single email. If SMTP is not configured the message is
// logged and nil is returned.
func (m *Mailer) Send(recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}

	if !m.Configured() {
		m.logger.Info("SMTP not configured; logging email instead of sending",
			zap.String("recipient", recipient),
			zap.String("subject", subject))
		return nil
	}

	contentType := "text/plain; charset=UTF-8"
	if strings.Contains(strings.ToLower(body), "<html>") || strings.Contains(strings.ToLower(body), "<p>") {
		contentType = "text/html; charset=UTF-8"
	}

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", recipient, m.cfg.Sender, subject, contentType, body))

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port

	if err := smtp.SendMail(addr, auth, m.cfg.Sender, []string{recipient}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendWelcome sends the onboarding email for a new account.
func (m *Mailer) SendWelcome(recipient, displayName, appName string) error {
	name := displayName
	if name == "" {
		name = "there"
	}
	subject := fmt.Sprintf("Welcome to %s", appName)
	body := fmt.Sprintf("<html><body><p>Hi %s,</p>"+
		"<p>Welcome to %s! Your account is ready. Head to your dashboard to "+
		"connect your channels and start tracking brand deals.</p>"+
		"<p>— The %s team</p></body></html>", name, appName, appName)
	return m.Send(recipient, subject, body)
}
