package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/config"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	// Enabled is false when SMTP is not configured; sends are then skipped.
	Enabled() bool
	SendOnboarding(to string, data OnboardingData) error
	SendNotification(to string, data NotificationData) error
}

type OnboardingData struct {
	Name              string
	LoginEmail        string
	TemporaryPassword string
	Role              string
	Department        string
	LoginURL          string
	CompanyName       string
}

type NotificationData struct {
	Name      string
	Title     string
	Message   string
	ActionURL string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailServiceImpl struct {
	cfg     config.SMTPConfig
	html    *htmltemplate.Template
	text    *texttemplate.Template
	dialer  dialer
	backoff func(attempt int) time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	var d dialer
	if cfg.Host != "" {
		gd := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		gd.SSL = cfg.UseSSL
		gd.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
		d = gd
	}
	return newEmailService(cfg, d)
}

func newEmailService(cfg config.SMTPConfig, d dialer) (*emailServiceImpl, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html email templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:    cfg,
		html:   html,
		text:   text,
		dialer: d,
		backoff: func(attempt int) time.Duration {
			// 1s, 2s, 4s
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}, nil
}

func (s *emailServiceImpl) Enabled() bool {
	return s.cfg.Host != "" && s.dialer != nil
}

// SendOnboarding mails first-login credentials to a new employee.
func (s *emailServiceImpl) SendOnboarding(to string, data OnboardingData) error {
	if data.CompanyName == "" {
		data.CompanyName = s.cfg.FromName
	}
	return s.send(to, fmt.Sprintf("Welcome to %s", data.CompanyName), "onboarding", data)
}

func (s *emailServiceImpl) SendNotification(to string, data NotificationData) error {
	return s.send(to, data.Title, "notification", data)
}

func (s *emailServiceImpl) render(name string, data any) (textBody, htmlBody string, err error) {
	var tb, hb bytes.Buffer
	if err := s.text.ExecuteTemplate(&tb, name+".txt", data); err != nil {
		return "", "", fmt.Errorf("failed to execute text template %s: %w", name, err)
	}
	if err := s.html.ExecuteTemplate(&hb, name+".html", data); err != nil {
		return "", "", fmt.Errorf("failed to execute html template %s: %w", name, err)
	}
	return tb.String(), hb.String(), nil
}

func (s *emailServiceImpl) buildMessage(to, subject, textBody, htmlBody string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)
	return m
}

func (s *emailServiceImpl) send(to, subject, templateName string, data any) error {
	// Skip sending if SMTP is not configured
	if !s.Enabled() {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	textBody, htmlBody, err := s.render(templateName, data)
	if err != nil {
		return err
	}
	msg := s.buildMessage(to, subject, textBody, htmlBody)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.dialer.DialAndSend(msg)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		if attempt < maxRetries {
			time.Sleep(s.backoff(attempt))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
