// Package notification delivers transactional email with template rendering
// and an SMTP transport. Domain services depend on the Mailer and stay unaware
// of the wire details.
package notification

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EmailSender is the transport interface for outbound mail.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Template is a reusable email template with {{key}} placeholders.
type Template struct {
	ID      string
	Subject string
	Body    string
}

// TemplateEngine stores templates and renders them with data maps.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine returns an engine with the built-in hospital templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "hospital-registered",
			Subject: "Welcome to PrimeHealth, {{hospital_name}}",
			Body: "Dear {{admin_name}},\n\nYour hospital {{hospital_name}} has been registered.\n" +
				"Sign in with {{email}} and the temporary password {{temp_password}}, " +
				"then change it immediately.\n\nPrimeHealth Team",
		},
		{
			ID:      "staff-welcome",
			Subject: "Your {{hospital_name}} staff account",
			Body: "Dear {{name}},\n\nAn account has been created for you at {{hospital_name}} " +
				"with the role {{role}}.\nSign in with {{email}} and the temporary password " +
				"{{temp_password}}, then change it immediately.\n\nPrimeHealth Team",
		},
		{
			ID:      "password-reset",
			Subject: "Password Reset Request",
			Body: "You requested a password reset.\n\nUse the following token within the next " +
				"hour to set a new password: {{reset_token}}\n\nIf you did not request this, " +
				"ignore this message.",
		},
		{
			ID:      "appointment-confirmation",
			Subject: "Appointment Confirmed for {{patient_name}}",
			Body: "Dear {{patient_name}},\n\nYour appointment with {{doctor_name}} on {{date}} " +
				"at {{time_slot}} has been confirmed.\n\n{{hospital_name}}",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render substitutes {{key}} placeholders from data. Keys missing from data
// are left in place.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}
	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// SMTPConfig carries the SMTP transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender sends mail over plain SMTP with optional AUTH.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender constructs an SMTPSender from config.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// SendEmail delivers a single message. The context deadline covers the dial
// and is applied to the connection, so every protocol exchange below it is
// bounded too.
func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.Host == "" {
		return errors.New("smtp host not configured")
	}

	from := s.cfg.From
	header := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n",
		s.cfg.FromName, from, to, subject)
	msg := []byte(header + body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// Mailer renders templates and dispatches them through an EmailSender.
type Mailer struct {
	sender    EmailSender
	templates *TemplateEngine
	logger    zerolog.Logger
}

// NewMailer constructs a Mailer.
func NewMailer(sender EmailSender, templates *TemplateEngine, logger zerolog.Logger) *Mailer {
	return &Mailer{sender: sender, templates: templates, logger: logger}
}

// Send renders templateID with data and delivers it synchronously.
func (m *Mailer) Send(ctx context.Context, templateID, to string, data map[string]string) error {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	return m.sender.SendEmail(ctx, to, subject, body)
}

// sendTimeout bounds one outbound delivery, dial included. A hung SMTP
// server must not pin a dispatch goroutine.
const sendTimeout = 5 * time.Second

// Dispatch sends in a background goroutine bounded by sendTimeout. Delivery
// failures are logged and never surfaced to the caller, so the triggering
// request is not delayed or failed by a mail outage.
func (m *Mailer) Dispatch(templateID, to string, data map[string]string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := m.Send(ctx, templateID, to, data); err != nil {
			m.logger.Error().
				Err(err).
				Str("template", templateID).
				Str("recipient", to).
				Msg("email dispatch failed")
		}
	}()
}

// LogSender writes messages to the log instead of delivering them. Used in
// development when no SMTP host is configured.
type LogSender struct {
	Logger zerolog.Logger
}

func (s *LogSender) SendEmail(_ context.Context, to, subject, _ string) error {
	s.Logger.Info().Str("to", to).Str("subject", subject).Msg("email suppressed, smtp not configured")
	return nil
}

// MockEmailSender records calls for tests.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
}

// EmailCall is one recorded SendEmail invocation.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// SendEmail records the call and fails when ShouldFail is set.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New("mock send failure")
	}
	return nil
}

// Calls returns a copy of recorded invocations.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}
