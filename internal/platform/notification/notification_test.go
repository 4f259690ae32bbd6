package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRender(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render("password-reset", map[string]string{"reset_token": "tok-123"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "Password Reset Request" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "tok-123") {
		t.Errorf("body missing token: %q", body)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRender_MissingKeysLeftInPlace(t *testing.T) {
	e := NewTemplateEngine()
	_, body, err := e.Render("staff-welcome", map[string]string{"name": "Asha"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(body, "Asha") {
		t.Error("expected supplied key substituted")
	}
	if !strings.Contains(body, "{{temp_password}}") {
		t.Error("expected missing key left as placeholder")
	}
}

func TestMailer_Send(t *testing.T) {
	mock := &MockEmailSender{}
	m := NewMailer(mock, NewTemplateEngine(), zerolog.Nop())

	err := m.Send(context.Background(), "hospital-registered", "admin@city.example", map[string]string{
		"hospital_name": "City Care",
		"admin_name":    "Dr. Rao",
		"email":         "admin@city.example",
		"temp_password": "s3cret",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].To != "admin@city.example" {
		t.Errorf("to = %q", calls[0].To)
	}
	if !strings.Contains(calls[0].Subject, "City Care") {
		t.Errorf("subject = %q", calls[0].Subject)
	}
	if !strings.Contains(calls[0].Body, "s3cret") {
		t.Error("body missing temporary password")
	}
}

func TestMailer_SendFailurePropagates(t *testing.T) {
	mock := &MockEmailSender{ShouldFail: true}
	m := NewMailer(mock, NewTemplateEngine(), zerolog.Nop())
	if err := m.Send(context.Background(), "password-reset", "u@x.example", nil); err == nil {
		t.Fatal("expected transport failure to surface")
	}
}

type deadlineSender struct {
	done     chan struct{}
	deadline time.Time
	hasBound bool
}

func (s *deadlineSender) SendEmail(ctx context.Context, _, _, _ string) error {
	s.deadline, s.hasBound = ctx.Deadline()
	close(s.done)
	return nil
}

func TestMailer_DispatchBoundsDelivery(t *testing.T) {
	sender := &deadlineSender{done: make(chan struct{})}
	m := NewMailer(sender, NewTemplateEngine(), zerolog.Nop())

	before := time.Now()
	m.Dispatch("password-reset", "u@x.example", nil)

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch never reached the sender")
	}
	if !sender.hasBound {
		t.Fatal("dispatched send must carry a deadline")
	}
	if remaining := sender.deadline.Sub(before); remaining > sendTimeout+time.Second {
		t.Errorf("deadline %v exceeds the configured bound %v", remaining, sendTimeout)
	}
}

func TestMailer_DispatchSwallowsFailure(t *testing.T) {
	mock := &MockEmailSender{ShouldFail: true}
	m := NewMailer(mock, NewTemplateEngine(), zerolog.Nop())

	m.Dispatch("password-reset", "u@x.example", nil)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(mock.Calls()) == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("dispatch never reached the sender")
}
