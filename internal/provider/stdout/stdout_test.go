package stdout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wneessen/go-mail"
)

func newMsg(t *testing.T, to []string, subject, body string) *mail.Msg {
	t.Helper()
	msg := mail.NewMsg()
	if err := msg.From("sender@example.com"); err != nil {
		t.Fatalf("From: %v", err)
	}
	if err := msg.To(to...); err != nil {
		t.Fatalf("To: %v", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	msg.SetMessageIDWithValue("id-1@example.com")
	return msg
}

func TestSend_BasicEmail(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	msg := newMsg(t, []string{"alice@example.com", "bob@example.com"}, "Monthly Report", "Please find the report attached.")

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "From: sender@example.com") {
		t.Error("output missing From header")
	}
	if !strings.Contains(output, "To: alice@example.com, bob@example.com") {
		t.Error("output missing To header")
	}
	if !strings.Contains(output, "Subject: Monthly Report") {
		t.Error("output missing Subject header")
	}
	if !strings.Contains(output, "Message-ID: <id-1@example.com>") {
		t.Error("output missing Message-ID")
	}
	if !strings.Contains(output, "Please find the report attached.") {
		t.Error("output missing body text")
	}
	if strings.Contains(output, "Cc:") {
		t.Error("output should not contain Cc line when there are no Cc recipients")
	}
	if !strings.HasPrefix(output, "========================================\n") {
		t.Error("output should start with separator line")
	}
	if !strings.HasSuffix(output, "========================================\n") {
		t.Error("output should end with separator line")
	}
}

func TestSend_WithCcAndBcc(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	msg := newMsg(t, []string{"alice@example.com"}, "With CC", "Hello")
	if err := msg.Cc("carol@example.com"); err != nil {
		t.Fatalf("Cc: %v", err)
	}
	if err := msg.Bcc("dave@example.com"); err != nil {
		t.Fatalf("Bcc: %v", err)
	}

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Cc: carol@example.com") {
		t.Error("output missing Cc header")
	}
	if !strings.Contains(output, "Bcc: dave@example.com") {
		t.Error("output missing Bcc line")
	}
}

func TestSend_HTMLBodyFallback(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	msg := newMsg(t, []string{"recipient@example.com"}, "HTML Only", "")
	msg.SetBodyString(mail.TypeTextHTML, "<p>HTML content</p>")

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "<p>HTML content</p>") {
		t.Error("output should display HTML body when text body is empty")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestSend_WriteError(t *testing.T) {
	t.Parallel()

	p := NewWithWriter(failingWriter{})
	msg := newMsg(t, []string{"recipient@example.com"}, "Broken pipe", "Body")

	if err := p.Send(context.Background(), msg); err == nil {
		t.Error("expected write error, got nil")
	}
}

func TestSend_NilMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewWithWriter(&buf).Send(context.Background(), nil); err == nil {
		t.Error("expected error for nil message, got nil")
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	p := New()
	if p.Name() != "stdout" {
		t.Errorf("Name: got %q, want %q", p.Name(), "stdout")
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bytes int
		want  string
	}{
		{name: "zero bytes", bytes: 0, want: "0 B"},
		{name: "small bytes", bytes: 512, want: "512 B"},
		{name: "kilobytes", bytes: 46080, want: "45.0 KB"},
		{name: "megabytes", bytes: 1258291, want: "1.2 MB"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := formatSize(tt.bytes)
			if got != tt.want {
				t.Errorf("formatSize(%d): got %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
