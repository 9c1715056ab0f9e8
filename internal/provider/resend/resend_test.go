package resend

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	resendsdk "github.com/resend/resend-go/v2"
	"github.com/wneessen/go-mail"
)

type mockEmails struct {
	sendErr   error
	callCount int
	lastReq   *resendsdk.SendEmailRequest
}

func (m *mockEmails) SendWithContext(_ context.Context, params *resendsdk.SendEmailRequest) (*resendsdk.SendEmailResponse, error) {
	m.callCount++
	m.lastReq = params
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return &resendsdk.SendEmailResponse{Id: "re_123"}, nil
}

func newMsg(t *testing.T) *mail.Msg {
	t.Helper()
	msg := mail.NewMsg()
	if err := msg.FromFormat("Sender", "sender@example.com"); err != nil {
		t.Fatalf("FromFormat: %v", err)
	}
	if err := msg.To("to@example.com"); err != nil {
		t.Fatalf("To: %v", err)
	}
	if err := msg.Cc("cc@example.com"); err != nil {
		t.Fatalf("Cc: %v", err)
	}
	if err := msg.Bcc("bcc@example.com"); err != nil {
		t.Fatalf("Bcc: %v", err)
	}
	if err := msg.ReplyTo("reply@example.com"); err != nil {
		t.Fatalf("ReplyTo: %v", err)
	}
	msg.Subject("Resend Subject")
	msg.SetBodyString(mail.TypeTextPlain, "Resend body")
	msg.SetGenHeader(mail.Header("X-Custom-Header"), "CustomValue")
	msg.SetMessageIDWithValue("abc@mail.example.com")
	return msg
}

func TestName(t *testing.T) {
	t.Parallel()
	if got := NewWithClient(&mockEmails{}).Name(); got != "resend" {
		t.Errorf("Name(): got %q, want %q", got, "resend")
	}
}

func TestSend_MapsFields(t *testing.T) {
	t.Parallel()

	mock := &mockEmails{}
	p := NewWithClient(mock)

	if err := p.Send(context.Background(), newMsg(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := mock.lastReq
	if req == nil {
		t.Fatal("expected a request, got nil")
	}
	if req.From != `"Sender" <sender@example.com>` {
		t.Errorf("From: got %q", req.From)
	}
	if len(req.To) != 1 || req.To[0] != "to@example.com" {
		t.Errorf("To: got %v", req.To)
	}
	if len(req.Cc) != 1 || req.Cc[0] != "cc@example.com" {
		t.Errorf("Cc: got %v", req.Cc)
	}
	if len(req.Bcc) != 1 || req.Bcc[0] != "bcc@example.com" {
		t.Errorf("Bcc: got %v", req.Bcc)
	}
	if req.ReplyTo != "reply@example.com" {
		t.Errorf("ReplyTo: got %q", req.ReplyTo)
	}
	if req.Subject != "Resend Subject" {
		t.Errorf("Subject: got %q", req.Subject)
	}
	if req.Text != "Resend body" {
		t.Errorf("Text: got %q", req.Text)
	}
	if req.Html != "" {
		t.Errorf("Html: got %q, want empty", req.Html)
	}
	if got := req.Headers["X-Custom-Header"]; got != "CustomValue" {
		t.Errorf("Headers[X-Custom-Header]: got %q", got)
	}
	if got := req.Headers["Message-ID"]; got != "<abc@mail.example.com>" {
		t.Errorf("Headers[Message-ID]: got %q", got)
	}
}

func TestSend_APIError(t *testing.T) {
	t.Parallel()

	apiErr := errors.New("invalid api key")
	mock := &mockEmails{sendErr: apiErr}
	p := NewWithClient(mock)

	err := p.Send(context.Background(), newMsg(t))
	if !errors.Is(err, apiErr) {
		t.Fatalf("expected wrapped API error, got %v", err)
	}
}

func TestSend_NoFromAddress(t *testing.T) {
	t.Parallel()

	mock := &mockEmails{}
	p := NewWithClient(mock)

	msg := mail.NewMsg()
	if err := msg.To("to@example.com"); err != nil {
		t.Fatalf("To: %v", err)
	}
	msg.SetBodyString(mail.TypeTextPlain, "body")

	if err := p.Send(context.Background(), msg); !errors.Is(err, mail.ErrNoFromAddress) {
		t.Fatalf("expected ErrNoFromAddress, got %v", err)
	}
	if mock.callCount != 0 {
		t.Errorf("call count: got %d, want 0", mock.callCount)
	}
}

func TestSend_MultipleReplyToLogsDropped(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	msg := newMsg(t)
	msg.SetGenHeaderPreformatted(mail.HeaderReplyTo, "<first@example.com>, <second@example.com>")

	mock := &mockEmails{}
	if err := NewWithClient(mock).Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.lastReq.ReplyTo != "first@example.com" {
		t.Errorf("ReplyTo: got %q, want %q", mock.lastReq.ReplyTo, "first@example.com")
	}
	if !strings.Contains(logs.String(), "second@example.com") {
		t.Errorf("expected dropped reply-to address in logs, got %q", logs.String())
	}
}
