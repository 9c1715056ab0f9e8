package parser

import (
	"strings"
	"testing"
	"time"
)

func TestParsePlainTextEmail(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: Sender <sender@example.com>",
		"To: recipient@example.com",
		"Reply-To: reply@example.com",
		"Subject: Test Subject",
		"Message-Id: <test123@example.com>",
		"Date: Sun, 01 Jan 2023 00:00:00 +0000",
		"Content-Type: text/plain",
		"",
		"Hello, this is a plain text email.",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.From != "sender@example.com" {
		t.Errorf("From: got %q, want %q", msg.From, "sender@example.com")
	}
	if len(msg.To) != 1 || msg.To[0] != "recipient@example.com" {
		t.Errorf("To: got %v, want [recipient@example.com]", msg.To)
	}
	if len(msg.ReplyTo) != 1 || msg.ReplyTo[0] != "reply@example.com" {
		t.Errorf("ReplyTo: got %v, want [reply@example.com]", msg.ReplyTo)
	}
	if msg.Subject != "Test Subject" {
		t.Errorf("Subject: got %q, want %q", msg.Subject, "Test Subject")
	}
	if msg.MessageID != "<test123@example.com>" {
		t.Errorf("MessageID: got %q, want %q", msg.MessageID, "<test123@example.com>")
	}
	if want := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC); !msg.Date.Equal(want) {
		t.Errorf("Date: got %v, want %v", msg.Date, want)
	}
	if msg.TextBody != "Hello, this is a plain text email." {
		t.Errorf("TextBody: got %q, want %q", msg.TextBody, "Hello, this is a plain text email.")
	}
	if msg.HTMLBody != "" {
		t.Errorf("HTMLBody: got %q, want empty", msg.HTMLBody)
	}
}

func TestParseQuotedPrintableBody(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Subject: QP",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Transfer-Encoding: quoted-printable",
		"",
		"Gr=C3=BC=C3=9Fe, a long line that is soft=",
		" wrapped",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "Grüße, a long line that is soft wrapped"; msg.TextBody != want {
		t.Errorf("TextBody: got %q, want %q", msg.TextBody, want)
	}
}

func TestParseEncodedSubject(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Subject: =?UTF-8?q?Gr=C3=BC=C3=9Fe?=",
		"",
		"body",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Subject != "Grüße" {
		t.Errorf("Subject: got %q, want %q", msg.Subject, "Grüße")
	}
}

func TestParseHTMLBody(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Content-Type: text/html; charset=UTF-8",
		"",
		"<p>Hello</p>",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.HTMLBody != "<p>Hello</p>" {
		t.Errorf("HTMLBody: got %q, want %q", msg.HTMLBody, "<p>Hello</p>")
	}
	if msg.TextBody != "" {
		t.Errorf("TextBody: got %q, want empty", msg.TextBody)
	}
}

func TestParseMultipartTextAndHTML(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: sender@example.com",
		"To: alice@example.com, bob@example.com",
		"Cc: carol@example.com",
		"Subject: Multipart Test",
		"Content-Type: multipart/alternative; boundary=boundary123",
		"",
		"--boundary123",
		"Content-Type: text/plain",
		"Content-Transfer-Encoding: quoted-printable",
		"",
		"Plain text=20body",
		"--boundary123",
		"Content-Type: text/html",
		"Content-Transfer-Encoding: base64",
		"",
		"PHA+SFRNTCBib2R5PC9wPg==",
		"--boundary123--",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msg.To) != 2 {
		t.Fatalf("To: got %d recipients, want 2", len(msg.To))
	}
	if msg.To[0] != "alice@example.com" || msg.To[1] != "bob@example.com" {
		t.Errorf("To: got %v", msg.To)
	}
	if len(msg.Cc) != 1 || msg.Cc[0] != "carol@example.com" {
		t.Errorf("Cc: got %v, want [carol@example.com]", msg.Cc)
	}
	if msg.TextBody != "Plain text body" {
		t.Errorf("TextBody: got %q, want %q", msg.TextBody, "Plain text body")
	}
	if msg.HTMLBody != "<p>HTML body</p>" {
		t.Errorf("HTMLBody: got %q, want %q", msg.HTMLBody, "<p>HTML body</p>")
	}
}

func TestParseMalformedMIME(t *testing.T) {
	t.Parallel()

	t.Run("completely invalid message", func(t *testing.T) {
		t.Parallel()
		raw := []byte("not a valid email at all\x00\x01\x02")
		if _, err := Parse(raw); err == nil {
			t.Error("expected error for invalid message, got nil")
		}
	})

	t.Run("multipart without boundary", func(t *testing.T) {
		t.Parallel()
		raw := []byte(strings.Join([]string{
			"From: sender@example.com",
			"Content-Type: multipart/mixed",
			"",
			"body",
		}, "\r\n"))
		if _, err := Parse(raw); err == nil {
			t.Error("expected error for missing boundary, got nil")
		}
	})

	t.Run("unparseable content type falls back to text", func(t *testing.T) {
		t.Parallel()
		raw := []byte(strings.Join([]string{
			"From: sender@example.com",
			"Content-Type: ;;;",
			"",
			"fallback body",
		}, "\r\n"))
		msg, err := Parse(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.TextBody != "fallback body" {
			t.Errorf("TextBody: got %q, want %q", msg.TextBody, "fallback body")
		}
	})
}

func TestParseAddressList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "a@example.com", want: []string{"a@example.com"}},
		{name: "named", raw: `"Alice" <a@example.com>, b@example.com`, want: []string{"a@example.com", "b@example.com"}},
		{name: "unparseable falls back to split", raw: "a@, b@", want: []string{"a@", "b@"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseAddressList(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("parseAddressList(%q): got %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseAddressList(%q)[%d]: got %q, want %q", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}
