// Package stdout implements a Provider that prints messages to standard output.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/shineum/mailcompose/internal/parser"
	"github.com/shineum/mailcompose/internal/provider"
)

// Provider prints messages in a human-readable format.
type Provider struct {
	// writer is the output destination, defaulting to os.Stdout.
	writer io.Writer
}

// New creates a new stdout Provider that writes to os.Stdout.
func New() *Provider {
	return &Provider{writer: os.Stdout}
}

// NewWithWriter creates a new stdout Provider that writes to the given writer.
func NewWithWriter(w io.Writer) *Provider {
	return &Provider{writer: w}
}

// Send renders msg, decodes it and prints a summary.
func (p *Provider) Send(_ context.Context, msg *mail.Msg) error {
	raw, err := provider.Render(msg)
	if err != nil {
		return err
	}
	parsed, err := parser.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to decode rendered message: %w", err)
	}

	var b strings.Builder

	b.WriteString("========================================\n")
	b.WriteString(fmt.Sprintf("Message-ID: %s\n", parsed.MessageID))
	b.WriteString(fmt.Sprintf("From: %s\n", parsed.From))
	b.WriteString(fmt.Sprintf("To: %s\n", strings.Join(parsed.To, ", ")))

	if len(parsed.Cc) > 0 {
		b.WriteString(fmt.Sprintf("Cc: %s\n", strings.Join(parsed.Cc, ", ")))
	}
	// Bcc is not rendered into the message, so read it from the envelope.
	if bcc := provider.Addresses(msg.GetBcc()); len(bcc) > 0 {
		b.WriteString(fmt.Sprintf("Bcc: %s\n", strings.Join(bcc, ", ")))
	}
	if len(parsed.ReplyTo) > 0 {
		b.WriteString(fmt.Sprintf("Reply-To: %s\n", strings.Join(parsed.ReplyTo, ", ")))
	}

	b.WriteString(fmt.Sprintf("Subject: %s\n", parsed.Subject))
	b.WriteString(fmt.Sprintf("Size: %s\n", formatSize(len(raw))))
	b.WriteString("Body:\n")

	body := parsed.TextBody
	if body == "" {
		body = parsed.HTMLBody
	}
	b.WriteString(body + "\n")
	b.WriteString("========================================\n")

	if _, err := fmt.Fprint(p.writer, b.String()); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stdout"
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
