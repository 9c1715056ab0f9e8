// Package resend implements a Provider that sends built messages via the Resend API.
package resend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	resendsdk "github.com/resend/resend-go/v2"
	"github.com/wneessen/go-mail"

	"github.com/shineum/mailcompose/internal/parser"
	"github.com/shineum/mailcompose/internal/provider"
)

// ResendProviderConfig holds the configuration for creating a ResendProvider.
type ResendProviderConfig struct {
	APIKey  string
	Timeout time.Duration
}

// EmailsAPI is the subset of the Resend emails service used here.
type EmailsAPI interface {
	SendWithContext(ctx context.Context, params *resendsdk.SendEmailRequest) (*resendsdk.SendEmailResponse, error)
}

// ResendProvider sends messages via Resend. Resend takes structured fields
// rather than raw MIME, so the rendered message is decoded first.
type ResendProvider struct {
	emails EmailsAPI
}

// New creates a ResendProvider for the given API key.
func New(cfg ResendProviderConfig) *ResendProvider {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	client := resendsdk.NewCustomClient(httpClient, cfg.APIKey)
	return &ResendProvider{emails: client.Emails}
}

// NewWithClient creates a ResendProvider with a custom emails client, used for testing.
func NewWithClient(emails EmailsAPI) *ResendProvider {
	return &ResendProvider{emails: emails}
}

// Send delivers msg through the Resend API.
func (p *ResendProvider) Send(ctx context.Context, msg *mail.Msg) error {
	req, err := buildRequest(msg)
	if err != nil {
		return err
	}

	result, err := p.emails.SendWithContext(ctx, req)
	if err != nil {
		slog.Error("Resend send failed",
			"error", err,
			"to", req.To,
			"subject", req.Subject,
		)
		return fmt.Errorf("Resend send failed: %w", err)
	}

	slog.Info("Email sent via Resend",
		"email_id", result.Id,
		"to", req.To,
		"subject", req.Subject,
	)
	return nil
}

// Name returns the provider name.
func (p *ResendProvider) Name() string {
	return "resend"
}

// buildRequest maps a built message onto a Resend request. Headers starting
// with "X-" and the Message-ID are forwarded; Resend sets the rest itself.
func buildRequest(msg *mail.Msg) (*resendsdk.SendEmailRequest, error) {
	raw, err := provider.Render(msg)
	if err != nil {
		return nil, err
	}
	parsed, err := parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered message: %w", err)
	}

	from := msg.GetFrom()
	if len(from) == 0 {
		return nil, mail.ErrNoFromAddress
	}

	sender := from[0].Address
	if from[0].Name != "" {
		sender = from[0].String()
	}

	req := &resendsdk.SendEmailRequest{
		From:    sender,
		To:      provider.Addresses(msg.GetTo()),
		Cc:      provider.Addresses(msg.GetCc()),
		Bcc:     provider.Addresses(msg.GetBcc()),
		Subject: parsed.Subject,
		Text:    parsed.TextBody,
		Html:    parsed.HTMLBody,
		Headers: make(map[string]string),
	}
	if len(parsed.ReplyTo) > 0 {
		req.ReplyTo = parsed.ReplyTo[0]
	}
	if len(parsed.ReplyTo) > 1 {
		slog.Warn("Resend accepts a single reply-to address, dropping the rest",
			"reply_to", parsed.ReplyTo[0],
			"dropped", parsed.ReplyTo[1:],
		)
	}
	if parsed.MessageID != "" {
		req.Headers["Message-ID"] = parsed.MessageID
	}
	for name, values := range parsed.RawHeaders {
		if strings.HasPrefix(name, "X-") && len(values) > 0 {
			req.Headers[name] = values[0]
		}
	}

	return req, nil
}
