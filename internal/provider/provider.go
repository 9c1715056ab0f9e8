// Package provider defines the interface for delivery backends that accept
// built messages.
package provider

import (
	"bytes"
	"context"
	"fmt"
	netmail "net/mail"

	"github.com/wneessen/go-mail"
)

// Provider is the interface that delivery backends must implement.
// Each provider hands a built message to the target service (stdout, AWS SES,
// Resend). Providers never modify the message.
type Provider interface {
	// Send delivers a built message through this provider.
	Send(ctx context.Context, msg *mail.Msg) error

	// Name returns the human-readable name of this provider.
	Name() string
}

// Render serializes msg into its RFC 5322 wire form.
func Render(msg *mail.Msg) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("message is nil")
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render message: %w", err)
	}
	return buf.Bytes(), nil
}

// Addresses returns the bare addresses of list, dropping display names.
func Addresses(list []*netmail.Address) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Address)
	}
	return out
}
