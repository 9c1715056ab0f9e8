package email

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// Sender delivers a built message.
type Sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
	Name() string
}

// BuildMessage validates the Email and materializes it into a new *mail.Msg.
// It succeeds at most once per Email. On failure nothing is stored and the
// Email can be corrected and built again.
func (e *Email) BuildMessage() (*mail.Msg, error) {
	if e.message != nil {
		return nil, ErrAlreadyBuilt
	}
	if e.from == nil {
		return nil, ErrFromRequired
	}
	if len(e.to)+len(e.cc)+len(e.bcc) == 0 {
		return nil, ErrReceiverRequired
	}

	msg, err := e.populate()
	if err != nil {
		return nil, err
	}

	e.message = msg
	slog.Debug("message built",
		"message_id", msg.GetMessageID(),
		"recipients", len(e.to)+len(e.cc)+len(e.bcc),
	)
	return msg, nil
}

// Message returns the built message, or nil before BuildMessage succeeds.
func (e *Email) Message() *mail.Msg {
	return e.message
}

// Built reports whether BuildMessage has succeeded.
func (e *Email) Built() bool {
	return e.message != nil
}

// Send builds the message and hands it to s. It returns the Message-ID.
// Like BuildMessage it can only succeed once.
func (e *Email) Send(ctx context.Context, s Sender) (string, error) {
	msg, err := e.BuildMessage()
	if err != nil {
		return "", err
	}

	if err := s.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to send via %s: %w", s.Name(), err)
	}

	id := msg.GetMessageID()
	slog.Info("message sent",
		"provider", s.Name(),
		"message_id", id,
	)
	return id, nil
}

func (e *Email) populate() (*mail.Msg, error) {
	var opts []mail.MsgOption
	if e.charset != "" {
		opts = append(opts, mail.WithCharset(mail.Charset(e.charset)))
	}
	msg := mail.NewMsg(opts...)

	if err := msg.From(e.from.String()); err != nil {
		return nil, fmt.Errorf("failed to set from address: %w", err)
	}
	if e.bounceAddress != "" {
		if err := msg.EnvelopeFrom(e.bounceAddress); err != nil {
			return nil, fmt.Errorf("failed to set bounce address: %w", err)
		}
	}
	if len(e.to) > 0 {
		if err := msg.To(addressStrings(e.to)...); err != nil {
			return nil, fmt.Errorf("failed to set to addresses: %w", err)
		}
	}
	if len(e.cc) > 0 {
		if err := msg.Cc(addressStrings(e.cc)...); err != nil {
			return nil, fmt.Errorf("failed to set cc addresses: %w", err)
		}
	}
	if len(e.bcc) > 0 {
		if err := msg.Bcc(addressStrings(e.bcc)...); err != nil {
			return nil, fmt.Errorf("failed to set bcc addresses: %w", err)
		}
	}
	if len(e.replyTo) > 0 {
		msg.SetGenHeaderPreformatted(mail.HeaderReplyTo, strings.Join(addressStrings(e.replyTo), ", "))
	}

	if e.subject != "" {
		msg.Subject(e.subject)
	}

	contentType, partOpts := splitContentType(e.contentType)
	msg.SetBodyString(contentType, e.content, partOpts...)

	for name, values := range e.headers {
		// go-mail encodes the slice in place
		msg.SetGenHeader(mail.Header(name), append([]string(nil), values...)...)
	}

	msg.SetDateWithValue(e.SentDate())

	if host := e.HostName(); host != "" {
		msg.SetMessageIDWithValue(uuid.NewString() + "@" + host)
	} else {
		msg.SetMessageID()
	}

	return msg, nil
}

// splitContentType separates the media type from a charset parameter so the
// charset lands on the body part instead of being duplicated.
func splitContentType(raw string) (mail.ContentType, []mail.PartOption) {
	if strings.TrimSpace(raw) == "" {
		return mail.TypeTextPlain, nil
	}

	mediaType, params, err := mime.ParseMediaType(raw)
	if err != nil {
		mediaType, _, _ = strings.Cut(raw, ";")
		mediaType = strings.TrimSpace(mediaType)
		if mediaType == "" {
			mediaType = string(mail.TypeTextPlain)
		}
		slog.Warn("failed to parse content type, using bare media type",
			"content_type", raw,
			"media_type", mediaType,
			"error", err,
		)
		return mail.ContentType(mediaType), nil
	}

	var opts []mail.PartOption
	if cs := params["charset"]; cs != "" {
		opts = append(opts, mail.WithPartCharset(mail.Charset(cs)))
	}
	return mail.ContentType(mediaType), opts
}
