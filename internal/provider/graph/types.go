// Package graph implements a Provider that sends built messages via the
// Microsoft Graph sendMail API.
package graph

import (
	"fmt"
	netmail "net/mail"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/shineum/mailcompose/internal/parser"
	"github.com/shineum/mailcompose/internal/provider"
)

// sendMailRequest is the top-level request body for the Graph API sendMail endpoint.
type sendMailRequest struct {
	Message         sendMailMessage `json:"message"`
	SaveToSentItems bool            `json:"saveToSentItems"`
}

// sendMailMessage represents the message portion of a sendMail request.
type sendMailMessage struct {
	Subject                string                  `json:"subject"`
	Body                   messageBody             `json:"body"`
	ToRecipients           []recipient             `json:"toRecipients"`
	CcRecipients           []recipient             `json:"ccRecipients,omitempty"`
	BccRecipients          []recipient             `json:"bccRecipients,omitempty"`
	ReplyTo                []recipient             `json:"replyTo,omitempty"`
	InternetMessageID      string                  `json:"internetMessageId,omitempty"`
	InternetMessageHeaders []internetMessageHeader `json:"internetMessageHeaders,omitempty"`
}

// messageBody represents the body of an email message.
type messageBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// recipient represents an email recipient.
type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

// emailAddress represents an email address in a Graph API request.
type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// internetMessageHeader is a custom header. Graph only accepts names starting with "X-".
type internetMessageHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// graphErrorResponse represents an error response from the Graph API.
type graphErrorResponse struct {
	Error graphError `json:"error"`
}

// graphError represents the error detail in a Graph API error response.
type graphError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// buildSendMailRequest converts a built message into a Graph API sendMail
// request body. Bcc recipients come from the message envelope since they are
// never rendered.
func buildSendMailRequest(msg *mail.Msg) (*sendMailRequest, error) {
	raw, err := provider.Render(msg)
	if err != nil {
		return nil, err
	}
	parsed, err := parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered message: %w", err)
	}

	body := messageBody{
		ContentType: "text",
		Content:     parsed.TextBody,
	}
	if parsed.HTMLBody != "" {
		body.ContentType = "html"
		body.Content = parsed.HTMLBody
	}

	replyTo := make([]recipient, 0, len(parsed.ReplyTo))
	for _, addr := range parsed.ReplyTo {
		replyTo = append(replyTo, recipient{EmailAddress: emailAddress{Address: addr}})
	}

	var headers []internetMessageHeader
	for name, values := range parsed.RawHeaders {
		if strings.HasPrefix(name, "X-") && len(values) > 0 {
			headers = append(headers, internetMessageHeader{Name: name, Value: values[0]})
		}
	}

	return &sendMailRequest{
		Message: sendMailMessage{
			Subject:                parsed.Subject,
			Body:                   body,
			ToRecipients:           recipients(msg.GetTo()),
			CcRecipients:           recipients(msg.GetCc()),
			BccRecipients:          recipients(msg.GetBcc()),
			ReplyTo:                replyTo,
			InternetMessageID:      parsed.MessageID,
			InternetMessageHeaders: headers,
		},
		SaveToSentItems: true,
	}, nil
}

func recipients(list []*netmail.Address) []recipient {
	out := make([]recipient, 0, len(list))
	for _, a := range list {
		out = append(out, recipient{EmailAddress: emailAddress{Address: a.Address, Name: a.Name}})
	}
	return out
}
