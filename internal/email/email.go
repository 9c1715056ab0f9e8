// Package email provides a builder that composes outbound messages on top of
// the go-mail message model. An Email accumulates recipients, headers, subject
// and content, then materializes exactly once into a *mail.Msg.
package email

import (
	netmail "net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// DefaultSocketTimeout is used for both socket timeouts until they are set.
const DefaultSocketTimeout = 60 * time.Second

// Email collects the parts of a message before it is built.
// It is not safe for concurrent use.
type Email struct {
	from          *netmail.Address
	to            []*netmail.Address
	cc            []*netmail.Address
	bcc           []*netmail.Address
	replyTo       []*netmail.Address
	bounceAddress string

	headers     map[string][]string
	subject     string
	content     string
	contentType string
	charset     string

	hostName string
	sentDate time.Time
	session  *Session

	socketConnectionTimeout time.Duration
	socketTimeout           time.Duration

	// message is nil until BuildMessage succeeds; a non-nil value means built.
	message *mail.Msg
}

// New returns an empty Email with default timeouts.
func New() *Email {
	return &Email{
		headers:                 make(map[string][]string),
		socketConnectionTimeout: DefaultSocketTimeout,
		socketTimeout:           DefaultSocketTimeout,
	}
}

// SetFrom sets the from address.
func (e *Email) SetFrom(address string) (*Email, error) {
	return e.SetFromName(address, "")
}

// SetFromName sets the from address with a display name.
func (e *Email) SetFromName(address, name string) (*Email, error) {
	addr, err := parseAddress(address, name)
	if err != nil {
		return e, err
	}
	e.from = addr
	return e, nil
}

// FromAddress returns the from address, or nil if none is set.
func (e *Email) FromAddress() *netmail.Address {
	return e.from
}

// AddTo appends one or more addresses to the To list.
func (e *Email) AddTo(addresses ...string) (*Email, error) {
	return e.appendAll(&e.to, addresses)
}

// AddToName appends a single To address with a display name.
func (e *Email) AddToName(address, name string) (*Email, error) {
	return e.appendOne(&e.to, address, name)
}

// AddCc appends one or more addresses to the Cc list.
func (e *Email) AddCc(addresses ...string) (*Email, error) {
	return e.appendAll(&e.cc, addresses)
}

// AddCcName appends a single Cc address with a display name.
func (e *Email) AddCcName(address, name string) (*Email, error) {
	return e.appendOne(&e.cc, address, name)
}

// AddBcc appends one or more addresses to the Bcc list.
func (e *Email) AddBcc(addresses ...string) (*Email, error) {
	return e.appendAll(&e.bcc, addresses)
}

// AddBccName appends a single Bcc address with a display name.
func (e *Email) AddBccName(address, name string) (*Email, error) {
	return e.appendOne(&e.bcc, address, name)
}

// AddReplyTo appends one or more addresses to the Reply-To list.
func (e *Email) AddReplyTo(addresses ...string) (*Email, error) {
	return e.appendAll(&e.replyTo, addresses)
}

// AddReplyToName appends a single Reply-To address with a display name.
func (e *Email) AddReplyToName(address, name string) (*Email, error) {
	return e.appendOne(&e.replyTo, address, name)
}

// SetTo replaces the To list.
func (e *Email) SetTo(addresses ...string) (*Email, error) {
	return e.replaceAll(&e.to, addresses)
}

// SetCc replaces the Cc list.
func (e *Email) SetCc(addresses ...string) (*Email, error) {
	return e.replaceAll(&e.cc, addresses)
}

// SetBcc replaces the Bcc list.
func (e *Email) SetBcc(addresses ...string) (*Email, error) {
	return e.replaceAll(&e.bcc, addresses)
}

// SetReplyTo replaces the Reply-To list.
func (e *Email) SetReplyTo(addresses ...string) (*Email, error) {
	return e.replaceAll(&e.replyTo, addresses)
}

// ToAddresses returns a copy of the To list.
func (e *Email) ToAddresses() []*netmail.Address { return cloneList(e.to) }

// CcAddresses returns a copy of the Cc list.
func (e *Email) CcAddresses() []*netmail.Address { return cloneList(e.cc) }

// BccAddresses returns a copy of the Bcc list.
func (e *Email) BccAddresses() []*netmail.Address { return cloneList(e.bcc) }

// ReplyToAddresses returns a copy of the Reply-To list.
func (e *Email) ReplyToAddresses() []*netmail.Address { return cloneList(e.replyTo) }

// SetBounceAddress sets the envelope sender used for delivery status notifications.
// An empty address clears it.
func (e *Email) SetBounceAddress(address string) (*Email, error) {
	if address == "" {
		e.bounceAddress = ""
		return e, nil
	}
	addr, err := parseAddress(address, "")
	if err != nil {
		return e, err
	}
	e.bounceAddress = addr.Address
	return e, nil
}

// BounceAddress returns the envelope sender, or "" if unset.
func (e *Email) BounceAddress() string {
	return e.bounceAddress
}

// AddHeader stores value under name, replacing any previous values.
// Names owned by dedicated setters (From, To, Subject, ...) are rejected.
func (e *Email) AddHeader(name, value string) error {
	if err := checkHeaderName(name); err != nil {
		return err
	}
	e.headers[name] = []string{value}
	return nil
}

// AppendHeader adds value to the values already stored under name.
func (e *Email) AppendHeader(name, value string) error {
	if err := checkHeaderName(name); err != nil {
		return err
	}
	e.headers[name] = append(e.headers[name], value)
	return nil
}

// SetHeaders replaces all headers. Nothing is changed if any name is invalid.
func (e *Email) SetHeaders(headers map[string]string) error {
	next := make(map[string][]string, len(headers))
	for name, value := range headers {
		if err := checkHeaderName(name); err != nil {
			return err
		}
		next[name] = []string{value}
	}
	e.headers = next
	return nil
}

// reservedHeaders are written by BuildMessage from builder fields.
var reservedHeaders = map[string]bool{
	"From":       true,
	"Sender":     true,
	"To":         true,
	"Cc":         true,
	"Bcc":        true,
	"Reply-To":   true,
	"Subject":    true,
	"Date":       true,
	"Message-Id": true,
}

// checkHeaderName accepts only RFC 5322 field names: printable ASCII
// without spaces or colons.
func checkHeaderName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidArgument
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c < 33 || c > 126 || c == ':' {
			return &HeaderNameError{Name: name, Reason: "must be printable ASCII without spaces or colons"}
		}
	}
	if reservedHeaders[textproto.CanonicalMIMEHeaderKey(name)] {
		return &HeaderNameError{Name: name, Reason: "set by the builder"}
	}
	return nil
}

// Headers returns a copy of the stored headers.
func (e *Email) Headers() map[string][]string {
	out := make(map[string][]string, len(e.headers))
	for name, values := range e.headers {
		out[name] = append([]string(nil), values...)
	}
	return out
}

// Header returns the first value stored under name.
func (e *Email) Header(name string) string {
	if values := e.headers[name]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// SetSubject sets the subject line.
func (e *Email) SetSubject(subject string) *Email {
	e.subject = subject
	return e
}

// Subject returns the subject line.
func (e *Email) Subject() string {
	return e.subject
}

// SetContent sets the body and its MIME content type, e.g. "text/html; charset=UTF-8".
func (e *Email) SetContent(body, contentType string) *Email {
	e.content = body
	e.contentType = contentType
	return e
}

// Content returns the body and content type.
func (e *Email) Content() (body, contentType string) {
	return e.content, e.contentType
}

// SetCharset sets the message charset. An empty value restores the go-mail default.
func (e *Email) SetCharset(charset string) *Email {
	e.charset = charset
	return e
}

// Charset returns the configured charset, or "" for the default.
func (e *Email) Charset() string {
	return e.charset
}

// SetHostName overrides the host name taken from the session.
func (e *Email) SetHostName(name string) *Email {
	e.hostName = name
	return e
}

// HostName returns the explicit host name if set, otherwise the session host,
// otherwise "".
func (e *Email) HostName() string {
	if e.hostName != "" {
		return e.hostName
	}
	return e.session.Host()
}

// SetMailSession attaches the session used for host lookups.
func (e *Email) SetMailSession(s *Session) *Email {
	e.session = s
	return e
}

// MailSession returns the attached session, which may be nil.
func (e *Email) MailSession() *Session {
	return e.session
}

// SetSentDate sets the Date header value. The zero time clears it.
func (e *Email) SetSentDate(t time.Time) *Email {
	e.sentDate = t
	return e
}

// SentDate returns the explicit sent date, or the current time when unset.
// The current time is not stored, so each call while unset reads the clock.
func (e *Email) SentDate() time.Time {
	if e.sentDate.IsZero() {
		return time.Now()
	}
	return e.sentDate
}

// SetSocketConnectionTimeout sets the connect timeout handed to senders.
func (e *Email) SetSocketConnectionTimeout(d time.Duration) *Email {
	e.socketConnectionTimeout = d
	return e
}

// SocketConnectionTimeout returns the connect timeout, 60s by default.
func (e *Email) SocketConnectionTimeout() time.Duration {
	return e.socketConnectionTimeout
}

// SetSocketTimeout sets the read/write timeout handed to senders.
func (e *Email) SetSocketTimeout(d time.Duration) *Email {
	e.socketTimeout = d
	return e
}

// SocketTimeout returns the read/write timeout, 60s by default.
func (e *Email) SocketTimeout() time.Duration {
	return e.socketTimeout
}

func (e *Email) appendOne(list *[]*netmail.Address, address, name string) (*Email, error) {
	addr, err := parseAddress(address, name)
	if err != nil {
		return e, err
	}
	*list = append(*list, addr)
	return e, nil
}

func (e *Email) appendAll(list *[]*netmail.Address, addresses []string) (*Email, error) {
	if len(addresses) == 0 {
		return e, ErrEmptyAddressList
	}
	parsed, err := parseAddresses(addresses)
	if err != nil {
		return e, err
	}
	*list = append(*list, parsed...)
	return e, nil
}

func (e *Email) replaceAll(list *[]*netmail.Address, addresses []string) (*Email, error) {
	if len(addresses) == 0 {
		return e, ErrEmptyAddressList
	}
	parsed, err := parseAddresses(addresses)
	if err != nil {
		return e, err
	}
	*list = parsed
	return e, nil
}

func cloneList(list []*netmail.Address) []*netmail.Address {
	out := make([]*netmail.Address, 0, len(list))
	for _, a := range list {
		c := *a
		out = append(out, &c)
	}
	return out
}
