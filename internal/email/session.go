package email

// Session property keys.
const (
	PropMailHost          = "mail.smtp.host"
	PropMailPort          = "mail.smtp.port"
	PropConnectionTimeout = "mail.smtp.connectiontimeout"
	PropTimeout           = "mail.smtp.timeout"
)

// Session carries transport configuration for an Email. It is read-only once
// created; the builder only consults it for the host name.
type Session struct {
	props map[string]string
}

// NewSession creates a Session holding a copy of props.
func NewSession(props map[string]string) *Session {
	copied := make(map[string]string, len(props))
	for k, v := range props {
		copied[k] = v
	}
	return &Session{props: copied}
}

// Property returns the value stored under key, or "" if absent.
func (s *Session) Property(key string) string {
	if s == nil {
		return ""
	}
	return s.props[key]
}

// Host returns the configured mail host.
func (s *Session) Host() string {
	return s.Property(PropMailHost)
}
