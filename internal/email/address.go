package email

import (
	"errors"
	netmail "net/mail"
	"strings"
)

// parseAddress validates a single address and attaches the optional display name.
// The address must have the form local@domain with both parts non-empty.
func parseAddress(address, name string) (*netmail.Address, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, &AddressError{Address: address, Err: errors.New("address is empty")}
	}

	parsed, err := netmail.ParseAddress(trimmed)
	if err != nil {
		return nil, &AddressError{Address: address, Err: err}
	}

	at := strings.LastIndex(parsed.Address, "@")
	if at <= 0 || at == len(parsed.Address)-1 {
		return nil, &AddressError{Address: address, Err: errors.New("missing local part or domain")}
	}

	if name != "" {
		parsed.Name = name
	}
	return parsed, nil
}

// parseAddresses validates every address before returning any of them, so a
// single bad entry leaves the caller's list untouched.
func parseAddresses(addresses []string) ([]*netmail.Address, error) {
	result := make([]*netmail.Address, 0, len(addresses))
	for _, a := range addresses {
		parsed, err := parseAddress(a, "")
		if err != nil {
			return nil, err
		}
		result = append(result, parsed)
	}
	return result, nil
}

// addressStrings formats addresses for the message object, keeping display names.
func addressStrings(addrs []*netmail.Address) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.String())
	}
	return out
}
