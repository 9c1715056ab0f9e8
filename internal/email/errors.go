package email

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is wrapped by every AddressError.
	ErrInvalidAddress = errors.New("invalid email address")

	// ErrInvalidArgument is returned when a header name is empty. Every
	// HeaderNameError also matches it.
	ErrInvalidArgument = errors.New("name can not be null or empty")

	// ErrEmptyAddressList is returned when a list setter receives no addresses.
	ErrEmptyAddressList = errors.New("address list provided was invalid")

	// ErrFromRequired is returned by BuildMessage when no from address is set.
	ErrFromRequired = errors.New("From address required")

	// ErrReceiverRequired is returned by BuildMessage when to, cc and bcc are all empty.
	ErrReceiverRequired = errors.New("At least one receiver address required")

	// ErrAlreadyBuilt is returned when BuildMessage is called on a built Email.
	ErrAlreadyBuilt = errors.New("the message has already been built")
)

// AddressError reports an address that failed validation.
type AddressError struct {
	Address string
	Err     error
}

func (e *AddressError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", ErrInvalidAddress, e.Address, e.Err)
	}
	return fmt.Sprintf("%s %q", ErrInvalidAddress, e.Address)
}

// Unwrap lets errors.Is match both ErrInvalidAddress and the parse error.
func (e *AddressError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidAddress}
	}
	return []error{ErrInvalidAddress, e.Err}
}

// HeaderNameError reports a header name that can not be stored.
type HeaderNameError struct {
	Name   string
	Reason string
}

func (e *HeaderNameError) Error() string {
	return fmt.Sprintf("invalid header name %q: %s", e.Name, e.Reason)
}

func (e *HeaderNameError) Unwrap() error {
	return ErrInvalidArgument
}
