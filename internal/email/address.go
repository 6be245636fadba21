package email

import (
	"errors"
	"strings"
)

var (
	ErrMissingAddress = errors.New("email address is required")
	ErrInvalidAddress = errors.New("invalid email address")
)

// ValidAddress is a cheap sanity check before handing an address to SMTP.
func ValidAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrMissingAddress
	}

	// Must contain "@" and not be the first or last character
	at := strings.LastIndex(address, "@")
	if at < 1 || at == len(address)-1 || strings.ContainsAny(address, " \t\r\n") {
		return ErrInvalidAddress
	}
	return nil
}
