package googlecal

import (
	"errors"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

var (
	ErrNotConfigured     = errors.New("google calendar integration is not configured")
	ErrInvalidState      = errors.New("invalid or expired state token")
	ErrStateMismatch     = errors.New("state token was issued to another user")
	ErrExchangeFailed    = errors.New("authorization code exchange failed")
	ErrNoRefreshToken    = errors.New("provider did not return a refresh token")
	ErrNotConnected      = errors.New("google calendar is not connected")
	ErrDecryptFailed     = errors.New("stored credentials could not be decrypted")
	ErrAccessRevoked     = errors.New("google calendar access was revoked")
	ErrInvalidParameters = errors.New("invalid calendar request parameters")
	ErrUpstreamFailure   = errors.New("google calendar request failed")
	ErrInvalidQuery      = errors.New("invalid event query")
)

// classifyProviderError maps a calendar API failure to one of the errors
// above. Anything unrecognised is an upstream failure.
func classifyProviderError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAccessRevoked
		case http.StatusBadRequest:
			return ErrInvalidParameters
		}
		return ErrUpstreamFailure
	}

	// Refresh token rejected at the token endpoint (invalid_grant).
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		switch retrieveErr.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return ErrAccessRevoked
		}
	}

	return ErrUpstreamFailure
}
