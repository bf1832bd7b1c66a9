package gmail

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// AuthReason classifies credential failures so callers never have to match on
// error text.
type AuthReason int

const (
	// AuthRevoked means the refresh token was rejected (invalid_grant).
	// Terminal: the account must be re-authorized out of band.
	AuthRevoked AuthReason = iota
	// AuthNetwork means the token endpoint could not be reached; the refresh
	// may succeed on a later attempt.
	AuthNetwork
)

// AuthError is returned by credential refresh and service construction.
type AuthError struct {
	Reason AuthReason
	Err    error
}

func (e *AuthError) Error() string {
	switch e.Reason {
	case AuthRevoked:
		return fmt.Sprintf("gmail auth: refresh token revoked or invalid: %v", e.Err)
	default:
		return fmt.Sprintf("gmail auth: token refresh failed: %v", e.Err)
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// classifyRefreshError turns an oauth2 failure into a typed AuthError.
// invalid_grant from the token endpoint means the grant is revoked or expired;
// everything else is treated as a retryable network/endpoint failure.
func classifyRefreshError(err error) *AuthError {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
		return &AuthError{Reason: AuthRevoked, Err: err}
	}
	return &AuthError{Reason: AuthNetwork, Err: err}
}

// isTransient reports whether a Gmail API error is worth retrying. Server-side
// failures (5xx) and plain network errors are transient; any 4xx is not.
func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500
	}
	// No HTTP status at all: connection reset, timeout, DNS failure.
	return true
}

// isNotFound reports whether the remote message vanished.
func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 404
}
