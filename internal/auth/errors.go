package auth

import "errors"

var (
	// ErrUnauthenticated covers a missing, malformed, expired or badly signed token,
	// and a token whose subject no longer maps to a user.
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("insufficient permissions")
)
