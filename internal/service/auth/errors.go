package auth

import "errors"

// Sentinel errors returned by token validation. The middleware maps
// these to 401 responses; everything else in this package wraps one of
// them so callers only ever need errors.Is.
var (
	// ErrInvalidToken covers malformed tokens, bad signatures, and
	// claims that fail structural checks (missing or nil user ID).
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned when the token's expiry, adjusted
	// for the allowed clock skew, has passed.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned for tokens whose nbf claim is
	// still in the future beyond the allowed clock skew.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken is returned when a request reaches a protected
	// route without a bearer token.
	ErrMissingToken = errors.New("authentication token is missing")
)
