package user

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to structured errors so host applications can map them
// to user-facing messages without string matching.
const (
	TextCodeIdentityNotFound = "IDENTITY_NOT_FOUND"
	TextCodeTokenNotFound    = "TOKEN_NOT_FOUND_OR_EXPIRED"
	TextCodeInvalidCreds     = "INVALID_CREDENTIALS"
	TextCodeEmptyPassword    = "EMPTY_PASSWORD"
	TextCodeNotSupported     = "NOT_SUPPORTED"
	TextCodeSessionExpired   = "SESSION_EXPIRED"
	TextCodeSessionMalformed = "SESSION_MALFORMED"
)

// ErrIdentityNotFound is returned when an identity lookup finds no active user
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrTokenNotFound is returned for confirmation or reset codes that are absent
// or expired. Callers cannot distinguish the two cases; render a generic
// "invalid or expired" message.
var ErrTokenNotFound = goerrors.New("token not found or expired", goerrors.CategoryNotFound).
	WithTextCode(TextCodeTokenNotFound)

// ErrMismatchedHashAndPassword is the credential verification failure
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty cleartext passwords before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrNotSupported signals an operation this module deliberately does not
// implement, e.g. access-token identity resolution.
var ErrNotSupported = goerrors.New("operation not supported", goerrors.CategoryMethodNotAllowed).
	WithTextCode(TextCodeNotSupported)

// ErrSessionExpired is returned when a session token is past its expiry
var ErrSessionExpired = goerrors.New("session token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionExpired)

// ErrSessionMalformed is returned when a session token cannot be parsed
var ErrSessionMalformed = goerrors.New("session token malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionMalformed)

// IsNotFound reports whether err represents an absent (or expired) record
func IsNotFound(err error) bool {
	return goerrors.IsNotFound(err)
}
