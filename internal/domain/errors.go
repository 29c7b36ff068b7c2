package domain

import "errors"

var (
	// ErrValidation indicates the request payload failed validation. Wrapped
	// errors carry the field-level message.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateEmail is returned when registering with an email that already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a malformed, expired or forged session token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden is returned when a user touches a contact they do not own.
	ErrForbidden = errors.New("not authorized")
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable wraps store-level failures that are not the caller's fault.
	ErrStoreUnavailable = errors.New("store unavailable")
)
