package domain

import "errors"

// Kind enumerates the expected failures of auth operations.
type Kind string

const (
	KindDuplicateEmail        Kind = "duplicate_email"
	KindDuplicateUsername     Kind = "duplicate_username"
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindInvalidRefreshToken   Kind = "invalid_refresh_token"
	KindRefreshTokenExpired   Kind = "refresh_token_expired"
	KindInvalidToken          Kind = "invalid_token"
	KindUserNotFound          Kind = "user_not_found"
	KindIncorrectPassword     Kind = "incorrect_password"
	KindMissingRequiredFields Kind = "missing_required_fields"
)

// Error is an expected auth failure with a message safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrDuplicateEmail        = newError(KindDuplicateEmail, "User with this email already exists")
	ErrDuplicateUsername     = newError(KindDuplicateUsername, "Username is already taken")
	ErrInvalidCredentials    = newError(KindInvalidCredentials, "Invalid credentials")
	ErrInvalidRefreshToken   = newError(KindInvalidRefreshToken, "Invalid refresh token")
	ErrRefreshTokenExpired   = newError(KindRefreshTokenExpired, "Refresh token expired")
	ErrInvalidToken          = newError(KindInvalidToken, "Invalid token")
	ErrUserNotFound          = newError(KindUserNotFound, "User not found")
	ErrIncorrectPassword     = newError(KindIncorrectPassword, "Current password is incorrect")
	ErrMissingRequiredFields = newError(KindMissingRequiredFields, "Missing required Google user information")
)

// Repository-level sentinels. These never reach clients directly.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// KindOf reports the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
