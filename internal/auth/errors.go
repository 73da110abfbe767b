package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email is already registered")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrEmailRequired      = errors.New("email is required")
	ErrNotAdmin           = errors.New("not an administrator")
	ErrAuthModalClosed    = errors.New("auth modal is not open")
)

// IsRejection reports whether err is a user-facing rejection rather than an
// internal failure.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidCredentials, ErrEmailInUse, ErrUsernameRequired,
		ErrPasswordTooShort, ErrEmailRequired, ErrNotAdmin, ErrAuthModalClosed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
