package auth

import "errors"

var (
	ErrInvalidCredentials    = errors.New("Invalid credentials")
	ErrAccountInactive       = errors.New("account is inactive")
	ErrIncorrectPassword     = errors.New("Current password is incorrect")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrOAuthNotConfigured    = errors.New("Google sign-in is not configured")
	ErrOAuthStateMismatch    = errors.New("invalid oauth state")
	ErrOAuthEmailNotVerified = errors.New("Google account email is not verified")
	ErrOAuthAccountNotLinked = errors.New("no employee account exists for this Google email")
)
