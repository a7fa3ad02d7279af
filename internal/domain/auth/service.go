package auth

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	// Logout revokes the presented token until it would have expired.
	Logout(ctx context.Context, actor user.Principal, token string, expiresAt time.Time) error
	ChangePassword(ctx context.Context, actor user.Principal, req ChangePasswordRequest) error
	Me(ctx context.Context, actor user.Principal) (employee.EmployeeResponse, error)

	GoogleLoginURL(ctx context.Context) (GoogleLoginURL, error)
	// LoginWithGoogle signs in an existing employee; it never creates accounts.
	LoginWithGoogle(ctx context.Context, code string) (LoginResponse, error)

	// RestoreRevocations loads persisted revocations into memory at startup.
	RestoreRevocations(ctx context.Context) (int, error)
	PurgeExpiredRevocations(ctx context.Context) error
}
