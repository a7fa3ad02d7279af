package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/oauth"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	employee.EmployeeRepository
	auth.RevokedTokenRepository
	jwt.Service
	google oauth.GoogleService
	now    func() time.Time
}

// NewAuthService wires login and token revocation. google may be nil when
// Google sign-in is not configured.
func NewAuthService(employeeRepository employee.EmployeeRepository, revokedTokenRepository auth.RevokedTokenRepository, jwtService jwt.Service, google oauth.GoogleService) auth.AuthService {
	return &AuthServiceImpl{
		EmployeeRepository:     employeeRepository,
		RevokedTokenRepository: revokedTokenRepository,
		Service:                jwtService,
		google:                 google,
		now:                    time.Now,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest) (auth.LoginResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	employeeData, err := a.EmployeeRepository.GetByEmail(ctx, loginReq.Identifier())
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to get employee by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employeeData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}

	return a.issue(ctx, employeeData)
}

// issue signs an access token for an authenticated employee and records the login.
func (a *AuthServiceImpl) issue(ctx context.Context, employeeData employee.Employee) (auth.LoginResponse, error) {
	if !employeeData.IsActive() {
		return auth.LoginResponse{}, auth.ErrAccountInactive
	}

	token, expiresAt, err := a.Service.GenerateAccessToken(employeeData.ID, employeeData.Email, employeeData.Role)
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	if err := a.EmployeeRepository.RecordLogin(ctx, employeeData.ID, a.now()); err != nil {
		// the token is still valid; the counter is informational
		slog.Warn("failed to record login", "employee_id", employeeData.ID, "error", err)
	}

	return auth.LoginResponse{
		User:      auth.NewLoginUser(employeeData),
		Token:     token,
		ExpiresAt: expiresAt,
		Message:   "Login successful",
	}, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, actor user.Principal, token string, expiresAt time.Time) error {
	if token == "" {
		return nil
	}
	if a.Service.IsTokenRevoked(token) {
		return nil
	}

	err := a.RevokedTokenRepository.Create(ctx, auth.RevokedToken{
		TokenHash:  jwt.HashToken(token),
		EmployeeID: actor.EmployeeID,
		ExpiresAt:  expiresAt,
		RevokedAt:  a.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to persist revoked token: %w", err)
	}
	a.Service.RevokeToken(token, expiresAt)
	return nil
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, actor user.Principal, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	employeeData, err := a.EmployeeRepository.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employeeData.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrIncorrectPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := a.EmployeeRepository.UpdatePassword(ctx, actor.EmployeeID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, actor user.Principal) (employee.EmployeeResponse, error) {
	employeeData, err := a.EmployeeRepository.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee.NewEmployeeResponse(employeeData), nil
}

// GoogleLoginURL implements auth.AuthService.
func (a *AuthServiceImpl) GoogleLoginURL(ctx context.Context) (auth.GoogleLoginURL, error) {
	if a.google == nil {
		return auth.GoogleLoginURL{}, auth.ErrOAuthNotConfigured
	}
	state, err := a.google.GenerateState()
	if err != nil {
		return auth.GoogleLoginURL{}, err
	}
	return auth.GoogleLoginURL{URL: a.google.RedirectURL(state), State: state}, nil
}

// LoginWithGoogle implements auth.AuthService.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, code string) (auth.LoginResponse, error) {
	if a.google == nil {
		return auth.LoginResponse{}, auth.ErrOAuthNotConfigured
	}

	token, err := a.google.Exchange(ctx, code)
	if err != nil {
		return auth.LoginResponse{}, err
	}
	googleUser, err := a.google.UserInfo(ctx, token)
	if err != nil {
		return auth.LoginResponse{}, err
	}
	if !googleUser.VerifiedEmail {
		return auth.LoginResponse{}, auth.ErrOAuthEmailNotVerified
	}

	employeeData, err := a.EmployeeRepository.GetByEmail(ctx, googleUser.Email)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.LoginResponse{}, auth.ErrOAuthAccountNotLinked
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to get employee by email: %w", err)
	}

	return a.issue(ctx, employeeData)
}

// RestoreRevocations implements auth.AuthService.
func (a *AuthServiceImpl) RestoreRevocations(ctx context.Context) (int, error) {
	tokens, err := a.RevokedTokenRepository.ListActive(ctx, a.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list revoked tokens: %w", err)
	}
	for _, t := range tokens {
		a.Service.RestoreRevoked(t.TokenHash, t.ExpiresAt)
	}
	return len(tokens), nil
}

// PurgeExpiredRevocations implements auth.AuthService.
func (a *AuthServiceImpl) PurgeExpiredRevocations(ctx context.Context) error {
	now := a.now()
	deleted, err := a.RevokedTokenRepository.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to delete expired revoked tokens: %w", err)
	}
	purged := a.Service.PurgeExpired(now)
	slog.Info("purged expired revocations", "deleted_rows", deleted, "purged_memory", purged)
	return nil
}
