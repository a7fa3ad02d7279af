package auth

import (
	"strings"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

// LoginRequest accepts either "email" or "username"; both carry the email.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Identifier returns the normalized login email.
func (r *LoginRequest) Identifier() string {
	id := r.Email
	if validator.IsEmpty(id) {
		id = r.Username
	}
	return strings.ToLower(strings.TrimSpace(id))
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Identifier() == "" {
		errs.Add("email", "email is required")
	}
	if r.Password == "" {
		errs.Add("password", "password is required")
	}

	return errs.OrNil()
}

// LoginUser is the user summary embedded in the login response.
type LoginUser struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	Department   string  `json:"department"`
	Designation  string  `json:"designation"`
	LeaveBalance int     `json:"leaveBalance"`
	Status       string  `json:"status"`
	ReportingTo  *string `json:"reportingTo"`
}

func NewLoginUser(e employee.Employee) LoginUser {
	return LoginUser{
		ID:           e.ID,
		Name:         e.Name,
		Email:        e.Email,
		Role:         strings.ToUpper(string(e.Role)),
		Department:   e.Department,
		Designation:  e.Designation,
		LeaveBalance: e.LeaveBalance,
		Status:       string(e.Status),
		ReportingTo:  e.ManagerID,
	}
}

// LoginResponse is returned as a bare JSON object, not wrapped in the envelope.
type LoginResponse struct {
	User      LoginUser `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt int64     `json:"expiresAt"`
	Message   string    `json:"message"`
}

// OAuthTokenResponse is the OAuth2 password-grant shape for form logins.
type OAuthTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CurrentPassword == "" {
		errs.Add("currentPassword", "current password is required")
	}
	if validator.IsEmpty(r.NewPassword) {
		errs.Add("newPassword", "new password is required")
	} else if len(r.NewPassword) < 8 {
		errs.Add("newPassword", "new password must be at least 8 characters")
	} else if len(r.NewPassword) > 72 {
		errs.Add("newPassword", "new password must be at most 72 bytes")
	}
	if r.CurrentPassword != "" && r.CurrentPassword == r.NewPassword {
		errs.Add("newPassword", "new password must differ from the current one")
	}

	return errs.OrNil()
}

// GoogleLoginURL is returned when starting the Google sign-in flow.
type GoogleLoginURL struct {
	URL   string `json:"url"`
	State string `json:"-"`
}
