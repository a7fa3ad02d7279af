package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

const oauthStateCookie = "state"

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService  auth.AuthService
	frontendURL  string
	callbackPath string
	secureCookie bool
}

// NewAuthHandler builds the auth endpoints. callbackPath scopes the OAuth
// state cookie to the Google callback route.
func NewAuthHandler(authService auth.AuthService, frontendURL, callbackPath string, secureCookie bool) AuthHandler {
	return &AuthHandlerImpl{
		authService:  authService,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		callbackPath: callbackPath,
		secureCookie: secureCookie,
	}
}

// Login implements AuthHandler. JSON bodies get the login response as a
// bare object; form bodies get the OAuth2 password-grant token shape.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest
	form := strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")

	if form {
		if err := r.ParseForm(); err != nil {
			slog.Error("Login form parse error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
		loginReq.Username = r.PostFormValue("username")
		loginReq.Email = r.PostFormValue("email")
		loginReq.Password = r.PostFormValue("password")
	} else if !decodeJSON(w, r, "Login", &loginReq) {
		return
	}

	loginResp, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.Warn("Login failed", "error", err)
		response.HandleError(w, err)
		return
	}

	if form {
		response.JSON(w, http.StatusOK, auth.OAuthTokenResponse{
			AccessToken: loginResp.Token,
			TokenType:   "bearer",
			ExpiresIn:   loginResp.ExpiresAt - time.Now().Unix(),
		})
		return
	}
	slog.Info("User logged in successfully", "employee_id", loginResp.User.ID)
	response.JSON(w, http.StatusOK, loginResp)
}

// LoginWithGoogle implements AuthHandler.
func (a *AuthHandlerImpl) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	loginURL, err := a.authService.GoogleLoginURL(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    loginURL.State,
		Path:     a.callbackPath,
		Expires:  time.Now().Add(5 * time.Minute),
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, loginURL.URL, http.StatusTemporaryRedirect)
}

// OAuthCallbackGoogle implements AuthHandler.
func (a *AuthHandlerImpl) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	redirectWithError := func(errorMsg string) {
		redirectURL := fmt.Sprintf("%s/auth/callback/google?error=%s", a.frontendURL, url.QueryEscape(errorMsg))
		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}

	if errorValue := r.URL.Query().Get("error"); errorValue != "" {
		slog.Error("Error in OAuth callback", "error", errorValue)
		redirectWithError(errorValue)
		return
	}

	stateReq, err := r.Cookie(oauthStateCookie)
	if err != nil || stateReq.Value == "" || stateReq.Value != r.URL.Query().Get("state") {
		slog.Error("OAuth state check failed", "error", auth.ErrOAuthStateMismatch)
		redirectWithError("state_mismatch")
		return
	}
	// the state is single use
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: a.callbackPath, Expires: time.Unix(0, 0), HttpOnly: true})

	code := r.URL.Query().Get("code")
	if code == "" {
		redirectWithError("code_empty")
		return
	}

	loginResp, err := a.authService.LoginWithGoogle(r.Context(), code)
	if err != nil {
		slog.Error("Failed to login with Google", "error", err)
		switch {
		case errors.Is(err, auth.ErrOAuthAccountNotLinked):
			redirectWithError("account_not_linked")
		case errors.Is(err, auth.ErrOAuthEmailNotVerified):
			redirectWithError("email_not_verified")
		case errors.Is(err, auth.ErrAccountInactive):
			redirectWithError("account_inactive")
		default:
			redirectWithError("login_failed")
		}
		return
	}

	slog.Info("User logged in successfully via Google OAuth", "employee_id", loginResp.User.ID)
	redirectURL := fmt.Sprintf("%s/auth/callback/google?access_token=%s&expires_at=%d",
		a.frontendURL,
		url.QueryEscape(loginResp.Token),
		loginResp.ExpiresAt,
	)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	if token, _, err := jwtauth.FromContext(r.Context()); err == nil && token != nil && !token.Expiration().IsZero() {
		expiresAt = token.Expiration()
	}

	if err := a.authService.Logout(r.Context(), actor, jwtauth.TokenFromHeader(r), expiresAt); err != nil {
		slog.Error("Logout service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Logged out successfully", nil)
}

// ChangePassword implements AuthHandler.
func (a *AuthHandlerImpl) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req auth.ChangePasswordRequest
	if !decodeJSON(w, r, "ChangePassword", &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := a.authService.ChangePassword(r.Context(), actor, req); err != nil {
		slog.Error("ChangePassword service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Password changed successfully", nil)
}

// Me implements AuthHandler.
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	me, err := a.authService.Me(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, me)
}
