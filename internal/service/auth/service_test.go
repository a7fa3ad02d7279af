package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/oauth"
	"github.com/cmlabs-hris/hr-attendance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

const testSecret = "test-secret-key-for-jwt"

type mockRevokedTokenRepository struct {
	mock.Mock
}

func (m *mockRevokedTokenRepository) Create(ctx context.Context, token auth.RevokedToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockRevokedTokenRepository) ListActive(ctx context.Context, now time.Time) ([]auth.RevokedToken, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]auth.RevokedToken), args.Error(1)
}

func (m *mockRevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type stubGoogle struct {
	user oauth.GoogleUser
	err  error
}

func (g *stubGoogle) GenerateState() (string, error) { return "state-1", nil }

func (g *stubGoogle) RedirectURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (g *stubGoogle) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &oauth2.Token{AccessToken: "google-token"}, nil
}

func (g *stubGoogle) UserInfo(ctx context.Context, token *oauth2.Token) (oauth.GoogleUser, error) {
	return g.user, nil
}

type fixture struct {
	store   *memory.Store
	revoked *mockRevokedTokenRepository
	jwt     *jwt.JWTService
	google  *stubGoogle
	svc     auth.AuthService

	worker   employee.Employee
	inactive employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	worker := store.SeedEmployee(employee.Employee{Name: "Rina Staff", Email: "rina@example.com", Role: user.RoleEmployee, PasswordHash: string(hash), LeaveBalance: 17})
	inactive := store.SeedEmployee(employee.Employee{Name: "Old Staff", Email: "old@example.com", Role: user.RoleEmployee, PasswordHash: string(hash)})
	inactive.Status = employee.StatusInactive
	require.NoError(t, store.Employees().Update(context.Background(), inactive))

	revoked := &mockRevokedTokenRepository{}
	jwtService := jwt.NewJWTService(testSecret, time.Hour)
	google := &stubGoogle{}

	return &fixture{
		store:    store,
		revoked:  revoked,
		jwt:      jwtService,
		google:   google,
		svc:      NewAuthService(store.Employees(), revoked, jwtService, google),
		worker:   worker,
		inactive: inactive,
	}
}

func (f *fixture) principal() user.Principal {
	return user.Principal{EmployeeID: f.worker.ID, Email: f.worker.Email, Role: f.worker.Role}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success by email", func(t *testing.T) {
		f := newFixture(t)
		resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: " RINA@example.com ", Password: "password123"})
		require.NoError(t, err)

		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Login successful", resp.Message)
		assert.Equal(t, f.worker.ID, resp.User.ID)
		assert.Equal(t, "EMPLOYEE", resp.User.Role)
		assert.Greater(t, resp.ExpiresAt, time.Now().Unix())

		stored, err := f.store.Employees().GetByID(ctx, f.worker.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.LoginCount)
		assert.NotNil(t, stored.LastLoginAt)
	})

	t.Run("username alias", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Login(ctx, auth.LoginRequest{Username: "rina@example.com", Password: "password123"})
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Login(ctx, auth.LoginRequest{Email: "rina@example.com", Password: "nope-nope"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Login(ctx, auth.LoginRequest{Email: "ghost@example.com", Password: "password123"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Login(ctx, auth.LoginRequest{Email: "old@example.com", Password: "password123"})
		assert.ErrorIs(t, err, auth.ErrAccountInactive)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Login(ctx, auth.LoginRequest{})
		assert.Error(t, err)
	})
}

func TestLogoutPersistsRevocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: "rina@example.com", Password: "password123"})
	require.NoError(t, err)
	exp := time.Unix(resp.ExpiresAt, 0)

	f.revoked.On("Create", mock.Anything, mock.MatchedBy(func(rt auth.RevokedToken) bool {
		return rt.TokenHash == jwt.HashToken(resp.Token) && rt.EmployeeID == f.worker.ID && rt.ExpiresAt.Equal(exp)
	})).Return(nil).Once()

	require.NoError(t, f.svc.Logout(ctx, f.principal(), resp.Token, exp))
	assert.True(t, f.jwt.IsTokenRevoked(resp.Token))

	// second logout with the same token is a no-op
	require.NoError(t, f.svc.Logout(ctx, f.principal(), resp.Token, exp))
	f.revoked.AssertExpectations(t)
}

func TestLogoutStoreFailureKeepsTokenValid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.revoked.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := f.svc.Logout(ctx, f.principal(), "some.jwt.token", time.Now().Add(time.Hour))
	assert.Error(t, err)
	assert.False(t, f.jwt.IsTokenRevoked("some.jwt.token"))
}

func TestRestoreAndPurgeRevocations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	future := time.Now().Add(time.Hour)
	f.revoked.On("ListActive", mock.Anything, mock.Anything).Return([]auth.RevokedToken{
		{TokenHash: jwt.HashToken("tok-a"), ExpiresAt: future},
		{TokenHash: jwt.HashToken("tok-b"), ExpiresAt: future},
	}, nil)
	f.revoked.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(3), nil)

	n, err := f.svc.RestoreRevocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, f.jwt.IsTokenRevoked("tok-a"))
	assert.True(t, f.jwt.IsTokenRevoked("tok-b"))

	require.NoError(t, f.svc.PurgeExpiredRevocations(ctx))
	// still unexpired, so kept in memory
	assert.True(t, f.jwt.IsTokenRevoked("tok-a"))
	f.revoked.AssertExpectations(t)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.svc.ChangePassword(ctx, f.principal(), auth.ChangePasswordRequest{CurrentPassword: "wrong-pass", NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, auth.ErrIncorrectPassword)

	err = f.svc.ChangePassword(ctx, f.principal(), auth.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "short"})
	assert.Error(t, err)

	require.NoError(t, f.svc.ChangePassword(ctx, f.principal(), auth.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "brand-new-pass"}))

	stored, err := f.store.Employees().GetByID(ctx, f.worker.ID)
	require.NoError(t, err)
	assert.True(t, stored.PasswordChanged)

	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "rina@example.com", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "rina@example.com", Password: "brand-new-pass"})
	assert.NoError(t, err)
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	me, err := f.svc.Me(context.Background(), f.principal())
	require.NoError(t, err)
	assert.Equal(t, "Rina Staff", me.Name)
	assert.Equal(t, 17, me.LeaveBalance)
}

func TestGoogleLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("login url", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.svc.GoogleLoginURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, "state-1", u.State)
		assert.Contains(t, u.URL, "state=state-1")
	})

	t.Run("existing employee", func(t *testing.T) {
		f := newFixture(t)
		f.google.user = oauth.GoogleUser{Email: "rina@example.com", VerifiedEmail: true}
		resp, err := f.svc.LoginWithGoogle(ctx, "code")
		require.NoError(t, err)
		assert.Equal(t, f.worker.ID, resp.User.ID)
	})

	t.Run("no self registration", func(t *testing.T) {
		f := newFixture(t)
		f.google.user = oauth.GoogleUser{Email: "stranger@example.com", VerifiedEmail: true}
		_, err := f.svc.LoginWithGoogle(ctx, "code")
		assert.ErrorIs(t, err, auth.ErrOAuthAccountNotLinked)
	})

	t.Run("unverified email", func(t *testing.T) {
		f := newFixture(t)
		f.google.user = oauth.GoogleUser{Email: "rina@example.com"}
		_, err := f.svc.LoginWithGoogle(ctx, "code")
		assert.ErrorIs(t, err, auth.ErrOAuthEmailNotVerified)
	})

	t.Run("not configured", func(t *testing.T) {
		svc := NewAuthService(memory.NewStore().Employees(), &mockRevokedTokenRepository{}, jwt.NewJWTService(testSecret, time.Hour), nil)
		_, err := svc.GoogleLoginURL(ctx)
		assert.ErrorIs(t, err, auth.ErrOAuthNotConfigured)
		_, err = svc.LoginWithGoogle(ctx, "code")
		assert.ErrorIs(t, err, auth.ErrOAuthNotConfigured)
	})
}
