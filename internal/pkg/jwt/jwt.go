package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidTokenType = errors.New("invalid token type")

type Service interface {
	GenerateAccessToken(employeeID string, email string, role user.Role) (token string, expiresAt int64, err error)
	GenerateSSEToken(employeeID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (employeeID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string, expiresAt time.Time)
	RestoreRevoked(hash string, expiresAt time.Time)
	IsTokenRevoked(token string) bool
	PurgeExpired(now time.Time) int
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
	revokedTokens             map[string]time.Time // token hash -> token expiry
	mu                        sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) *JWTService {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]time.Time),
	}
}

func (j *JWTService) GenerateAccessToken(employeeID string, email string, role user.Role) (token string, expiresAt int64, err error) {
	now := time.Now()
	expiresAt = now.Add(j.accessTokenExpirationTime).Unix()

	claims := map[string]interface{}{
		"user_id": employeeID,
		"email":   email,
		"role":    string(role),
		"type":    "access",
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// HashToken is the key under which a revoked token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (j *JWTService) RevokeToken(token string, expiresAt time.Time) {
	j.RestoreRevoked(HashToken(token), expiresAt)
}

// RestoreRevoked re-registers a persisted revocation, e.g. on startup.
func (j *JWTService) RestoreRevoked(hash string, expiresAt time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[hash] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[HashToken(token)]
	return revoked
}

// PurgeExpired forgets revocations for tokens that have expired anyway.
func (j *JWTService) PurgeExpired(now time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	removed := 0
	for hash, exp := range j.revokedTokens {
		if !exp.After(now) {
			delete(j.revokedTokens, hash)
			removed++
		}
	}
	return removed
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(employeeID string) (token string, expiresIn int, err error) {
	// SSE tokens are short-lived (5 minutes)
	expiresIn = 300
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": employeeID,
		"type":    "sse",
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the employee ID
func (j *JWTService) ValidateSSEToken(tokenString string) (employeeID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "sse" {
		return "", ErrInvalidTokenType
	}

	idVal, ok := token.Get("user_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	employeeID, ok = idVal.(string)
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	return employeeID, nil
}
