package auth

import (
	"context"
	"time"
)

// RevokedToken is a logged-out access token, stored by hash.
type RevokedToken struct {
	TokenHash  string
	EmployeeID string
	ExpiresAt  time.Time
	RevokedAt  time.Time
}

type RevokedTokenRepository interface {
	Create(ctx context.Context, token RevokedToken) error
	ListActive(ctx context.Context, now time.Time) ([]RevokedToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
