package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/auth"
)

type revokedTokenRepository struct {
	s *Store
}

func (s *Store) RevokedTokens() auth.RevokedTokenRepository {
	return &revokedTokenRepository{s: s}
}

func (r *revokedTokenRepository) Create(ctx context.Context, token auth.RevokedToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.revoked[token.TokenHash]; !ok {
		r.s.revoked[token.TokenHash] = token
	}
	return nil
}

func (r *revokedTokenRepository) ListActive(ctx context.Context, now time.Time) ([]auth.RevokedToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []auth.RevokedToken{}
	for _, t := range r.s.revoked {
		if t.ExpiresAt.After(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *revokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for hash, t := range r.s.revoked {
		if !t.ExpiresAt.After(now) {
			delete(r.s.revoked, hash)
			n++
		}
	}
	return n, nil
}
