package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
)

type revokedTokenRepositoryImpl struct {
	db *database.DB
}

// NewRevokedTokenRepository persists logged-out access tokens so revocations
// survive a restart.
func NewRevokedTokenRepository(db *database.DB) auth.RevokedTokenRepository {
	return &revokedTokenRepositoryImpl{db: db}
}

func (r *revokedTokenRepositoryImpl) Create(ctx context.Context, token auth.RevokedToken) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO revoked_tokens (token_hash, employee_id, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_hash) DO NOTHING
	`
	if token.RevokedAt.IsZero() {
		token.RevokedAt = time.Now()
	}
	if _, err := q.Exec(ctx, query, token.TokenHash, token.EmployeeID, token.ExpiresAt.UTC(), token.RevokedAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *revokedTokenRepositoryImpl) ListActive(ctx context.Context, now time.Time) ([]auth.RevokedToken, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT token_hash, employee_id, expires_at, revoked_at
		FROM revoked_tokens
		WHERE expires_at > $1
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list revoked tokens: %w", err)
	}
	defer rows.Close()

	tokens := []auth.RevokedToken{}
	for rows.Next() {
		var t auth.RevokedToken
		if err := rows.Scan(&t.TokenHash, &t.EmployeeID, &t.ExpiresAt, &t.RevokedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revoked token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *revokedTokenRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge revoked tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
