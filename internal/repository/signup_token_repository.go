package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"healteex/api/internal/models"
)

var ErrSignupTokenNotFound = errors.New("signup token not found")

type SignupTokenRepository struct {
	pool *pgxpool.Pool
}

func NewSignupTokenRepository(pool *pgxpool.Pool) *SignupTokenRepository {
	return &SignupTokenRepository{pool: pool}
}

func (r *SignupTokenRepository) Create(ctx context.Context, token models.SignupToken) error {
	const query = `
		INSERT INTO signup_tokens (
			id, email, role, token, created_at, expires_at, is_used
		) VALUES (
			$1, $2, $3, $4, NOW(), $5, FALSE
		)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.Email,
		token.Role,
		token.Token,
		token.ExpiresAt,
	)
	return err
}

// GetByToken is an exact match on the indexed token column. A missing token is
// reported distinctly from an expired or used one; callers collapse the two at
// the API edge.
func (r *SignupTokenRepository) GetByToken(ctx context.Context, tokenStr string) (models.SignupToken, error) {
	const query = `
		SELECT id, email, role, token, created_at, expires_at, is_used
		FROM signup_tokens WHERE token = $1
	`

	row := r.pool.QueryRow(ctx, query, tokenStr)
	var token models.SignupToken
	if err := row.Scan(
		&token.ID,
		&token.Email,
		&token.Role,
		&token.Token,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.IsUsed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SignupToken{}, ErrSignupTokenNotFound
		}
		return models.SignupToken{}, err
	}
	return token, nil
}

func (r *SignupTokenRepository) HasActive(ctx context.Context, email string, role models.Role, now time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM signup_tokens
			WHERE LOWER(email) = LOWER($1) AND role = $2 AND is_used = FALSE AND expires_at >= $3
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, email, role, now).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// MarkUsed is an idempotent flag flip; tokens are never deleted.
func (r *SignupTokenRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `UPDATE signup_tokens SET is_used = TRUE WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSignupTokenNotFound
	}
	return nil
}
