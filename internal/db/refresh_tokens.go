package db

import (
	"context"
	"time"
)

// RefreshTokenRepo implements the refresh-token store over the shared pool.
type RefreshTokenRepo struct {
	db *Postgres
}

func NewRefreshTokenRepo(db *Postgres) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

func (r *RefreshTokenRepo) Insert(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.db.Pool.Exec(ctx, query, userID, token, expiresAt)
	return err
}

// IsValid reports whether a non-expired row matches token. Read-only.
func (r *RefreshTokenRepo) IsValid(ctx context.Context, token string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE token = $1 AND expires_at >= NOW()
		)
	`
	var valid bool
	if err := r.db.Pool.QueryRow(ctx, query, token).Scan(&valid); err != nil {
		return false, err
	}
	return valid, nil
}

// Invalidate deletes the matching row. Deleting a token that is already gone
// is not an error.
func (r *RefreshTokenRepo) Invalidate(ctx context.Context, token string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

// InvalidateAllForUser deletes every refresh token of userID except
// exceptToken, implementing "log out of all other devices". Idempotent.
func (r *RefreshTokenRepo) InvalidateAllForUser(ctx context.Context, userID, exceptToken string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE user_id = $1 AND token <> $2
	`
	_, err := r.db.Pool.Exec(ctx, query, userID, exceptToken)
	return err
}

// Rotate consumes oldToken and stores newToken in one transaction. The
// delete must hit exactly one row: when two refreshes race on the same token
// only one delete succeeds, and the loser gets ErrNotFound so it surfaces as
// an auth failure instead of minting a second valid pair.
func (r *RefreshTokenRepo) Rotate(ctx context.Context, userID, oldToken, newToken string, expiresAt time.Time) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, oldToken)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`, userID, newToken, expiresAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
