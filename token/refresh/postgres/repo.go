package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/studyhub/studyhub-auth/internal/autherrors"
	"github.com/studyhub/studyhub-auth/internal/postgres"
	"github.com/studyhub/studyhub-auth/token/refresh"
)

var _ refresh.Repo = (*RefreshRepo)(nil)

type RefreshRepo struct{ db *postgres.DB }

func NewRefreshRepo(db *postgres.DB) *RefreshRepo { return &RefreshRepo{db: db} }

const (
	qFindByToken = `
SELECT member_id, token, created_at
FROM refresh_tokens
WHERE token = $1;
`
	qHasActive = `
SELECT EXISTS(SELECT 1 FROM refresh_tokens WHERE member_id = $1);
`
	// member_id is the primary key, so the upsert both enforces the
	// one-record invariant and makes rotation a single atomic
	// statement. Concurrent renewals for the same member cannot leave
	// two records or lose the winner's token.
	qReplace = `
INSERT INTO refresh_tokens(member_id, token, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (member_id)
DO UPDATE SET token = EXCLUDED.token, created_at = EXCLUDED.created_at;
`
	qDelete = `
DELETE FROM refresh_tokens WHERE member_id = $1 AND token = $2;
`
)

func (r *RefreshRepo) FindByToken(ctx context.Context, token string) (*refresh.Record, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	var record refresh.Record
	err := r.db.Pool.QueryRow(ctx, qFindByToken, token).
		Scan(&record.MemberID, &record.Token, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, autherrors.ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &record, nil
}

func (r *RefreshRepo) HasActive(ctx context.Context, memberID int64) (bool, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, qHasActive, memberID).Scan(&exists); err != nil {
		return false, fmt.Errorf("refresh token exists: %w", err)
	}
	return exists, nil
}

func (r *RefreshRepo) Replace(ctx context.Context, memberID int64, newToken string) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qReplace, memberID, newToken); err != nil {
		return fmt.Errorf("replace refresh token: %w", err)
	}
	return nil
}

func (r *RefreshRepo) Delete(ctx context.Context, record *refresh.Record) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qDelete, record.MemberID, record.Token)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return autherrors.ErrRefreshTokenNotFound
	}
	return nil
}
