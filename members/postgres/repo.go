package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/studyhub/studyhub-auth/internal/autherrors"
	"github.com/studyhub/studyhub-auth/internal/postgres"
	"github.com/studyhub/studyhub-auth/members"
)

var _ members.Repo = (*MemberRepo)(nil)

type MemberRepo struct{ db *postgres.DB }

func NewMemberRepo(db *postgres.DB) *MemberRepo { return &MemberRepo{db: db} }

const (
	qCreate = `
INSERT INTO members(email, nickname, password_hash, oauth_subject, joined_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NOW())
RETURNING id, joined_at;
`
	qGetByID = `
SELECT id, email, nickname, password_hash, COALESCE(oauth_subject, ''),
       COALESCE(phone_number, ''), phone_verified, joined_at
FROM members WHERE id = $1;
`
	qGetByEmail = `
SELECT id, email, nickname, password_hash, COALESCE(oauth_subject, ''),
       COALESCE(phone_number, ''), phone_verified, joined_at
FROM members WHERE email = $1;
`
	qGetByOAuthSubject = `
SELECT id, email, nickname, password_hash, COALESCE(oauth_subject, ''),
       COALESCE(phone_number, ''), phone_verified, joined_at
FROM members WHERE oauth_subject = $1;
`
	qSetPhone = `
UPDATE members SET phone_number = $2, phone_verified = TRUE WHERE id = $1;
`
)

func (r *MemberRepo) Create(ctx context.Context, member *members.Member) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	err := r.db.Pool.QueryRow(ctx, qCreate,
		member.Email, member.Nickname, member.PasswordHash, member.OAuthSubject).
		Scan(&member.ID, &member.JoinedAt)
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func (r *MemberRepo) GetByID(ctx context.Context, id int64) (*members.Member, error) {
	return r.get(ctx, qGetByID, id)
}

func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (*members.Member, error) {
	return r.get(ctx, qGetByEmail, email)
}

func (r *MemberRepo) GetByOAuthSubject(ctx context.Context, subject string) (*members.Member, error) {
	return r.get(ctx, qGetByOAuthSubject, subject)
}

func (r *MemberRepo) get(ctx context.Context, query string, arg any) (*members.Member, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	var m members.Member
	err := r.db.Pool.QueryRow(ctx, query, arg).
		Scan(&m.ID, &m.Email, &m.Nickname, &m.PasswordHash, &m.OAuthSubject,
			&m.PhoneNumber, &m.PhoneVerified, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, autherrors.ErrMemberNotFound
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

func (r *MemberRepo) SetPhoneNumber(ctx context.Context, id int64, phoneNumber string) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qSetPhone, id, phoneNumber)
	if err != nil {
		return fmt.Errorf("set phone number: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return autherrors.ErrMemberNotFound
	}
	return nil
}
