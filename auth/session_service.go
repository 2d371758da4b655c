// Package auth orchestrates session issuance and the refresh-token
// rotation protocol on top of the token codec, the validator, the
// refresh-token store and the member lookup collaborator.
package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/studyhub/studyhub-auth/internal/autherrors"
	"github.com/studyhub/studyhub-auth/members"
	"github.com/studyhub/studyhub-auth/token"
	"github.com/studyhub/studyhub-auth/token/refresh"
)

// TokenPair is the result of session creation or renewal.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresIn time.Duration
}

// Deps holds the collaborators of the SessionService.
type Deps struct {
	Codec         *token.Codec
	Validator     *token.Validator
	RefreshTokens refresh.Repo
	Members       members.Repo
}

// SessionService implements the session lifecycle: initial issuance,
// renewal with refresh-token rotation, and the short-lived
// verification tokens used by the phone confirmation flow.
type SessionService struct {
	deps            Deps
	accessTTL       time.Duration
	refreshTTL      time.Duration
	verificationTTL time.Duration
}

type SessionServiceOption func(*SessionService)

// WithTokenTTLs overrides the default token lifetimes.
func WithTokenTTLs(accessTTL, refreshTTL, verificationTTL time.Duration) SessionServiceOption {
	return func(s *SessionService) {
		s.accessTTL = accessTTL
		s.refreshTTL = refreshTTL
		s.verificationTTL = verificationTTL
	}
}

func NewSessionService(deps Deps, options ...SessionServiceOption) (*SessionService, error) {
	if deps.Codec == nil {
		return nil, errors.New("[NewSessionService] token codec is required")
	}
	if deps.Validator == nil {
		return nil, errors.New("[NewSessionService] token validator is required")
	}
	if deps.RefreshTokens == nil {
		return nil, errors.New("[NewSessionService] refresh token repo is required")
	}
	if deps.Members == nil {
		return nil, errors.New("[NewSessionService] members repo is required")
	}

	s := &SessionService{
		deps:            deps,
		accessTTL:       15 * time.Minute,
		refreshTTL:      7 * 24 * time.Hour,
		verificationTTL: 3 * time.Minute,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// CreateInitialSession issues a fresh access/refresh pair for the
// member and installs the refresh token as the member's single active
// one. Replace rather than insert keeps the one-record invariant on
// repeated logins.
func (s *SessionService) CreateInitialSession(ctx context.Context, memberID int64) (*TokenPair, error) {
	pair, err := s.issuePair(memberID)
	if err != nil {
		return nil, err
	}
	if err := s.deps.RefreshTokens.Replace(ctx, memberID, pair.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "SessionService.CreateInitialSession Replace")
	}
	return pair, nil
}

// Reissue renews a session presented through its refresh token:
// look up the stored record, reject or clean up stale tokens, re-check
// the member, issue a new pair and rotate the stored record.
func (s *SessionService) Reissue(ctx context.Context, refreshTokenString string) (*TokenPair, error) {
	record, err := s.deps.RefreshTokens.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, autherrors.ErrRefreshTokenNotFound) {
			return nil, errors.Wrap(autherrors.ErrRefreshTokenNotFound, "SessionService.Reissue")
		}
		return nil, errors.Wrap(err, "SessionService.Reissue FindByToken")
	}

	if s.deps.Validator.IsExpiredOnly(record.Token) {
		// Compensating cleanup: a dead token must not stay lookupable.
		if err := s.deps.RefreshTokens.Delete(ctx, record); err != nil {
			log.Err(err).Int64("member_id", record.MemberID).Msg("Failed to delete expired refresh token")
		}
		return nil, errors.Wrap(autherrors.ErrExpiredRefreshToken, "SessionService.Reissue")
	}

	claims, err := s.deps.Codec.Decode(refreshTokenString)
	if err != nil {
		return nil, err
	}
	memberID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, errors.Wrap(autherrors.ErrMalformedToken, "SessionService.Reissue subject")
	}

	member, err := s.deps.Members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, autherrors.ErrMemberNotFound) {
			return nil, errors.Wrap(autherrors.ErrMemberNotFound, "SessionService.Reissue")
		}
		return nil, errors.Wrap(err, "SessionService.Reissue GetByID")
	}

	// Signature verification already guarantees the subject was not
	// altered; this mismatch check is kept as defense in depth, and
	// removing it would change observable error behavior.
	if member.ID != memberID {
		return nil, errors.Wrap(autherrors.ErrTamperedToken, "SessionService.Reissue")
	}

	pair, err := s.issuePair(memberID)
	if err != nil {
		return nil, err
	}
	if err := s.deps.RefreshTokens.Replace(ctx, memberID, pair.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "SessionService.Reissue Replace")
	}
	return pair, nil
}

// CreateVerificationToken issues a short-lived token binding an
// unverified attribute (a phone number) across two round-trips,
// without creating a session.
func (s *SessionService) CreateVerificationToken(attribute string) (string, error) {
	return s.deps.Codec.Issue(attribute, token.KindVerification, s.verificationTTL)
}

// EndSession deletes the stored refresh record for the presented
// refresh token. Already-issued access tokens stay classifiable as
// valid until natural expiry; the short access TTL is the de facto
// revocation mechanism.
func (s *SessionService) EndSession(ctx context.Context, refreshTokenString string) error {
	record, err := s.deps.RefreshTokens.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, autherrors.ErrRefreshTokenNotFound) {
			return errors.Wrap(autherrors.ErrRefreshTokenNotFound, "SessionService.EndSession")
		}
		return errors.Wrap(err, "SessionService.EndSession FindByToken")
	}
	if err := s.deps.RefreshTokens.Delete(ctx, record); err != nil {
		return errors.Wrap(err, "SessionService.EndSession Delete")
	}
	return nil
}

// HasActiveSession reports whether the member currently holds a stored
// refresh token.
func (s *SessionService) HasActiveSession(ctx context.Context, memberID int64) (bool, error) {
	return s.deps.RefreshTokens.HasActive(ctx, memberID)
}

func (s *SessionService) issuePair(memberID int64) (*TokenPair, error) {
	subject := strconv.FormatInt(memberID, 10)

	accessToken, err := s.deps.Codec.Issue(subject, token.KindAccess, s.accessTTL)
	if err != nil {
		return nil, errors.Wrap(err, "SessionService.issuePair access")
	}
	refreshToken, err := s.deps.Codec.Issue(subject, token.KindRefresh, s.refreshTTL)
	if err != nil {
		return nil, errors.Wrap(err, "SessionService.issuePair refresh")
	}

	return &TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresIn: s.accessTTL,
	}, nil
}
