// Package refresh defines server-side storage of refresh tokens. Each
// member has at most one active refresh token at any time; rotation on
// renewal replaces it.
package refresh

import (
	"context"
	"time"
)

// Record is the stored refresh token for a member. The client holds
// only the Token string; CreatedAt is server-side metadata.
type Record struct {
	MemberID  int64
	Token     string
	CreatedAt time.Time
}

// Repo persists refresh token records under the one-record-per-member
// invariant. Implementations must make Replace atomic: the source
// system's delete-then-insert pair allowed two concurrent renewals to
// either duplicate records or silently drop the second caller's token,
// so rotation here is a single upsert keyed by member id.
type Repo interface {
	// FindByToken returns the record holding the exact token string,
	// or autherrors.ErrRefreshTokenNotFound.
	FindByToken(ctx context.Context, token string) (*Record, error)

	// HasActive reports whether a record exists for the member.
	HasActive(ctx context.Context, memberID int64) (bool, error)

	// Replace atomically installs newToken as the member's single
	// refresh token, discarding any previous record.
	Replace(ctx context.Context, memberID int64, newToken string) error

	// Delete removes the record. Used when a renewal attempt discovers
	// the stored token has expired.
	Delete(ctx context.Context, record *Record) error
}
