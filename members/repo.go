package members

import "context"

// Repo is the principal-lookup collaborator. Lookups return
// autherrors.ErrMemberNotFound when no member matches.
type Repo interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id int64) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	GetByOAuthSubject(ctx context.Context, subject string) (*Member, error)
	SetPhoneNumber(ctx context.Context, id int64, phoneNumber string) error
}
