package token

import "time"

// Kind distinguishes the three token variants the platform issues.
type Kind string

const (
	KindAccess       Kind = "access"
	KindRefresh      Kind = "refresh"
	KindVerification Kind = "verification"
)

// Claims is the decoded payload of a signed token. Subject carries a
// member id for access and refresh tokens, or an unverified attribute
// (a phone number) for verification tokens. A Claims value is returned
// even when ExpiresAt is already in the past - expiry is a semantic
// check owned by the Validator, not the codec.
type Claims struct {
	Subject   string
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
}
