package members

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Member is a registered platform member. The authentication subsystem
// only cares about the numeric ID (the token subject) and the
// credential fields; study-group data lives elsewhere.
type Member struct {
	ID            int64     `json:"id,omitempty"`
	Email         string    `json:"email,omitempty"`
	Nickname      string    `json:"nickname,omitempty"`
	PasswordHash  string    `json:"-"` // never serialize
	OAuthSubject  string    `json:"-"` // external identity provider subject, if any
	PhoneNumber   string    `json:"phone_number,omitempty"`
	PhoneVerified bool      `json:"phone_verified,omitempty"`
	JoinedAt      time.Time `json:"joined_at,omitempty"`
}

// HashPassword returns the bcrypt hash to store for a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the member's stored hash.
func (m *Member) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) == nil
}
