package token

import (
	"time"

	"github.com/pkg/errors"
	"github.com/studyhub/studyhub-auth/internal/autherrors"
)

// Status is the trust classification of a presented token.
type Status int

const (
	StatusValid Status = iota
	StatusExpired
	StatusMalformed
	StatusUnsupported
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusExpired:
		return "expired"
	case StatusMalformed:
		return "malformed"
	case StatusUnsupported:
		return "unsupported"
	case StatusEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Validator layers the expiry check on top of the codec's structural
// verification.
type Validator struct {
	codec   *Codec
	nowFunc func() time.Time
}

type ValidatorOption func(*Validator)

// WithValidatorNowFunc sets the clock used for expiry checks (primarily for testing)
func WithValidatorNowFunc(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.nowFunc = now
	}
}

func NewValidator(codec *Codec, options ...ValidatorOption) *Validator {
	v := &Validator{
		codec:   codec,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// Classify decodes tokenString and reports its trust state. Decode
// failures propagate as their own statuses; a structurally valid token
// is then Expired or Valid depending on its exp claim.
func (v *Validator) Classify(tokenString string) Status {
	claims, err := v.codec.Decode(tokenString)
	switch {
	case errors.Is(err, autherrors.ErrEmptyToken):
		return StatusEmpty
	case errors.Is(err, autherrors.ErrUnsupportedAlgorithm):
		return StatusUnsupported
	case err != nil:
		return StatusMalformed
	}

	if !claims.ExpiresAt.After(v.nowFunc()) {
		return StatusExpired
	}
	return StatusValid
}

// IsExpiredOnly reports whether the token is well formed, correctly
// signed and past its expiry - and nothing else. The renewal flow uses
// it to decide between cleaning up a stale refresh record and treating
// the token as fully invalid.
func (v *Validator) IsExpiredOnly(tokenString string) bool {
	return v.Classify(tokenString) == StatusExpired
}

// RequireValid is the standard request-authentication check: it
// returns the claims for a Valid token and a distinct sentinel error
// for every other classification.
func (v *Validator) RequireValid(tokenString string) (*Claims, error) {
	claims, err := v.codec.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.ExpiresAt.After(v.nowFunc()) {
		return nil, errors.Wrap(autherrors.ErrExpiredToken, "Validator.RequireValid")
	}
	return claims, nil
}
