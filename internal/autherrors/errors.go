package autherrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authentication subsystem. Every failure the
// subsystem can surface maps to exactly one of these; callers branch
// with errors.Is. All of them are terminal - nothing here is retried.
var (
	// Token classification errors
	ErrEmptyToken           = errors.New("no token presented")
	ErrMalformedToken       = errors.New("malformed token")
	ErrUnsupportedAlgorithm = errors.New("unsupported token algorithm")
	ErrExpiredToken         = errors.New("token expired")

	// Session renewal errors
	ErrExpiredRefreshToken  = errors.New("refresh token expired")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrTamperedToken        = errors.New("token subject does not match member")

	// Key exchange errors
	ErrRSAOperation = errors.New("rsa operation failed")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
