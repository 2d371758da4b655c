package token_test

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/studyhub-auth/internal/autherrors"
	"github.com/studyhub/studyhub-auth/token"
)

// testClock is an adjustable clock shared by codec and validator.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newCodecAndValidator(clk *testClock) (*token.Codec, *token.Validator) {
	codec := token.NewCodec(testSecret, token.WithNowFunc(clk.Now))
	validator := token.NewValidator(codec, token.WithValidatorNowFunc(clk.Now))
	return codec, validator
}

func TestClassifyValidImmediatelyAfterIssue(t *testing.T) {
	clk := newTestClock()
	codec, validator := newCodecAndValidator(clk)

	for _, subject := range []string{"1", "42", "9007199254740993"} {
		tokenString, err := codec.Issue(subject, token.KindAccess, 15*time.Minute)
		require.NoError(t, err)
		require.Equal(t, token.StatusValid, validator.Classify(tokenString))
	}
}

func TestClassifyExpiredAfterTTL(t *testing.T) {
	clk := newTestClock()
	codec, validator := newCodecAndValidator(clk)

	// The concrete renewal scenario: access TTL of 900 000 ms.
	tokenString, err := codec.Issue("42", token.KindAccess, 900000*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, token.StatusValid, validator.Classify(tokenString))

	clk.Advance(900001 * time.Millisecond)
	require.Equal(t, token.StatusExpired, validator.Classify(tokenString))
}

func TestClassifyFailureKinds(t *testing.T) {
	clk := newTestClock()
	codec, validator := newCodecAndValidator(clk)

	tokenString, err := codec.Issue("42", token.KindAccess, time.Minute)
	require.NoError(t, err)

	require.Equal(t, token.StatusEmpty, validator.Classify(""))
	require.Equal(t, token.StatusMalformed, validator.Classify(flipSignatureByte(tokenString)))
	require.Equal(t, token.StatusMalformed, validator.Classify("garbage"))

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "42", "kind": "access", "iat": clk.Now().Unix(), "exp": clk.Now().Add(time.Minute).Unix(),
	})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	require.Equal(t, token.StatusUnsupported, validator.Classify(noneToken))
}

func TestIsExpiredOnly(t *testing.T) {
	clk := newTestClock()
	codec, validator := newCodecAndValidator(clk)

	tokenString, err := codec.Issue("42", token.KindRefresh, time.Minute)
	require.NoError(t, err)

	require.False(t, validator.IsExpiredOnly(tokenString), "valid token is not expired-only")
	require.False(t, validator.IsExpiredOnly(""), "empty token is not expired-only")
	require.False(t, validator.IsExpiredOnly(flipSignatureByte(tokenString)), "malformed token is not expired-only")

	clk.Advance(2 * time.Minute)
	require.True(t, validator.IsExpiredOnly(tokenString))
}

func TestRequireValid(t *testing.T) {
	clk := newTestClock()
	codec, validator := newCodecAndValidator(clk)

	tokenString, err := codec.Issue("42", token.KindAccess, time.Minute)
	require.NoError(t, err)

	claims, err := validator.RequireValid(tokenString)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)

	_, err = validator.RequireValid("")
	require.ErrorIs(t, err, autherrors.ErrEmptyToken)

	_, err = validator.RequireValid(flipSignatureByte(tokenString))
	require.ErrorIs(t, err, autherrors.ErrMalformedToken)

	clk.Advance(2 * time.Minute)
	_, err = validator.RequireValid(tokenString)
	require.ErrorIs(t, err, autherrors.ErrExpiredToken)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "valid", token.StatusValid.String())
	require.Equal(t, "expired", token.StatusExpired.String())
	require.Equal(t, "malformed", token.StatusMalformed.String())
	require.Equal(t, "unsupported", token.StatusUnsupported.String())
	require.Equal(t, "empty", token.StatusEmpty.String())
}
