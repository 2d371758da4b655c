package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/studyhub/studyhub-auth/internal/autherrors"
)

const kindClaim = "kind"

// Codec encodes claims into compact HMAC-SHA256 signed tokens and
// decodes presented tokens back into claims. The signing secret is
// injected once at construction and never mutated, so a single Codec
// is safe for unsynchronized concurrent use.
type Codec struct {
	secret  []byte
	nowFunc func() time.Time
}

type CodecOption func(*Codec)

// WithNowFunc sets the clock used for the iat/exp claims (primarily for testing)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func NewCodec(secret string, options ...CodecOption) *Codec {
	c := &Codec{
		secret:  []byte(secret),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Issue builds and signs a token of the given kind whose subject is
// payload and which expires ttl from now. Pure computation, no side
// effects.
func (c *Codec) Issue(payload string, kind Kind, ttl time.Duration) (string, error) {
	now := c.nowFunc()
	claims := jwt.MapClaims{
		"sub":     payload,
		kindClaim: string(kind),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		"jti":     uuid.New().String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.Wrap(err, "Codec.Issue SignedString")
	}
	return signed, nil
}

// Decode verifies the signature and structure of tokenString and
// returns its claims. An already-expired token still decodes
// successfully: callers that care about expiry go through the
// Validator. Failures map onto the sentinel errors ErrEmptyToken,
// ErrUnsupportedAlgorithm and ErrMalformedToken.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, autherrors.ErrEmptyToken
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, err := parser.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrUnsupportedAlgorithm
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, autherrors.ErrUnsupportedAlgorithm) {
			return nil, errors.Wrap(autherrors.ErrUnsupportedAlgorithm, "Codec.Decode")
		}
		// Structural corruption and signature mismatch are not
		// distinguished to callers.
		return nil, errors.Wrap(autherrors.ErrMalformedToken, "Codec.Decode")
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrap(autherrors.ErrMalformedToken, "Codec.Decode claims")
	}
	return claimsFromMap(mapClaims)
}

func claimsFromMap(mapClaims jwt.MapClaims) (*Claims, error) {
	sub, _ := mapClaims["sub"].(string)
	kind, _ := mapClaims[kindClaim].(string)
	iat, iatOK := mapClaims["iat"].(float64)
	exp, expOK := mapClaims["exp"].(float64)
	jti, _ := mapClaims["jti"].(string)

	if kind == "" || !iatOK || !expOK {
		return nil, errors.Wrap(autherrors.ErrMalformedToken, "Codec.Decode required claims")
	}

	return &Claims{
		Subject:   sub,
		Kind:      Kind(kind),
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
		TokenID:   jti,
	}, nil
}
