package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/studyhub/studyhub-auth/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyMemberID stores the authenticated member id
	ContextKeyMemberID ContextKey = "member_id"
	// ContextKeyClaims stores the parsed token claims
	ContextKeyClaims ContextKey = "claims"
)

// RequireAuth validates the bearer access token on API routes. Every
// non-valid classification terminates the request with 401 before any
// business logic runs.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)

			claims, err := s.deps.Validator.RequireValid(tokenString)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			if claims.Kind != token.KindAccess {
				http.Error(w, `{"error":"unauthorized","error_description":"Not an access token"}`, http.StatusUnauthorized)
				return
			}

			memberID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","error_description":"Invalid token subject"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyMemberID, memberID)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// MemberIDFromContext returns the authenticated member id injected by RequireAuth.
func MemberIDFromContext(ctx context.Context) (int64, bool) {
	memberID, ok := ctx.Value(ContextKeyMemberID).(int64)
	return memberID, ok
}
