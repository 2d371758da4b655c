package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/studyhub/studyhub-auth/auth"
	"github.com/studyhub/studyhub-auth/internal/autherrors"
	"github.com/studyhub/studyhub-auth/members"
)

type signupRequest struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func pairResponse(pair *auth.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(pair.AccessExpiresIn.Seconds()),
	}
}

func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
			return
		}
		if req.Email == "" || req.Password == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Description: "Email and password are required"})
			return
		}

		if _, err := s.deps.Members.GetByEmail(r.Context(), req.Email); err == nil {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "email_taken"})
			return
		}

		hash, err := members.HashPassword(req.Password)
		if err != nil {
			log.Err(err).Msg("Failed to hash password")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			return
		}

		member := &members.Member{Email: req.Email, Nickname: req.Nickname, PasswordHash: hash}
		if err := s.deps.Members.Create(r.Context(), member); err != nil {
			log.Err(err).Msg("Failed to create member")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			return
		}

		pair, err := s.deps.Sessions.CreateInitialSession(r.Context(), member.ID)
		if err != nil {
			log.Err(err).Int64("member_id", member.ID).Msg("Failed to create initial session")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			return
		}
		writeJSON(w, http.StatusCreated, pairResponse(pair))
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
			return
		}

		member, err := s.deps.Members.GetByEmail(r.Context(), req.Email)
		if err != nil || !member.CheckPassword(req.Password) {
			// Same response for unknown email and wrong password.
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid_credentials"})
			return
		}

		pair, err := s.deps.Sessions.CreateInitialSession(r.Context(), member.ID)
		if err != nil {
			log.Err(err).Int64("member_id", member.ID).Msg("Failed to create initial session")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			return
		}
		writeJSON(w, http.StatusOK, pairResponse(pair))
	}
}

// ReissueHandler renews a session. The refresh token comes from the
// Refresh-Token header, never from the Authorization header.
func (s *Server) ReissueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken := r.Header.Get(RefreshTokenHeader)
		if refreshToken == "" {
			writeAuthError(w, autherrors.ErrEmptyToken)
			return
		}

		pair, err := s.deps.Sessions.Reissue(r.Context(), refreshToken)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pairResponse(pair))
	}
}

// LogoutHandler deletes the stored refresh record. The access token is
// not revoked; it expires on its own short TTL.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken := r.Header.Get(RefreshTokenHeader)
		if refreshToken == "" {
			writeAuthError(w, autherrors.ErrEmptyToken)
			return
		}

		if err := s.deps.Sessions.EndSession(r.Context(), refreshToken); err != nil {
			if errors.Is(err, autherrors.ErrRefreshTokenNotFound) {
				// Idempotent: logging out a dead session succeeds.
				w.WriteHeader(http.StatusNoContent)
				return
			}
			log.Err(err).Msg("Failed to end session")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) SessionStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, ok := MemberIDFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		active, err := s.deps.Sessions.HasActiveSession(r.Context(), memberID)
		if err != nil {
			log.Err(err).Int64("member_id", memberID).Msg("Failed to check session")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"member_id": memberID, "active_session": active})
	}
}

// OAuthLoginHandler redirects the client to the external identity provider.
func (s *Server) OAuthLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		if state == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Description: "Missing state parameter"})
			return
		}
		http.Redirect(w, r, s.deps.Identity.AuthCodeURL(state), http.StatusFound)
	}
}

// OAuthCallbackHandler completes the external identity handshake and
// opens a platform session for the verified identity.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.FormValue("code")
		if code == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Description: "Missing code parameter"})
			return
		}

		external, err := s.deps.Identity.Exchange(r.Context(), code)
		if err != nil {
			log.Err(err).Msg("External identity exchange failed")
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "identity_exchange_failed"})
			return
		}

		member, err := s.deps.Members.GetByOAuthSubject(r.Context(), external.Subject)
		if errors.Is(err, autherrors.ErrMemberNotFound) {
			member = &members.Member{
				Email:        external.Email,
				Nickname:     external.Nickname,
				OAuthSubject: external.Subject,
			}
			err = s.deps.Members.Create(r.Context(), member)
		}
		if err != nil {
			log.Err(err).Msg("Failed to resolve member for external identity")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			return
		}

		pair, err := s.deps.Sessions.CreateInitialSession(r.Context(), member.ID)
		if err != nil {
			log.Err(err).Int64("member_id", member.ID).Msg("Failed to create initial session")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			return
		}
		writeJSON(w, http.StatusOK, pairResponse(pair))
	}
}
