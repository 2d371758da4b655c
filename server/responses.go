package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/studyhub/studyhub-auth/internal/autherrors"
)

const contentTypeJSON = "application/json; charset=utf-8"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// writeAuthError maps every sentinel of the authentication error
// taxonomy onto a distinct wire error code. Anything unrecognized is a
// plain internal error so no incidental detail leaks.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, autherrors.ErrEmptyToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "empty_token", Description: "No token presented"})
	case errors.Is(err, autherrors.ErrMalformedToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "malformed_token", Description: "Token is structurally invalid or its signature does not verify"})
	case errors.Is(err, autherrors.ErrUnsupportedAlgorithm):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unsupported_algorithm", Description: "Token signing scheme is not supported"})
	case errors.Is(err, autherrors.ErrExpiredToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "expired_token", Description: "Token has expired"})
	case errors.Is(err, autherrors.ErrExpiredRefreshToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "expired_refresh_token", Description: "Refresh token has expired"})
	case errors.Is(err, autherrors.ErrRefreshTokenNotFound):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "refresh_token_not_found", Description: "No active session matches the presented refresh token"})
	case errors.Is(err, autherrors.ErrMemberNotFound):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "member_not_found", Description: "Member no longer exists"})
	case errors.Is(err, autherrors.ErrTamperedToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "tampered_token", Description: "Token subject does not match the member record"})
	case errors.Is(err, autherrors.ErrRSAOperation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "rsa_operation_failed", Description: "Key exchange operation failed"})
	default:
		log.Err(err).Msg("Unhandled auth error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}
