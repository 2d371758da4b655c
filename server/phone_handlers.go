package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/studyhub/studyhub-auth/server/keyflowrepo"
	"github.com/studyhub/studyhub-auth/token"
)

// The phone verification flow takes three round-trips:
//  1. GET /auth/phone/key        -> key pair generated, client gets modulus+exponent
//  2. POST /auth/phone           -> client submits ciphertext, server decrypts and
//                                   answers with a verification token binding the number
//  3. POST /auth/phone/confirm   -> client echoes the verification token, server
//                                   persists the verified number

type phoneKeyResponse struct {
	FlowID   string `json:"flow_id"`
	Modulus  string `json:"modulus"`
	Exponent string `json:"exponent"`
}

type phoneSubmitRequest struct {
	FlowID     string `json:"flow_id"`
	Ciphertext string `json:"ciphertext"`
}

type phoneConfirmRequest struct {
	VerificationToken string `json:"verification_token"`
}

func (s *Server) PhoneKeyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, _ := MemberIDFromContext(r.Context())

		keyPair, err := s.deps.KeyExchange.GenerateKeyPair()
		if err != nil {
			writeAuthError(w, err)
			return
		}

		flowID := generateRandomString(16)
		err = s.deps.KeyFlows.Upsert(flowID, &keyflowrepo.KeyFlowState{
			MemberID:   memberID,
			PrivateKey: keyPair.PrivateKey,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			log.Err(err).Msg("Failed to store key flow state")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			return
		}

		writeJSON(w, http.StatusOK, phoneKeyResponse{
			FlowID:   flowID,
			Modulus:  keyPair.Modulus,
			Exponent: keyPair.Exponent,
		})
	}
}

func (s *Server) PhoneSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, _ := MemberIDFromContext(r.Context())

		var req phoneSubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
			return
		}

		state, err := s.deps.KeyFlows.Get(req.FlowID)
		if err != nil || state.MemberID != memberID {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown_flow"})
			return
		}
		// One submission per key pair.
		if err := s.deps.KeyFlows.Delete(req.FlowID); err != nil {
			log.Err(err).Msg("Failed to delete key flow state")
		}

		phoneNumber, err := s.deps.KeyExchange.Decrypt(state.PrivateKey, req.Ciphertext)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		verificationToken, err := s.deps.Sessions.CreateVerificationToken(phoneNumber)
		if err != nil {
			log.Err(err).Msg("Failed to issue verification token")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"verification_token": verificationToken})
	}
}

func (s *Server) PhoneConfirmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, _ := MemberIDFromContext(r.Context())

		var req phoneConfirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
			return
		}

		claims, err := s.deps.Validator.RequireValid(req.VerificationToken)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		if claims.Kind != token.KindVerification {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "malformed_token", Description: "Not a verification token"})
			return
		}

		if err := s.deps.Members.SetPhoneNumber(r.Context(), memberID, claims.Subject); err != nil {
			log.Err(err).Int64("member_id", memberID).Msg("Failed to persist phone number")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// generateRandomString creates a random base64url string.
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
