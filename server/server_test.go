package server_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/studyhub/studyhub-auth/auth"
	"github.com/studyhub/studyhub-auth/internal/config"
	"github.com/studyhub/studyhub-auth/keyexchange"
	membersfake "github.com/studyhub/studyhub-auth/members/repofake"
	"github.com/studyhub/studyhub-auth/server"
	"github.com/studyhub/studyhub-auth/token"
	refreshfake "github.com/studyhub/studyhub-auth/token/refresh/repofake"
)

const testSecret = "server-test-secret"

type testFixture struct {
	server     *server.Server
	memberRepo *membersfake.FakeMemberRepo
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	codec := token.NewCodec(testSecret)
	validator := token.NewValidator(codec)
	memberRepo := membersfake.NewFakeMemberRepo()

	sessions, err := auth.NewSessionService(auth.Deps{
		Codec:         codec,
		Validator:     validator,
		RefreshTokens: refreshfake.NewFakeRefreshRepo(),
		Members:       memberRepo,
	})
	require.NoError(t, err)

	srv, err := server.New(config.New(), server.Deps{
		Sessions:    sessions,
		Validator:   validator,
		Members:     memberRepo,
		KeyExchange: keyexchange.NewService(),
	})
	require.NoError(t, err)

	return &testFixture{server: srv, memberRepo: memberRepo}
}

type pairBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func (f *testFixture) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		require.NoError(t, json.NewEncoder(reqBody).Encode(body))
	}
	req := httptest.NewRequest(method, path, reqBody)
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) signup(t *testing.T) pairBody {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/auth/signup", map[string]string{
		"email":    "jane@studyhub.dev",
		"nickname": "jane",
		"password": "Password123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var pair pairBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "bearer", pair.TokenType)
	return pair
}

func bearer(accessToken string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + accessToken}}
}

func TestSignupAndLogin(t *testing.T) {
	f := setupTestFixture(t)
	f.signup(t)

	rec := f.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "jane@studyhub.dev", "password": "Password123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "jane@studyhub.dev", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "nobody@studyhub.dev", "password": "Password123",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	f := setupTestFixture(t)
	pair := f.signup(t)

	rec := f.do(t, http.MethodGet, "/auth/session", nil, bearer(pair.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		MemberID      int64 `json:"member_id"`
		ActiveSession bool  `json:"active_session"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	require.True(t, status.ActiveSession)

	// No token, tampered token, refresh token in the bearer slot: all 401.
	rec = f.do(t, http.MethodGet, "/auth/session", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/auth/session", nil, bearer(pair.AccessToken+"x"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/auth/session", nil, bearer(pair.RefreshToken))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReissueRotation(t *testing.T) {
	f := setupTestFixture(t)
	pair := f.signup(t)

	rec := f.do(t, http.MethodPost, "/auth/reissue", nil, http.Header{server.RefreshTokenHeader: []string{pair.RefreshToken}})
	require.Equal(t, http.StatusOK, rec.Code)

	var renewed pairBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&renewed))
	require.NotEqual(t, pair.RefreshToken, renewed.RefreshToken)

	// The rotated-out token is gone.
	rec = f.do(t, http.MethodPost, "/auth/reissue", nil, http.Header{server.RefreshTokenHeader: []string{pair.RefreshToken}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var errBody struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errBody))
	require.Equal(t, "refresh_token_not_found", errBody.Error)

	// Missing header is an empty-token failure.
	rec = f.do(t, http.MethodPost, "/auth/reissue", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errBody))
	require.Equal(t, "empty_token", errBody.Error)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	pair := f.signup(t)

	rec := f.do(t, http.MethodPost, "/auth/logout", nil, http.Header{server.RefreshTokenHeader: []string{pair.RefreshToken}})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Logout is idempotent.
	rec = f.do(t, http.MethodPost, "/auth/logout", nil, http.Header{server.RefreshTokenHeader: []string{pair.RefreshToken}})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/reissue", nil, http.Header{server.RefreshTokenHeader: []string{pair.RefreshToken}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// The access token keeps working until it expires naturally.
	rec = f.do(t, http.MethodGet, "/auth/session", nil, bearer(pair.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPhoneVerificationFlow(t *testing.T) {
	f := setupTestFixture(t)
	pair := f.signup(t)

	rec := f.do(t, http.MethodGet, "/auth/phone/key", nil, bearer(pair.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	var key struct {
		FlowID   string `json:"flow_id"`
		Modulus  string `json:"modulus"`
		Exponent string `json:"exponent"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&key))
	require.NotEmpty(t, key.FlowID)

	// The client builds the public key from modulus and exponent.
	const phoneNumber = "01012345678"
	ciphertext := encryptWithModulus(t, key.Modulus, key.Exponent, phoneNumber)

	rec = f.do(t, http.MethodPost, "/auth/phone", map[string]string{
		"flow_id": key.FlowID, "ciphertext": ciphertext,
	}, bearer(pair.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	var submit struct {
		VerificationToken string `json:"verification_token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&submit))
	require.NotEmpty(t, submit.VerificationToken)

	// A key pair serves exactly one submission.
	rec = f.do(t, http.MethodPost, "/auth/phone", map[string]string{
		"flow_id": key.FlowID, "ciphertext": ciphertext,
	}, bearer(pair.AccessToken))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/phone/confirm", map[string]string{
		"verification_token": submit.VerificationToken,
	}, bearer(pair.AccessToken))
	require.Equal(t, http.StatusNoContent, rec.Code)

	member, err := f.memberRepo.GetByEmail(context.Background(), "jane@studyhub.dev")
	require.NoError(t, err)
	require.Equal(t, phoneNumber, member.PhoneNumber)
	require.True(t, member.PhoneVerified)

	// An access token is not accepted as a verification token.
	rec = f.do(t, http.MethodPost, "/auth/phone/confirm", map[string]string{
		"verification_token": pair.AccessToken,
	}, bearer(pair.AccessToken))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func encryptWithModulus(t *testing.T, modulusHex, exponentHex, plaintext string) string {
	t.Helper()

	modulus, ok := new(big.Int).SetString(modulusHex, 16)
	require.True(t, ok)
	exponent, ok := new(big.Int).SetString(exponentHex, 16)
	require.True(t, ok)

	publicKey := &rsa.PublicKey{N: modulus, E: int(exponent.Int64())}
	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, publicKey, []byte(plaintext))
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(ciphertext)
}
