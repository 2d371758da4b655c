package keyexchange_test

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/studyhub/studyhub-auth/internal/autherrors"
	"github.com/studyhub/studyhub-auth/keyexchange"
)

func TestGenerateKeyPair(t *testing.T) {
	service := keyexchange.NewService()

	keyPair, err := service.GenerateKeyPair()
	require.NoError(t, err)

	_, err = base64.StdEncoding.DecodeString(keyPair.PublicKey)
	require.NoError(t, err)
	_, err = base64.StdEncoding.DecodeString(keyPair.PrivateKey)
	require.NoError(t, err)

	modulus, err := hex.DecodeString(keyPair.Modulus)
	require.NoError(t, err)
	require.Len(t, modulus, 256, "2048-bit modulus")
	require.Equal(t, "10001", keyPair.Exponent)
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	service := keyexchange.NewService()

	keyPair, err := service.GenerateKeyPair()
	require.NoError(t, err)

	for _, plaintext := range []string{"01012345678", "+82 10 9876 5432", "x", strings.Repeat("a", 200)} {
		ciphertext, err := service.Encrypt(keyPair.PublicKey, plaintext)
		require.NoError(t, err)
		require.NotEqual(t, plaintext, ciphertext)

		decrypted, err := service.Decrypt(keyPair.PrivateKey, ciphertext)
		require.NoError(t, err)
		require.Equal(t, plaintext, decrypted)
	}
}

func TestCiphertextDiffersPerKeyPair(t *testing.T) {
	service := keyexchange.NewService()

	first, err := service.GenerateKeyPair()
	require.NoError(t, err)
	second, err := service.GenerateKeyPair()
	require.NoError(t, err)
	require.NotEqual(t, first.Modulus, second.Modulus)

	ciphertext, err := service.Encrypt(first.PublicKey, "01012345678")
	require.NoError(t, err)

	// Wrong private key cannot recover the plaintext.
	_, err = service.Decrypt(second.PrivateKey, ciphertext)
	require.ErrorIs(t, err, autherrors.ErrRSAOperation)
}

func TestRSAFailuresCollapseToOneErrorKind(t *testing.T) {
	service := keyexchange.NewService()

	keyPair, err := service.GenerateKeyPair()
	require.NoError(t, err)

	_, err = service.Encrypt("not-base64!!!", "data")
	require.ErrorIs(t, err, autherrors.ErrRSAOperation)

	_, err = service.Encrypt(base64.StdEncoding.EncodeToString([]byte("junk")), "data")
	require.ErrorIs(t, err, autherrors.ErrRSAOperation)

	// Oversized input for a 2048-bit key with PKCS1 v1.5 padding.
	_, err = service.Encrypt(keyPair.PublicKey, strings.Repeat("a", 300))
	require.ErrorIs(t, err, autherrors.ErrRSAOperation)

	_, err = service.Decrypt(keyPair.PrivateKey, "not-base64!!!")
	require.ErrorIs(t, err, autherrors.ErrRSAOperation)

	_, err = service.Decrypt(keyPair.PrivateKey, base64.StdEncoding.EncodeToString([]byte("junk")))
	require.ErrorIs(t, err, autherrors.ErrRSAOperation)

	_, err = service.Decrypt("not-a-key", "data")
	require.ErrorIs(t, err, autherrors.ErrRSAOperation)
}
