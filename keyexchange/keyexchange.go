// Package keyexchange implements the asymmetric side channel used to
// submit a sensitive attribute (a phone number) without transmitting
// it in clear text. The client receives the public modulus and
// exponent, encrypts the attribute, and the server decrypts it with
// the matching private key.
package keyexchange

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"math/big"

	"github.com/pkg/errors"
	"github.com/studyhub/studyhub-auth/internal/autherrors"
)

const keyBits = 2048

// KeyPair carries a generated RSA key pair in transport form: both
// keys base64-encoded DER, plus the public modulus and exponent as hex
// strings for out-of-band negotiation with a client-side encryptor.
// Lifetime is caller-defined, typically one verification flow.
type KeyPair struct {
	PublicKey  string
	PrivateKey string
	Modulus    string
	Exponent   string
}

// Service performs key generation and the encrypt/decrypt transforms.
// It holds no state: every call creates fresh primitives, so a single
// Service is safe for concurrent use.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// GenerateKeyPair creates a 2048-bit RSA key pair. Any failure inside
// key generation or encoding surfaces as ErrRSAOperation; finer
// cryptographic detail is deliberately not exposed to callers.
func (s *Service) GenerateKeyPair() (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange.GenerateKeyPair")
	}

	publicDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange.GenerateKeyPair public")
	}
	privateDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange.GenerateKeyPair private")
	}

	return &KeyPair{
		PublicKey:  base64.StdEncoding.EncodeToString(publicDER),
		PrivateKey: base64.StdEncoding.EncodeToString(privateDER),
		Modulus:    hex.EncodeToString(privateKey.PublicKey.N.Bytes()),
		Exponent:   hex.EncodeToString(big.NewInt(int64(privateKey.PublicKey.E)).Bytes()),
	}, nil
}

// Encrypt encrypts plaintext with the base64 DER public key and
// returns base64 ciphertext.
func (s *Service) Encrypt(publicKeyB64, plaintext string) (string, error) {
	publicKey, err := parsePublicKey(publicKeyB64)
	if err != nil {
		return "", err
	}

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, publicKey, []byte(plaintext))
	if err != nil {
		return "", errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange.Encrypt")
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts base64 ciphertext with the base64 DER private key.
func (s *Service) Decrypt(privateKeyB64, ciphertextB64 string) (string, error) {
	privateKey, err := parsePrivateKey(privateKeyB64)
	if err != nil {
		return "", err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange.Decrypt decode")
	}

	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, privateKey, ciphertext)
	if err != nil {
		return "", errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange.Decrypt")
	}
	return string(plaintext), nil
}

func parsePublicKey(publicKeyB64 string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil {
		return nil, errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange parse public key")
	}
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange parse public key")
	}
	publicKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange parse public key")
	}
	return publicKey, nil
}

func parsePrivateKey(privateKeyB64 string) (*rsa.PrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(privateKeyB64)
	if err != nil {
		return nil, errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange parse private key")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange parse private key")
	}
	privateKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.Wrap(autherrors.ErrRSAOperation, "KeyExchange parse private key")
	}
	return privateKey, nil
}
