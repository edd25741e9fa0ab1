package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	// EncKeyEnv holds the base64 AES-256 key for database.password_encrypted.
	EncKeyEnv = "VBR_ENC_KEY"

	KeySize = 32
)

var ErrNoKey = errors.New("encryption key not set (" + EncKeyEnv + ")")

// Sealer encrypts credentials for the config file. Sealed values are
// base64(nonce || AES-GCM ciphertext).
type Sealer struct {
	aead cipher.AEAD
}

func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, errors.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "creating cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "creating GCM")
	}
	return &Sealer{aead: aead}, nil
}

// SealerFromEnv builds a Sealer from the key in VBR_ENC_KEY.
func SealerFromEnv() (*Sealer, error) {
	encoded := strings.TrimSpace(os.Getenv(EncKeyEnv))
	if encoded == "" {
		return nil, ErrNoKey
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrapf(err, "%s is not base64", EncKeyEnv)
	}
	return NewSealer(key)
}

// GenerateKey returns a random key in the form VBR_ENC_KEY expects.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", errors.Wrap(err, "reading random key")
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func (s *Sealer) Seal(plain string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "reading nonce")
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sealed))
	if err != nil {
		return "", errors.Wrap(err, "ciphertext is not base64")
	}
	n := s.aead.NonceSize()
	if len(data) < n+s.aead.Overhead() {
		return "", errors.New("ciphertext too short")
	}
	plain, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", errors.Wrap(err, "wrong key or corrupted ciphertext")
	}
	return string(plain), nil
}

// EncryptPasswordString seals plain with the key from the environment.
func EncryptPasswordString(plain string) (string, error) {
	s, err := SealerFromEnv()
	if err != nil {
		return "", err
	}
	return s.Seal(plain)
}

// DecryptPasswordString reverses EncryptPasswordString.
func DecryptPasswordString(sealed string) (string, error) {
	s, err := SealerFromEnv()
	if err != nil {
		return "", err
	}
	return s.Open(sealed)
}
