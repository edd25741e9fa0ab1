package utils

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestKey(t *testing.T) {
	t.Helper()
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", KeySize)))
	t.Setenv(EncKeyEnv, key)
}

func TestPasswordRoundTrip(t *testing.T) {
	setTestKey(t)

	enc, err := EncryptPasswordString("s3cr&t")
	require.NoError(t, err)
	assert.NotContains(t, enc, "s3cr&t")

	again, err := EncryptPasswordString("s3cr&t")
	require.NoError(t, err)
	assert.NotEqual(t, enc, again, "nonce must differ per seal")

	plain, err := DecryptPasswordString(enc)
	require.NoError(t, err)
	assert.Equal(t, "s3cr&t", plain)
}

func TestGenerateKey(t *testing.T) {
	encoded, err := GenerateKey()
	require.NoError(t, err)

	t.Setenv(EncKeyEnv, encoded+"\n")
	s, err := SealerFromEnv()
	require.NoError(t, err)

	sealed, err := s.Seal("pw")
	require.NoError(t, err)
	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "pw", plain)
}

func TestOpenWithOtherKeyFails(t *testing.T) {
	a, err := NewSealer([]byte(strings.Repeat("a", KeySize)))
	require.NoError(t, err)
	b, err := NewSealer([]byte(strings.Repeat("b", KeySize)))
	require.NoError(t, err)

	sealed, err := a.Seal("pw")
	require.NoError(t, err)
	_, err = b.Open(sealed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong key")
}

func TestDecryptPasswordErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		t.Setenv(EncKeyEnv, "")
		_, err := DecryptPasswordString("AAAA")
		require.ErrorIs(t, err, ErrNoKey)
	})

	t.Run("short key", func(t *testing.T) {
		t.Setenv(EncKeyEnv, base64.StdEncoding.EncodeToString([]byte("short")))
		_, err := DecryptPasswordString("AAAA")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "32 bytes")
	})

	t.Run("short ciphertext", func(t *testing.T) {
		setTestKey(t)
		_, err := DecryptPasswordString(base64.StdEncoding.EncodeToString([]byte{1, 2}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too short")
	})

	t.Run("not base64", func(t *testing.T) {
		setTestKey(t)
		_, err := DecryptPasswordString("%%%")
		require.Error(t, err)
	})
}
