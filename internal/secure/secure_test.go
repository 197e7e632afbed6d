package secure

import (
	"encoding/base64"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func newTestEncryptor(t *testing.T, alg Algorithm) Encryptor {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	enc, err := NewEncryptor(Config{Algorithm: alg, Key: key})
	require.NoError(t, err)
	return enc
}

func TestHash_KnownVector(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", Hash("hello"))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(""))
}

func TestHash_DeterministicAndDistinct(t *testing.T) {
	a1, a2, b := Hash("alpha"), Hash("alpha"), Hash("beta")

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Regexp(t, hexDigest, a1)
}

func TestGenerateKey(t *testing.T) {
	k1, err := GenerateKey()
	require.NoError(t, err)
	k2, err := GenerateKey()
	require.NoError(t, err)

	assert.Len(t, k1, KeySize)
	assert.NotEqual(t, k1, k2)
}

func TestEncryptor_RoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmAESGCM, AlgorithmChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			enc := newTestEncryptor(t, alg)
			assert.Equal(t, alg, enc.Algorithm())

			token, err := enc.Encrypt("top secret")
			require.NoError(t, err)

			_, err = base64.URLEncoding.DecodeString(token)
			require.NoError(t, err, "token must be URL-safe base64")

			plain, err := enc.Decrypt(token)
			require.NoError(t, err)
			assert.Equal(t, "top secret", plain)
		})
	}
}

func TestEncryptor_RandomizedNonce(t *testing.T) {
	enc := newTestEncryptor(t, AlgorithmAESGCM)

	t1, err := enc.Encrypt("same text")
	require.NoError(t, err)
	t2, err := enc.Encrypt("same text")
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
}

func TestEncryptor_EmptyAlgorithmDefaultsToAESGCM(t *testing.T) {
	enc := newTestEncryptor(t, "")
	assert.Equal(t, AlgorithmAESGCM, enc.Algorithm())
}

func TestEncryptor_OtherKeyCannotDecrypt(t *testing.T) {
	a := newTestEncryptor(t, AlgorithmAESGCM)
	b := newTestEncryptor(t, AlgorithmAESGCM)

	token, err := a.Encrypt("payload")
	require.NoError(t, err)

	_, err = b.Decrypt(token)
	assert.Error(t, err)
}

func TestEncryptor_TamperedToken(t *testing.T) {
	enc := newTestEncryptor(t, AlgorithmChaCha20)
	token, err := enc.Encrypt("payload")
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(token)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = enc.Decrypt(base64.URLEncoding.EncodeToString(raw))
	assert.Error(t, err)
}

func TestEncryptor_MalformedToken(t *testing.T) {
	enc := newTestEncryptor(t, AlgorithmAESGCM)

	_, err := enc.Decrypt("not base64 !!")
	assert.True(t, errors.Is(err, ErrMalformedToken))

	_, err = enc.Decrypt(base64.URLEncoding.EncodeToString([]byte("short")))
	assert.True(t, errors.Is(err, ErrMalformedToken))
}

func TestNewEncryptor_Errors(t *testing.T) {
	_, err := NewEncryptor(Config{Key: Key("too short")})
	assert.ErrorIs(t, err, ErrInvalidKey)

	key, err := GenerateKey()
	require.NoError(t, err)
	_, err = NewEncryptor(Config{Algorithm: "rot13", Key: key})
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
