package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRandomSalt(t *testing.T) {
	t.Parallel()

	_, err := GetRandomSalt(nil, -1)
	assert.ErrorContains(t, err, "salt length is too small", "Expected error on negative salt length")

	salt, err := GetRandomSalt(nil, 10)
	require.NoError(t, err, "GetRandomSalt must not error")
	assert.Len(t, salt, 10, "GetRandomSalt should return a salt of the specified length")

	salt, err = GetRandomSalt([]byte("RAWR"), 12)
	require.NoError(t, err, "GetRandomSalt must not error")
	assert.Len(t, salt, 16, "GetRandomSalt should return a salt of the specified length plus input length")
}

func TestGetHMAC(t *testing.T) {
	t.Parallel()
	h, err := GetHMAC(HashSHA256, []byte("Hello,World"), []byte("1234"))
	require.NoError(t, err, "GetHMAC must not error")
	assert.Equal(t, "3644060c209e50168e08836ff89111cae03b87ce0baa9ac5b71c964fa8693e66", hex.EncodeToString(h), "GetHMAC should return the expected digest")

	_, err = GetHMAC(0, []byte("Hello,World"), []byte("1234"))
	assert.ErrorIs(t, err, errUnsupportedHashType, "Zero hash type should error")

	_, err = GetHMAC(1337, []byte("Hello,World"), []byte("1234"))
	assert.ErrorIs(t, err, errUnsupportedHashType, "Unknown hash type should error")
}

func TestBase64Encode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "aGVsbG8gZmVlcw==", Base64Encode([]byte("hello fees")), "Base64Encode should return the std encoding")
}
