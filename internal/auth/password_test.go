// internal/auth/password_test.go
package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testParams keeps hashing fast in tests.
var testParams = &params{
	memory:      8 * 1024,
	iterations:  1,
	parallelism: 1,
	saltLength:  16,
	keyLength:   32,
}

func TestCreateHashAndCompare(t *testing.T) {
	encoded, err := CreateHash("correct horse battery staple", testParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	match, err := ComparePasswordAndHash("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = ComparePasswordAndHash("incorrect horse", encoded)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestCompareUsesParamsFromHash(t *testing.T) {
	// A hash made with non-default params must still verify; the cost
	// settings travel inside the encoded string.
	encoded, err := CreateHash("secret", testParams)
	require.NoError(t, err)

	match, err := ComparePasswordAndHash("secret", encoded)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestCompareRejectsMalformedHash(t *testing.T) {
	_, err := ComparePasswordAndHash("secret", "not-an-encoded-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestCompareRejectsWrongArgonVersion(t *testing.T) {
	encoded, err := CreateHash("secret", testParams)
	require.NoError(t, err)

	tampered := strings.Replace(encoded, "$v=19$", "$v=18$", 1)
	_, err = ComparePasswordAndHash("secret", tampered)
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}
