package hasher_test

import (
	"testing"

	"user_service/internal/lib/hasher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify_RoundTrip(t *testing.T) {
	passwords := []string{
		"password123",
		"p",
		"совершенно секретно",
		"  spaces  everywhere  ",
	}

	for _, password := range passwords {
		digest, err := hasher.Hash(password)
		require.NoError(t, err)
		require.NotEmpty(t, digest)
		require.NotEqual(t, password, digest)

		assert.True(t, hasher.Verify(digest, password))
		assert.False(t, hasher.Verify(digest, password+"x"))
	}
}

func TestHash_UniqueSaltPerCall(t *testing.T) {
	first, err := hasher.Hash("password123")
	require.NoError(t, err)

	second, err := hasher.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify(first, "password123"))
	assert.True(t, hasher.Verify(second, "password123"))
}

func TestVerify_MalformedDigest(t *testing.T) {
	cases := []string{
		"",
		"not-a-bcrypt-digest",
		"$2a$broken",
		"plaintext-password",
	}

	for _, digest := range cases {
		assert.False(t, hasher.Verify(digest, "password123"), "digest: %q", digest)
	}
}
