package jwt_test

import (
	"testing"
	"time"

	libjwt "user_service/internal/lib/jwt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestNewToken_ParseToken_RoundTrip(t *testing.T) {
	token, err := libjwt.NewToken(42, secret, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := libjwt.ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestNewToken_SubjectIsString(t *testing.T) {
	token, err := libjwt.NewToken(42, secret, time.Minute)
	require.NoError(t, err)

	claims := jwtv5.MapClaims{}
	_, err = jwtv5.ParseWithClaims(token, claims, func(t *jwtv5.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)

	sub, ok := claims["sub"].(string)
	require.True(t, ok, "sub claim must be serialized as a string")
	assert.Equal(t, "42", sub)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := libjwt.NewToken(42, secret, -time.Minute)
	require.NoError(t, err)

	_, err = libjwt.ParseToken(token, secret)
	assert.ErrorIs(t, err, libjwt.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := libjwt.NewToken(42, secret, time.Minute)
	require.NoError(t, err)

	_, err = libjwt.ParseToken(token, "another-secret")
	assert.ErrorIs(t, err, libjwt.ErrInvalidSignature)
}

func TestParseToken_Malformed(t *testing.T) {
	cases := []string{
		"",
		"garbage",
		"a.b",
		"not.a.token",
	}

	for _, raw := range cases {
		_, err := libjwt.ParseToken(raw, secret)
		assert.ErrorIs(t, err, libjwt.ErrTokenMalformed, "token: %q", raw)
	}
}

func TestParseToken_NumericSubjectRejected(t *testing.T) {
	claims := jwtv5.MapClaims{
		"sub": int64(42),
		"exp": time.Now().Add(time.Minute).Unix(),
	}

	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = libjwt.ParseToken(token, secret)
	assert.ErrorIs(t, err, libjwt.ErrTokenMalformed)
}
