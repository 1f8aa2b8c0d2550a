package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenMalformed   = errors.New("malformed token")
)

// * NewToken выпускает подписанный access токен.
// Идентификатор пользователя кладётся в sub строкой — этого требует
// контракт клейма RegisteredClaims.Subject.
func NewToken(userID int64, secret string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

// * ParseToken проверяет подпись и срок действия и возвращает
// идентификатор пользователя из sub.
func ParseToken(tokenStr, secret string) (int64, error) {
	const op = "jwt.ParseToken"

	claims := jwt.MapClaims{}

	parsedToken, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%s: unexpected signing method", op)
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrTokenExpired
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return 0, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return 0, ErrTokenMalformed
		default:
			return 0, fmt.Errorf("%s: failed to parse token: %w", op, err)
		}
	}

	if !parsedToken.Valid {
		return 0, ErrInvalidSignature
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrTokenMalformed
	}

	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrTokenMalformed
	}

	return userID, nil
}
