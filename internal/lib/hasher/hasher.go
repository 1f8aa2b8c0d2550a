package hasher

import "golang.org/x/crypto/bcrypt"

// * Hash возвращает bcrypt-дайджест со встроенной случайной солью.
// Один и тот же пароль каждый раз даёт новый дайджест.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// * Verify сравнивает дайджест с паролем за константное время.
// На битый дайджест отвечает false, а не ошибкой.
func Verify(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
