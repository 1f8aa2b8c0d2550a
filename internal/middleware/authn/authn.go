package authn

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	resp "user_service/internal/lib/api/response"
	"user_service/internal/lib/jwt"
	sl "user_service/internal/lib/logger"
	"user_service/internal/models"
	"user_service/internal/storage"

	"github.com/go-chi/render"
)

type ctxKey struct{}

var userIDKey = ctxKey{}

type UserProvider interface {
	UserByID(ctx context.Context, id int64) (models.User, error)
}

// * UserIDFromContext достаёт идентификатор, положенный RequireAuth.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// * RequireAuth проверяет bearer токен и кладёт идентификатор
// пользователя в контекст запроса. При любой ошибке отвечает 401,
// внутренний хендлер не вызывается.
func RequireAuth(log *slog.Logger, tokenSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn.RequireAuth"

			log := log.With(slog.String("op", op))

			token, ok := bearerToken(r)
			if !ok {
				log.Info("missing or malformed authorization header")

				unauthorized(w, r, "missing bearer token")

				return
			}

			userID, err := jwt.ParseToken(token, tokenSecret)
			if err != nil {
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					log.Info("token expired")
					unauthorized(w, r, "token expired")
				case errors.Is(err, jwt.ErrInvalidSignature):
					log.Warn("invalid token signature")
					unauthorized(w, r, "invalid token")
				default:
					log.Info("failed to parse token", sl.Err(err))
					unauthorized(w, r, "invalid token")
				}

				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// * RequireAdmin пускает дальше только админов. Ставится после
// RequireAuth. Аккаунт перечитывается из хранилища на каждый запрос:
// снятие флага действует сразу, не дожидаясь истечения токена.
// Исчезнувший аккаунт получает тот же 403, что и не-админ.
func RequireAdmin(log *slog.Logger, usrProvider UserProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn.RequireAdmin"

			log := log.With(slog.String("op", op))

			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				log.Warn("no identity in context")

				unauthorized(w, r, "missing bearer token")

				return
			}

			user, err := usrProvider.UserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					log.Warn("account not found", slog.Int64("uid", userID))

					forbidden(w, r)

					return
				}

				log.Error("failed to load user", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))

				return
			}

			if !user.IsAdmin {
				log.Info("admin access denied", slog.Int64("uid", userID))

				forbidden(w, r)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "

	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, prefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", false
	}

	return token, true
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Error(msg))
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusForbidden)
	render.JSON(w, r, resp.Error("admin access required"))
}
