package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resp "user_service/internal/lib/api/response"
	sl "user_service/internal/lib/logger"
	"user_service/internal/middleware/authn"
	"user_service/internal/models"
	"user_service/internal/users"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=15"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=50"`
	Pass     *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

type Response struct {
	resp.Response
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// Хеш пароля наружу не отдаётся ни в одном ответе.
func toAPI(u models.User) *User {
	return &User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func Get(
	log *slog.Logger,
	usersService *users.Users,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.Get"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserIDFromContext(r.Context())
		if !ok {
			log.Warn("no identity in context")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("missing bearer token"))

			return
		}

		user, err := usersService.Profile(r.Context(), userID)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("user not found"))

				return
			}

			log.Error("failed to get profile", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			User:     toAPI(user),
		})
	}
}

func Update(
	log *slog.Logger,
	validate *validator.Validate,
	usersService *users.Users,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.Update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserIDFromContext(r.Context())
		if !ok {
			log.Warn("no identity in context")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("missing bearer token"))

			return
		}

		var req UpdateRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := usersService.UpdateProfile(ctx, userID, req.Username, req.Email, req.Pass)
		if err != nil {
			switch {
			case errors.Is(err, users.ErrEmptyUpdate):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("nothing to update"))
			case errors.Is(err, users.ErrUserExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("username or email already taken"))
			case errors.Is(err, users.ErrUserNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("user not found"))
			default:
				log.Error("failed to update profile", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))
			}

			return
		}

		log.Info("Profile updated", slog.Int64("uid", userID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			User:     toAPI(user),
			Message:  "profile updated successfully",
		})
	}
}

// * Delete удаляет аккаунт текущего пользователя. Повторный вызов с ещё
// живым токеном получает 404 — удаление идемпотентно на границе API.
func Delete(
	log *slog.Logger,
	usersService *users.Users,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.Delete"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserIDFromContext(r.Context())
		if !ok {
			log.Warn("no identity in context")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("missing bearer token"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := usersService.DeleteAccount(ctx, userID); err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("user not found"))

				return
			}

			log.Error("failed to delete account", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("Account deleted", slog.Int64("uid", userID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  "user deleted successfully",
		})
	}
}
