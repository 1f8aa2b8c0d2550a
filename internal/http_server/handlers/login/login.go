package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resp "user_service/internal/lib/api/response"
	sl "user_service/internal/lib/logger"
	"user_service/internal/users"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
	Pass  string `json:"password" validate:"required,min=6"`
}

type Response struct {
	resp.Response
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	usersService *users.Users,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

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

		accessToken, err := usersService.Login(ctx, req.Email, req.Pass)
		if err != nil {
			// Одинаковый ответ для неизвестного email и неверного пароля.
			if errors.Is(err, users.ErrInvalidCredentials) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("invalid credentials"))

				return
			}

			log.Error("failed to login user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("User logged in successfully")

		ResponseOK(w, r, accessToken)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, accessToken string) {
	render.JSON(w, r, Response{
		Response:    resp.OK(),
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}
