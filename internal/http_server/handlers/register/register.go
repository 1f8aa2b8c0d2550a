package register

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
	Username string `json:"username" validate:"required,min=3,max=15"`
	Email    string `json:"email" validate:"required,email,max=50"`
	Pass     string `json:"password" validate:"required,min=6"`
}

type Response struct {
	resp.Response
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	usersService *users.Users,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

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

		userID, err := usersService.Register(ctx, req.Username, req.Email, req.Pass)
		if err != nil {
			if errors.Is(err, users.ErrUserExists) {
				log.Warn("user already exists")

				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("user already exists"))

				return
			}

			log.Error("failed to register user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("User registered", slog.Int64("id", userID))

		ResponseOK(w, r, userID)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, userID int64) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Response: resp.OK(),
		UserID:   userID,
		Message:  "user registered successfully",
	})
}
