package logout

import (
	"log/slog"
	"net/http"

	resp "user_service/internal/lib/api/response"
	"user_service/internal/middleware/authn"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Message string `json:"message"`
}

// * New завершает сессию. Токены stateless, сервер их не отзывает:
// клиент просто выбрасывает токен, а сервер подтверждает выход.
// Ставится за RequireAuth, так что сюда доходят только валидные токены.
func New(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, _ := authn.UserIDFromContext(r.Context())

		log.Info("user logged out", slog.Int64("uid", userID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  "logged out successfully",
		})
	}
}
