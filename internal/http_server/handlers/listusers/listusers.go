package listusers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	resp "user_service/internal/lib/api/response"
	sl "user_service/internal/lib/logger"
	"user_service/internal/models"
	"user_service/internal/users"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type Response struct {
	resp.Response
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int64  `json:"total_pages"`
}

// * New отдаёт страницу пользователей. Ставится за RequireAdmin.
// page и limit берутся из query, нечисловые значения приводятся
// к значениям по умолчанию; границы окончательно зажимает сервис.
func New(
	log *slog.Logger,
	usersService *users.Users,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.listusers.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", 10)

		list, total, err := usersService.ListUsers(r.Context(), page, limit)
		if err != nil {
			log.Error("failed to list users", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		page, limit = users.ClampPage(page, limit)

		totalPages := (total + int64(limit) - 1) / int64(limit)

		apiUsers := make([]User, 0, len(list))
		for _, u := range list {
			apiUsers = append(apiUsers, toAPI(u))
		}

		render.JSON(w, r, Response{
			Response:   resp.OK(),
			Users:      apiUsers,
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		})
	}
}

func toAPI(u models.User) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}

	return v
}
