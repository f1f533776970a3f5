package user

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"DonorLink/internal/lib/api/response"
	"DonorLink/internal/lib/sl"
)

// List serves the user directory, optionally filtered by role, so an
// administrator-side actor can pick a client to start a contact with.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.user")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		role := r.URL.Query().Get("role")

		users, err := handler.ListUsers(role)
		if err != nil {
			logger.Error("list users", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list users"))
			return
		}

		render.JSON(w, r, response.Ok(users))
	}
}
