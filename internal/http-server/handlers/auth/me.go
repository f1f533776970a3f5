package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"DonorLink/internal/lib/api/cont"
	"DonorLink/internal/lib/api/response"
	"DonorLink/internal/lib/sl"
)

func Me(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.auth")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		caller := cont.GetUser(r.Context())
		if caller == nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}

		user, err := handler.GetUser(caller.UserID)
		if err != nil {
			logger.Error("get user", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load user"))
			return
		}
		if user == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("User not found"))
			return
		}

		render.JSON(w, r, response.Ok(user))
	}
}
