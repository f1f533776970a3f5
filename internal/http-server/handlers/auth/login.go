package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"DonorLink/entity"
	"DonorLink/internal/lib/api/response"
	"DonorLink/internal/lib/sl"
	authservice "DonorLink/internal/service/auth"
)

func Login(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.auth")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.LoginRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("failed to bind login request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		user, token, err := handler.Login(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, authservice.ErrInvalidCredentials) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid email or password"))
				return
			}
			logger.Error("login", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to log in"))
			return
		}

		logger.Info("user logged in", slog.String("user", user.Username))

		render.JSON(w, r, response.Ok(tokenResponse{
			User:        user,
			AccessToken: token,
		}))
	}
}
