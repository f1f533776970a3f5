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

type tokenResponse struct {
	User        *entity.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

func Register(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.auth")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.RegisterRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("failed to bind register request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		user, token, err := handler.Register(req)
		if err != nil {
			if errors.Is(err, authservice.ErrEmailExists) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("This Email already exists"))
				return
			}
			logger.Error("register user", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to register user"))
			return
		}

		logger.Info("user registered", slog.String("user", user.Username))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(tokenResponse{
			User:        user,
			AccessToken: token,
		}))
	}
}
