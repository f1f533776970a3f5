package contact

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"DonorLink/entity"
	"DonorLink/internal/lib/api/cont"
	"DonorLink/internal/lib/api/response"
	"DonorLink/internal/lib/sl"
)

type createRequest struct {
	Client string `json:"client"`
}

type createResponse struct {
	Contact        *entity.Contact `json:"contact"`
	AlreadyExisted bool            `json:"already_existed"`
}

// Create opens a contact between the caller (administrator side) and a
// client. Idempotent: an existing contact for the pair is returned as-is.
func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.contact")

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

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.Client == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("No client provided"))
			return
		}

		contact, existed, err := handler.CreateContact(caller.UserID, req.Client)
		if err != nil {
			fail(w, r, logger, err)
			return
		}

		logger.Debug("contact create",
			slog.String("contact", contact.ID.Hex()),
			slog.Bool("already_existed", existed),
		)

		render.JSON(w, r, response.Ok(createResponse{
			Contact:        contact,
			AlreadyExisted: existed,
		}))
	}
}
