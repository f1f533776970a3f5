package contact

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"DonorLink/internal/lib/api/cont"
	"DonorLink/internal/lib/api/response"
	"DonorLink/internal/lib/sl"
)

type markReadRequest struct {
	Counterpart string `json:"counterpart"`
}

type markReadResponse struct {
	Updated int64 `json:"updated"`
}

// MarkRead flips every unread message from the named counterpart in the
// contact to read. Zero updates is a valid outcome and still returns 200.
func MarkRead(log *slog.Logger, handler Core) http.HandlerFunc {
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

		contactID := chi.URLParam(r, "contactId")

		var req markReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.Counterpart == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("No counterpart provided"))
			return
		}

		updated, err := handler.MarkRead(caller.UserID, contactID, req.Counterpart)
		if err != nil {
			fail(w, r, logger, err)
			return
		}

		logger.Debug("messages marked read",
			slog.String("contact", contactID),
			slog.Int64("updated", updated),
		)

		render.JSON(w, r, response.Ok(markReadResponse{Updated: updated}))
	}
}
