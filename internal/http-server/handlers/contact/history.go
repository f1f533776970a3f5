package contact

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"DonorLink/internal/lib/api/cont"
	"DonorLink/internal/lib/api/response"
	"DonorLink/internal/lib/sl"
)

// History serves the full ordered message list of one contact for initial
// chat-window population and backfill after reconnect. A missing contact_id
// means no conversation is selected and yields an empty list.
func History(log *slog.Logger, handler Core) http.HandlerFunc {
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

		contactID := r.URL.Query().Get("contact_id")

		entries, err := handler.GetHistory(caller.UserID, contactID)
		if err != nil {
			fail(w, r, logger, err)
			return
		}

		render.JSON(w, r, response.Ok(entries))
	}
}
