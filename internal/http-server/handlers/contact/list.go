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

// List serves the caller's contact feed: every conversation they are part
// of, with participant profiles, the latest message and the unread count.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
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

		contacts, err := handler.ListContacts(caller.UserID)
		if err != nil {
			fail(w, r, logger, err)
			return
		}

		render.JSON(w, r, response.Ok(contacts))
	}
}
