package contact

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"DonorLink/entity"
	"DonorLink/internal/lib/api/response"
	"DonorLink/internal/lib/sl"
	"DonorLink/internal/service/chat"
)

type Core interface {
	CreateContact(adminID, clientID string) (*entity.Contact, bool, error)
	ListContacts(viewerID string) ([]entity.ContactSummary, error)
	GetHistory(viewerID, contactID string) ([]entity.ChatEntry, error)
	MarkRead(viewerID, contactID, counterpartID string) (int64, error)
}

// fail maps chat service errors onto HTTP statuses and renders the error
// envelope.
func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, chat.ErrValidation):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
	case errors.Is(err, chat.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(err.Error()))
	case errors.Is(err, chat.ErrForbidden):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error(err.Error()))
	default:
		logger.Error("contact operation", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal Server Error"))
	}
}
