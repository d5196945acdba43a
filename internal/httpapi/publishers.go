package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bluemoxon/bluemoxon/internal/bookstore"
	"github.com/bluemoxon/bluemoxon/internal/domain"
)

var errInvalidPublisherID = errors.New("invalid publisher id")

// publisherPayload is the request body for creating publishers. The tier is
// never accepted from clients; it starts unranked and only the
// retier-publishers command moves it.
type publisherPayload struct {
	Name string `json:"name"`
}

func (s *Server) handleCreatePublisher(w http.ResponseWriter, r *http.Request) {
	var payload publisherPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	publisher, err := s.publishers.InsertPublisher(r.Context(), domain.Publisher{Name: payload.Name})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBlankPublisherName):
			writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, bookstore.ErrPublisherExists):
			writeError(w, http.StatusConflict, err)
		default:
			s.logServerError(r, err)
			writeError(w, http.StatusInternalServerError, errInternal)
		}
		return
	}

	writeJSON(w, http.StatusCreated, publisher)
}

func (s *Server) handleListPublishers(w http.ResponseWriter, r *http.Request) {
	publishers, err := s.publishers.Publishers(r.Context())
	if err != nil {
		s.logServerError(r, err)
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	writeJSON(w, http.StatusOK, publishers)
}

func (s *Server) handleGetPublisher(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidPublisherID)
		return
	}

	publisher, err := s.publishers.PublisherByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, bookstore.ErrPublisherNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}

		s.logServerError(r, err)
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	writeJSON(w, http.StatusOK, publisher)
}
