package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bluemoxon/bluemoxon/internal/bookstore"
	"github.com/bluemoxon/bluemoxon/internal/domain"
)

var (
	errInvalidBookID   = errors.New("invalid book id")
	errInvalidJSONBody = errors.New("invalid json body")
	errVersionConflict = errors.New("book was modified concurrently, reload and retry")
)

// bookPayload is the request body for creating and updating books.
//
// Optional fields mirror domain.Book: absent means "not recorded", and a
// present zero is a real value. PurchasePriceCents of 0 in particular must
// survive the round trip.
type bookPayload struct {
	Title              string                 `json:"title"`
	Author             string                 `json:"author"`
	PublisherID        *uuid.UUID             `json:"publisher_id"`
	Edition            *string                `json:"edition"`
	Binding            *string                `json:"binding"`
	Condition          *domain.ConditionGrade `json:"condition"`
	PurchasePriceCents *int64                 `json:"purchase_price_cents"`
	Provenance         *string                `json:"provenance"`
	AcquiredAt         *time.Time             `json:"acquired_at"`
	Notes              *string                `json:"notes"`

	// Version is the expected version for updates. When zero, the server
	// resolves the current version itself and retries on conflicts.
	Version uint `json:"version"`
}

func (p bookPayload) toDomain() domain.Book {
	return domain.Book{
		Title:              p.Title,
		Author:             p.Author,
		PublisherID:        p.PublisherID,
		Edition:            p.Edition,
		Binding:            p.Binding,
		Condition:          p.Condition,
		PurchasePriceCents: p.PurchasePriceCents,
		Provenance:         p.Provenance,
		AcquiredAt:         p.AcquiredAt,
		Notes:              p.Notes,
		Version:            p.Version,
	}
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var payload bookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	book, err := s.books.InsertBook(r.Context(), payload.toDomain())
	if err != nil {
		s.writeBookError(w, r, err)
		return
	}

	if user, ok := UserFromContext(r.Context()); ok {
		s.logger.InfoContext(r.Context(), "book added to collection",
			"book_id", book.ID.String(),
			"added_by", user.Email,
		)
	}

	writeJSON(w, http.StatusCreated, book)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBookID)
		return
	}

	book, err := s.books.BookByID(r.Context(), id)
	if err != nil {
		s.writeBookError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	filter, err := bookFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	books, err := s.books.Books(r.Context(), filter)
	if err != nil {
		s.writeBookError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBookID)
		return
	}

	var payload bookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	book := payload.toDomain()
	book.ID = id

	var updated domain.Book

	if payload.Version != 0 {
		// The client pinned a version: a mismatch is a real conflict
		// the client must resolve, so no retry.
		updated, err = s.books.UpdateBook(r.Context(), book)
	} else {
		// No version pinned: resolve the current version ourselves and
		// absorb races with other writers.
		err = bookstore.RetryOnConflict(r.Context(), func(ctx context.Context) error {
			current, lookupErr := s.books.BookByID(ctx, id)
			if lookupErr != nil {
				return lookupErr
			}

			book.Version = current.Version

			var updateErr error
			updated, updateErr = s.books.UpdateBook(ctx, book)
			return updateErr
		})
	}

	if err != nil {
		s.writeBookError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBookID)
		return
	}

	if err := s.books.DeleteBook(r.Context(), id); err != nil {
		s.writeBookError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// writeBookError maps storage and validation errors to the API error contract.
func (s *Server) writeBookError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, bookstore.ErrBookNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, bookstore.ErrConcurrencyConflict):
		writeError(w, http.StatusConflict, errVersionConflict)
	case errors.Is(err, domain.ErrBlankTitle),
		errors.Is(err, domain.ErrBlankAuthor),
		errors.Is(err, domain.ErrNegativePurchasePrice),
		errors.Is(err, domain.ErrUnknownConditionGrade):
		writeError(w, http.StatusBadRequest, err)
	default:
		s.logServerError(r, err)
		writeError(w, http.StatusInternalServerError, errInternal)
	}
}

// bookFilterFromQuery translates list query parameters into a BookFilter.
func bookFilterFromQuery(r *http.Request) (bookstore.BookFilter, error) {
	builder := bookstore.BuildBookFilter()
	query := r.URL.Query()

	if v := query.Get("publisher_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return bookstore.BookFilter{}, errors.New("invalid publisher_id")
		}
		builder = builder.WithPublisher(id)
	}

	if v := query.Get("condition"); v != "" {
		grade, err := domain.ParseConditionGrade(v)
		if err != nil {
			return bookstore.BookFilter{}, err
		}
		builder = builder.WithCondition(grade)
	}

	if v := query.Get("q"); v != "" {
		builder = builder.WithSearch(v)
	}

	if v := query.Get("acquired_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return bookstore.BookFilter{}, errors.New("invalid acquired_from, want RFC 3339")
		}
		builder = builder.AcquiredFrom(t)
	}

	if v := query.Get("acquired_until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return bookstore.BookFilter{}, errors.New("invalid acquired_until, want RFC 3339")
		}
		builder = builder.AcquiredUntil(t)
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return bookstore.BookFilter{}, errors.New("invalid limit")
		}
		builder = builder.WithLimit(uint(limit))
	}

	if v := query.Get("offset"); v != "" {
		offset, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return bookstore.BookFilter{}, errors.New("invalid offset")
		}
		builder = builder.WithOffset(uint(offset))
	}

	return builder.Finalize(), nil
}
