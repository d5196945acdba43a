package httpapi

import (
	"errors"
	"net/http"
	"strconv"
)

const defaultRecentLimit = 10

var errInvalidRecentLimit = errors.New("invalid limit")

// The stats routes are read-only by construction: every handler here only
// queries. Administrative mutations like publisher retiering are CLI-only.

func (s *Server) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.stats.Overview(r.Context())
	if err != nil {
		s.logServerError(r, err)
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleStatsConditions(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.stats.ByCondition(r.Context())
	if err != nil {
		s.logServerError(r, err)
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleStatsTiers(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.stats.ByPublisherTier(r.Context())
	if err != nil {
		s.logServerError(r, err)
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleStatsRecent(w http.ResponseWriter, r *http.Request) {
	limit := uint(defaultRecentLimit)

	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, errInvalidRecentLimit)
			return
		}
		limit = uint(parsed)
	}

	books, err := s.stats.RecentAcquisitions(r.Context(), limit)
	if err != nil {
		s.logServerError(r, err)
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	writeJSON(w, http.StatusOK, books)
}
