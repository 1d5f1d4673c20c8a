package handler

import (
	"net/http"
	"strconv"

	"github.com/rmarchan/parchis-arena/server/internal/model"
	"github.com/rmarchan/parchis-arena/server/internal/repository"
)

const defaultMatchLimit = 20

// MatchHandler serves the archive of finished games.
type MatchHandler struct {
	matchRepo repository.MatchRepository
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(matchRepo repository.MatchRepository) *MatchHandler {
	return &MatchHandler{matchRepo: matchRepo}
}

// ListMatches handles GET /api/v1/matches. An optional user query parameter
// filters to matches that user played in.
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	limit := defaultMatchLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	var matches []model.Match
	var err error
	if userID := r.URL.Query().Get("user"); userID != "" {
		matches, err = h.matchRepo.ListByUser(r.Context(), userID, limit)
	} else {
		matches, err = h.matchRepo.ListRecent(r.Context(), limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if matches == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
