package handler

import (
	"errors"
	"net/http"

	"github.com/rmarchan/parchis-arena/server/internal/auth"
	"github.com/rmarchan/parchis-arena/server/internal/service"
	"github.com/rmarchan/parchis-arena/server/pkg/parchis"
)

// GameHandler handles in-game action endpoints.
type GameHandler struct {
	sessionSvc *service.SessionService
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(sessionSvc *service.SessionService) *GameHandler {
	return &GameHandler{sessionSvc: sessionSvc}
}

// GetState handles GET /api/v1/rooms/{id}/game
func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessionSvc.Snapshot(r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Roll handles POST /api/v1/rooms/{id}/game/roll
func (h *GameHandler) Roll(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	dice, err := h.sessionSvc.Roll(r.PathValue("id"), userID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dice": dice})
}

// Move handles POST /api/v1/rooms/{id}/game/move
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Piece int `json:"piece"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.sessionSvc.Move(r.PathValue("id"), userID, req.Piece)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// LegalMoves handles GET /api/v1/rooms/{id}/game/moves
func (h *GameHandler) LegalMoves(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	moves, err := h.sessionSvc.LegalMoves(r.PathValue("id"), userID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	if moves == nil {
		moves = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pieces": moves})
}

// Surrender handles POST /api/v1/rooms/{id}/game/surrender
func (h *GameHandler) Surrender(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if err := h.sessionSvc.Surrender(r.PathValue("id"), userID); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "surrendered"})
}

// writeGameError maps game errors to HTTP status codes.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, parchis.ErrUnknownPlayer):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, parchis.ErrNotYourTurn),
		errors.Is(err, parchis.ErrAlreadyRolled),
		errors.Is(err, parchis.ErrNoRoll),
		errors.Is(err, parchis.ErrNotInProgress),
		errors.Is(err, parchis.ErrAlreadyOver):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, parchis.ErrIllegalMove):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
