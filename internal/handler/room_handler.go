package handler

import (
	"errors"
	"net/http"

	"github.com/rmarchan/parchis-arena/server/internal/auth"
	"github.com/rmarchan/parchis-arena/server/internal/repository"
	"github.com/rmarchan/parchis-arena/server/internal/service"
)

// RoomHandler handles room lifecycle endpoints.
type RoomHandler struct {
	roomSvc  *service.RoomService
	userRepo repository.UserRepository
}

// NewRoomHandler creates a RoomHandler.
func NewRoomHandler(roomSvc *service.RoomService, userRepo repository.UserRepository) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc, userRepo: userRepo}
}

// CreateRoom handles POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Name  string `json:"name,omitempty"`
		Color string `json:"color,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name, err := h.displayName(r, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	room, err := h.roomSvc.CreateRoom(req.Name, userID, name, req.Color)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// ListRooms handles GET /api/v1/rooms
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.roomSvc.ListRooms()
	if rooms == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// GetRoom handles GET /api/v1/rooms/{id}
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomSvc.GetRoom(r.PathValue("id"))
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// JoinRoom handles POST /api/v1/rooms/{id}/join
func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Color string `json:"color,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name, err := h.displayName(r, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	room, err := h.roomSvc.JoinRoom(r.PathValue("id"), userID, name, req.Color)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// AddBot handles POST /api/v1/rooms/{id}/bots
func (h *RoomHandler) AddBot(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Level string `json:"level,omitempty"`
		Color string `json:"color,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.roomSvc.AddBot(r.PathValue("id"), userID, req.Level, req.Color)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// RemoveBot handles DELETE /api/v1/rooms/{id}/bots/{botId}
func (h *RoomHandler) RemoveBot(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if err := h.roomSvc.RemoveBot(r.PathValue("id"), userID, r.PathValue("botId")); err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// LeaveRoom handles POST /api/v1/rooms/{id}/leave
func (h *RoomHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if err := h.roomSvc.LeaveRoom(r.PathValue("id"), userID); err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// StartGame handles POST /api/v1/rooms/{id}/start
func (h *RoomHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if err := h.roomSvc.StartGame(r.PathValue("id"), userID); err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (h *RoomHandler) displayName(r *http.Request, userID string) (string, error) {
	user, err := h.userRepo.FindByID(r.Context(), userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "Player", nil
	}
	return user.DisplayName, nil
}

// writeRoomError maps room service errors to HTTP status codes.
func writeRoomError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotRoomCreator):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrRoomFull),
		errors.Is(err, repository.ErrAlreadyInRoom),
		errors.Is(err, repository.ErrColorTaken),
		errors.Is(err, repository.ErrInvalidColor),
		errors.Is(err, repository.ErrNotInRoom),
		errors.Is(err, service.ErrRoomInGame),
		errors.Is(err, service.ErrNotEnough):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
