package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rmarchan/parchis-arena/server/internal/model"
	"github.com/rmarchan/parchis-arena/server/internal/repository"
	"github.com/rmarchan/parchis-arena/server/pkg/parchis"
)

var (
	ErrNotRoomCreator = errors.New("only the room creator can do that")
	ErrRoomInGame     = errors.New("room already has a game in progress")
	ErrNotEnough      = errors.New("need at least 2 players to start")
)

// RoomService handles room lifecycle: creation, seating, bots, and the
// handoff into a game session.
type RoomService struct {
	rooms    repository.RoomStore
	sessions *SessionService
}

// NewRoomService creates a RoomService.
func NewRoomService(rooms repository.RoomStore, sessions *SessionService) *RoomService {
	return &RoomService{rooms: rooms, sessions: sessions}
}

// CreateRoom opens a new room with the creator seated. An empty color picks
// the first free one.
func (s *RoomService) CreateRoom(name, creatorID, creatorName, color string) (*model.Room, error) {
	if name == "" {
		name = fmt.Sprintf("%s's room", creatorName)
	}
	room, err := s.rooms.Create(name, creatorID, creatorName, color)
	if err != nil {
		return nil, err
	}
	log.Info().Str("roomId", room.ID).Str("creatorId", creatorID).Msg("Room created")
	return room, nil
}

// JoinRoom seats a user in a waiting room.
func (s *RoomService) JoinRoom(roomID, userID, displayName, color string) (*model.Room, error) {
	if s.sessionRunning(roomID) {
		return nil, ErrRoomInGame
	}
	room, err := s.rooms.AddMember(roomID, model.RoomMember{
		UserID:      userID,
		DisplayName: displayName,
		Color:       color,
		JoinedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// AddBot seats a bot. Only the creator can add bots.
func (s *RoomService) AddBot(roomID, requesterID, level, color string) (*model.Room, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	if room.CreatorID != requesterID {
		return nil, ErrNotRoomCreator
	}
	if s.sessionRunning(roomID) {
		return nil, ErrRoomInGame
	}
	n := len(room.Members) - room.HumanCount() + 1
	return s.rooms.AddMember(roomID, model.RoomMember{
		UserID:      "bot-" + uuid.NewString(),
		DisplayName: fmt.Sprintf("Bot %d", n),
		Color:       color,
		IsBot:       true,
		BotLevel:    level,
		JoinedAt:    time.Now(),
	})
}

// RemoveBot unseats a bot before the game starts. Only the creator can
// remove bots.
func (s *RoomService) RemoveBot(roomID, requesterID, botID string) error {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return repository.ErrRoomNotFound
	}
	if room.CreatorID != requesterID {
		return ErrNotRoomCreator
	}
	if s.sessionRunning(roomID) {
		return ErrRoomInGame
	}
	for _, m := range room.Members {
		if m.UserID == botID && m.IsBot {
			_, err := s.rooms.RemoveMember(roomID, botID)
			return err
		}
	}
	return repository.ErrNotInRoom
}

// LeaveRoom unseats a user. Leaving mid-game surrenders first; the room is
// torn down when the last human leaves.
func (s *RoomService) LeaveRoom(roomID, userID string) error {
	if s.sessionRunning(roomID) {
		if err := s.sessions.Surrender(roomID, userID); err != nil &&
			!errors.Is(err, parchis.ErrUnknownPlayer) && !errors.Is(err, ErrSessionNotFound) {
			return err
		}
	}
	empty, err := s.rooms.RemoveMember(roomID, userID)
	if err != nil {
		return err
	}
	if empty {
		log.Info().Str("roomId", roomID).Msg("Last human left, tearing down room")
		s.sessions.RemoveSession(roomID)
		s.rooms.Delete(roomID)
	}
	return nil
}

// StartGame begins the room's session. Only the creator can start, and the
// roster needs at least two seats. Starting an already-running room is a
// no-op thanks to CreateSession's get-or-create semantics.
func (s *RoomService) StartGame(roomID, requesterID string) error {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return repository.ErrRoomNotFound
	}
	if room.CreatorID != requesterID {
		return ErrNotRoomCreator
	}
	if len(room.Members) < 2 {
		return ErrNotEnough
	}
	seats := make([]parchis.Seat, 0, len(room.Members))
	for _, m := range room.Members {
		seats = append(seats, parchis.Seat{
			ID:       m.UserID,
			Name:     m.DisplayName,
			Color:    parchis.Color(m.Color),
			IsBot:    m.IsBot,
			BotLevel: m.BotLevel,
		})
	}
	_, err := s.sessions.CreateSession(roomID, room.Name, seats)
	return err
}

// GetRoom returns the room by ID.
func (s *RoomService) GetRoom(roomID string) (*model.Room, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return room, nil
}

// ListRooms returns all open rooms, newest first.
func (s *RoomService) ListRooms() []model.Room {
	return s.rooms.List()
}

func (s *RoomService) sessionRunning(roomID string) bool {
	snap, err := s.sessions.Snapshot(roomID)
	if err != nil {
		return false
	}
	return snap.Status == parchis.StatusInProgress
}
