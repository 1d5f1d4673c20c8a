package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rmarchan/parchis-arena/server/internal/model"
)

// UserRepository defines user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// MatchRepository archives finished game sessions.
type MatchRepository interface {
	Insert(ctx context.Context, m *model.Match) error
	ListRecent(ctx context.Context, limit int) ([]model.Match, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Match, error)
}

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room already has 4 players")
	ErrAlreadyInRoom = errors.New("already a member of this room")
	ErrColorTaken    = errors.New("color already taken")
	ErrInvalidColor  = errors.New("invalid color")
	ErrNotInRoom     = errors.New("not a member of this room")
)

// RoomStore is the live room-membership registry. Rooms are in-process and
// read-mostly from the game core's point of view: the session layer only
// reads rosters at start.
type RoomStore interface {
	Create(name, creatorID, creatorName, color string) (*model.Room, error)
	Get(id string) (*model.Room, bool)
	List() []model.Room
	AddMember(roomID string, m model.RoomMember) (*model.Room, error)
	RemoveMember(roomID, userID string) (empty bool, err error)
	Delete(id string)
}

// SessionCache holds the live public snapshot per room (Redis) so that
// reconnecting clients can resync, plus the current turn deadline for
// client-side countdown display.
type SessionCache interface {
	SetSnapshot(ctx context.Context, roomID string, state json.RawMessage) error
	GetSnapshot(ctx context.Context, roomID string) (json.RawMessage, error)
	SetTurnDeadline(ctx context.Context, roomID string, deadline time.Time) error
	ClearTurnDeadline(ctx context.Context, roomID string) error
	DeleteRoomData(ctx context.Context, roomID string) error
}
