// Package memory provides the in-process room registry. Rooms are
// ephemeral lobby state and do not survive a restart.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rmarchan/parchis-arena/server/internal/model"
	"github.com/rmarchan/parchis-arena/server/internal/repository"
	"github.com/rmarchan/parchis-arena/server/pkg/parchis"
)

// RoomStore keeps all live rooms behind one RWMutex. Room churn is low
// (create/join/leave); the hot path is the per-room game loop, which only
// reads rosters at start.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*model.Room
}

// NewRoomStore creates an empty store.
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*model.Room)}
}

// Create makes a new room with the creator seated. An empty color requests
// auto-assignment.
func (s *RoomStore) Create(name, creatorID, creatorName, color string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := &model.Room{
		ID:        uuid.NewString(),
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: time.Now(),
	}
	member := model.RoomMember{
		UserID:      creatorID,
		DisplayName: creatorName,
		Color:       color,
		JoinedAt:    time.Now(),
	}
	if err := seat(room, &member); err != nil {
		return nil, err
	}
	room.Members = append(room.Members, member)
	s.rooms[room.ID] = room
	return cloneRoom(room), nil
}

// Get returns a copy of the room.
func (s *RoomStore) Get(id string) (*model.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, false
	}
	return cloneRoom(room), true
}

// List returns all live rooms, newest first.
func (s *RoomStore) List() []model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, *cloneRoom(room))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// AddMember seats a player or bot, assigning a free color when none is
// requested.
func (s *RoomStore) AddMember(roomID string, m model.RoomMember) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	for _, existing := range room.Members {
		if existing.UserID == m.UserID {
			return nil, repository.ErrAlreadyInRoom
		}
	}
	if len(room.Members) >= len(parchis.ColorOrder) {
		return nil, repository.ErrRoomFull
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	if err := seat(room, &m); err != nil {
		return nil, err
	}
	room.Members = append(room.Members, m)
	return cloneRoom(room), nil
}

// RemoveMember unseats a player. Reports whether the room is now without
// humans, in which case the caller should tear the room down.
func (s *RoomStore) RemoveMember(roomID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return false, repository.ErrRoomNotFound
	}
	for i, m := range room.Members {
		if m.UserID == userID {
			room.Members = append(room.Members[:i], room.Members[i+1:]...)
			return room.HumanCount() == 0, nil
		}
	}
	return false, repository.ErrNotInRoom
}

// Delete removes a room outright.
func (s *RoomStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// seat validates or auto-assigns the member's color. Caller holds the lock.
func seat(room *model.Room, m *model.RoomMember) error {
	taken := make(map[string]bool)
	for _, existing := range room.Members {
		taken[existing.Color] = true
	}
	if m.Color != "" {
		if !parchis.Color(m.Color).Valid() {
			return repository.ErrInvalidColor
		}
		if taken[m.Color] {
			return repository.ErrColorTaken
		}
		return nil
	}
	for _, c := range parchis.ColorOrder {
		if !taken[string(c)] {
			m.Color = string(c)
			return nil
		}
	}
	return repository.ErrRoomFull
}

func cloneRoom(room *model.Room) *model.Room {
	cp := *room
	cp.Members = append([]model.RoomMember(nil), room.Members...)
	return &cp
}
