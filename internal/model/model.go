package model

import (
	"time"
)

// User represents a registered user (Google sign-in or guest).
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Room is a lobby that hosts at most one running game session. Rooms are
// in-memory and ephemeral; they disappear when the last human leaves.
type Room struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	CreatorID string       `json:"creator_id"`
	Members   []RoomMember `json:"members"`
	CreatedAt time.Time    `json:"created_at"`
}

// RoomMember is a seat claimed in a room. Color is the string form of a
// parchis.Color.
type RoomMember struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Color       string    `json:"color"`
	IsBot       bool      `json:"is_bot"`
	BotLevel    string    `json:"bot_level,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}

// HumanCount returns the number of non-bot members.
func (r *Room) HumanCount() int {
	n := 0
	for _, m := range r.Members {
		if !m.IsBot {
			n++
		}
	}
	return n
}

// Match is the archived record of a finished game session.
type Match struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	RoomName   string    `json:"room_name"`
	Winners    []string  `json:"winners"` // player ids in finishing order
	PlayerIDs  []string  `json:"player_ids"`
	TotalTurns int       `json:"total_turns"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
