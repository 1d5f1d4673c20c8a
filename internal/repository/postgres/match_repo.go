package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/rmarchan/parchis-arena/server/internal/model"
)

// MatchRepo archives finished game sessions.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// Insert records a finished match. The ID is generated by the database and
// written back into m.
func (r *MatchRepo) Insert(ctx context.Context, m *model.Match) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO matches (room_id, room_name, winners, player_ids, total_turns, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		m.RoomID, m.RoomName, pq.Array(m.Winners), pq.Array(m.PlayerIDs), m.TotalTurns, m.StartedAt, m.FinishedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// ListRecent returns the most recently finished matches.
func (r *MatchRepo) ListRecent(ctx context.Context, limit int) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_id, room_name, winners, player_ids, total_turns, started_at, finished_at
		 FROM matches ORDER BY finished_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent matches: %w", err)
	}
	defer rows.Close()
	return scanMatches(rows)
}

// ListByUser returns matches a given user played in, newest first.
func (r *MatchRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_id, room_name, winners, player_ids, total_turns, started_at, finished_at
		 FROM matches WHERE $1 = ANY(player_ids) ORDER BY finished_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list matches by user: %w", err)
	}
	defer rows.Close()
	return scanMatches(rows)
}

func scanMatches(rows *sql.Rows) ([]model.Match, error) {
	var matches []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.ID, &m.RoomID, &m.RoomName, pq.Array(&m.Winners), pq.Array(&m.PlayerIDs),
			&m.TotalTurns, &m.StartedAt, &m.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}
