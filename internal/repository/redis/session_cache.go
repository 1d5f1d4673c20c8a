package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for live session data.
func snapshotKey(roomID string) string { return "room:" + roomID + ":state" }
func deadlineKey(roomID string) string { return "room:" + roomID + ":deadline" }

// snapshotTTL bounds how long a stale snapshot can outlive its room if
// cleanup is missed.
const snapshotTTL = 24 * time.Hour

// SetSnapshot stores the room's public session snapshot. Reconnecting
// clients fetch it before streaming live events.
func (c *Client) SetSnapshot(ctx context.Context, roomID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, snapshotKey(roomID), []byte(state), snapshotTTL).Err()
}

// GetSnapshot retrieves the room's public session snapshot, nil if absent.
func (c *Client) GetSnapshot(ctx context.Context, roomID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(roomID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetTurnDeadline publishes when the current turn times out, for client
// countdown display. The key carries its own TTL so it cleans up alone.
// The authoritative timer is in-process; this is presentation only.
func (c *Client) SetTurnDeadline(ctx context.Context, roomID string, deadline time.Time) error {
	ttl := time.Until(deadline)
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.rdb.Set(ctx, deadlineKey(roomID), deadline.UnixMilli(), ttl).Err()
}

// ClearTurnDeadline removes the published deadline (bot turns, game end).
func (c *Client) ClearTurnDeadline(ctx context.Context, roomID string) error {
	return c.rdb.Del(ctx, deadlineKey(roomID)).Err()
}

// DeleteRoomData removes all Redis data for a room (room teardown).
func (c *Client) DeleteRoomData(ctx context.Context, roomID string) error {
	return c.rdb.Del(ctx, snapshotKey(roomID), deadlineKey(roomID)).Err()
}
