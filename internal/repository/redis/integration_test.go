//go:build integration

package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rmarchan/parchis-arena/server/internal/testutil"
)

var testRDB *goredis.Client

func setup(t *testing.T) *Client {
	t.Helper()
	if testRDB == nil {
		testRDB = testutil.SetupRedis(t)
	}
	testutil.CleanupRedis(t, testRDB)
	return &Client{rdb: testRDB}
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	state := json.RawMessage(`{"roomId":"room-1","status":"in_progress","turnIndex":2}`)
	if err := c.SetSnapshot(ctx, "room-1", state); err != nil {
		t.Fatalf("set snapshot: %v", err)
	}

	got, err := c.GetSnapshot(ctx, "room-1")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	var fetched map[string]any
	if err := json.Unmarshal(got, &fetched); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if fetched["roomId"] != "room-1" || fetched["turnIndex"].(float64) != 2 {
		t.Fatalf("snapshot round-trip failed: %s", string(got))
	}
}

func TestSnapshotMissing(t *testing.T) {
	c := setup(t)

	got, err := c.GetSnapshot(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("get missing snapshot: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing snapshot")
	}
}

func TestTurnDeadlineExpires(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	deadline := time.Now().Add(time.Second)
	if err := c.SetTurnDeadline(ctx, "room-1", deadline); err != nil {
		t.Fatalf("set deadline: %v", err)
	}

	val, err := testRDB.Get(ctx, deadlineKey("room-1")).Int64()
	if err != nil {
		t.Fatalf("read deadline: %v", err)
	}
	if val != deadline.UnixMilli() {
		t.Fatalf("deadline stored as %d, want %d", val, deadline.UnixMilli())
	}

	ttl, err := testRDB.TTL(ctx, deadlineKey("room-1")).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Second {
		t.Fatalf("deadline key should expire with the turn, ttl %v", ttl)
	}
}

func TestClearTurnDeadline(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	c.SetTurnDeadline(ctx, "room-1", time.Now().Add(15*time.Second))
	if err := c.ClearTurnDeadline(ctx, "room-1"); err != nil {
		t.Fatalf("clear deadline: %v", err)
	}
	if err := testRDB.Get(ctx, deadlineKey("room-1")).Err(); err != goredis.Nil {
		t.Fatalf("expected deadline gone, got %v", err)
	}
}

func TestDeleteRoomData(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	c.SetSnapshot(ctx, "room-1", json.RawMessage(`{}`))
	c.SetTurnDeadline(ctx, "room-1", time.Now().Add(15*time.Second))

	if err := c.DeleteRoomData(ctx, "room-1"); err != nil {
		t.Fatalf("delete room data: %v", err)
	}
	if n, _ := testRDB.Exists(ctx, snapshotKey("room-1"), deadlineKey("room-1")).Result(); n != 0 {
		t.Fatalf("expected all room keys gone, %d remain", n)
	}
}
