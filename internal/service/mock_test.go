package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rmarchan/parchis-arena/server/internal/model"
)

// recordedEvent is one broadcast captured by the mock broadcaster.
type recordedEvent struct {
	roomID string
	event  string
	data   any
}

type mockBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *mockBroadcaster) BroadcastRoomEvent(roomID string, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{roomID: roomID, event: eventType, data: data})
}

// byType returns every captured event of the given type.
func (b *mockBroadcaster) byType(event string) []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedEvent
	for _, e := range b.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func (b *mockBroadcaster) count(event string) int {
	return len(b.byType(event))
}

type mockMatchRepo struct {
	mu       sync.Mutex
	matches  []model.Match
	inserted chan struct{}
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{inserted: make(chan struct{}, 8)}
}

func (m *mockMatchRepo) Insert(_ context.Context, match *model.Match) error {
	m.mu.Lock()
	match.ID = "match-1"
	m.matches = append(m.matches, *match)
	m.mu.Unlock()
	m.inserted <- struct{}{}
	return nil
}

func (m *mockMatchRepo) ListRecent(_ context.Context, limit int) ([]model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.Match(nil), m.matches...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockMatchRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Match
	for _, match := range m.matches {
		for _, id := range match.PlayerIDs {
			if id == userID {
				out = append(out, match)
				break
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeClock drives the orchestrator manually. Advance fires due timers
// synchronously with no clock lock held, so callbacks may schedule new
// timers.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clk     *fakeClock
	when    time.Time
	fn      func()
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clk: c, when: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clk.mu.Lock()
	defer t.clk.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// Advance moves the clock forward and fires every timer that came due, in
// deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	var rest []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.when.After(c.now) {
			due = append(due, t)
		} else if !t.stopped {
			rest = append(rest, t)
		}
	}
	c.timers = rest
	sort.Slice(due, func(i, j int) bool { return due[i].when.Before(due[j].when) })
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

// pending reports how many live timers are armed.
func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
