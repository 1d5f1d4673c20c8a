package service

import (
	"sync"
	"testing"
	"time"
)

// newBareOrchestrator builds an orchestrator whose timers never reach the
// session service, for testing the generation bookkeeping directly.
func newBareOrchestrator(clk *fakeClock) *Orchestrator {
	svc := NewSessionService(newMockMatchRepo(), nil, &mockBroadcaster{}, clk)
	return NewOrchestrator(svc, clk, OrchestratorConfig{})
}

func TestScheduleInvalidatesPrevious(t *testing.T) {
	clk := newFakeClock()
	o := newBareOrchestrator(clk)

	var mu sync.Mutex
	var fired []uint64
	record := func(_ string, gen uint64) {
		mu.Lock()
		fired = append(fired, gen)
		mu.Unlock()
	}

	o.schedule("room-1", time.Second, func(roomID string, gen uint64) {
		if o.Current(roomID, gen) {
			record(roomID, gen)
		}
	})
	first := o.rooms["room-1"].gen
	o.schedule("room-1", time.Second, func(roomID string, gen uint64) {
		if o.Current(roomID, gen) {
			record(roomID, gen)
		}
	})
	second := o.rooms["room-1"].gen
	if first == second {
		t.Fatal("re-scheduling must mint a new generation")
	}
	if o.Current("room-1", first) {
		t.Error("old generation should no longer be current")
	}
	if !o.Current("room-1", second) {
		t.Error("new generation should be current")
	}

	clk.Advance(2 * time.Second)
	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 || fired[0] != second {
		t.Errorf("fired = %v, want only generation %d", fired, second)
	}
}

func TestCancelInvalidatesInFlight(t *testing.T) {
	clk := newFakeClock()
	o := newBareOrchestrator(clk)

	ran := false
	o.schedule("room-1", time.Second, func(roomID string, gen uint64) {
		if o.Current(roomID, gen) {
			ran = true
		}
	})
	gen := o.rooms["room-1"].gen
	o.Cancel("room-1")

	if o.Current("room-1", gen) {
		t.Error("cancelled room should have no current generation")
	}
	clk.Advance(2 * time.Second)
	if ran {
		t.Error("cancelled timer must not act")
	}
	// Cancelling an unknown room is a no-op.
	o.Cancel("room-2")
}

func TestGenerationsNeverRecycle(t *testing.T) {
	clk := newFakeClock()
	o := newBareOrchestrator(clk)

	o.schedule("room-1", time.Second, func(string, uint64) {})
	stale := o.rooms["room-1"].gen

	// Cancel forgets the room; a later schedule must not hand the same
	// generation back out, or a stale in-flight fire would pass the check.
	o.Cancel("room-1")
	o.schedule("room-1", time.Second, func(string, uint64) {})
	if o.rooms["room-1"].gen == stale {
		t.Fatal("generation reused after cancel")
	}
	if o.Current("room-1", stale) {
		t.Error("stale generation should not be current")
	}
}

func TestRoomsAreIndependent(t *testing.T) {
	clk := newFakeClock()
	o := newBareOrchestrator(clk)

	firedA, firedB := false, false
	o.schedule("room-a", time.Second, func(roomID string, gen uint64) {
		if o.Current(roomID, gen) {
			firedA = true
		}
	})
	o.schedule("room-b", time.Second, func(roomID string, gen uint64) {
		if o.Current(roomID, gen) {
			firedB = true
		}
	})
	o.Cancel("room-a")

	clk.Advance(2 * time.Second)
	if firedA {
		t.Error("room-a was cancelled")
	}
	if !firedB {
		t.Error("room-b should have fired")
	}
}

func TestDefaultsApplied(t *testing.T) {
	cfg := OrchestratorConfig{}.withDefaults()
	if cfg.TurnTimeout != 15*time.Second {
		t.Errorf("TurnTimeout = %v", cfg.TurnTimeout)
	}
	if cfg.BotThinkDelay != time.Second {
		t.Errorf("BotThinkDelay = %v", cfg.BotThinkDelay)
	}
	if cfg.AutoMoveDelay != 600*time.Millisecond {
		t.Errorf("AutoMoveDelay = %v", cfg.AutoMoveDelay)
	}
	if cfg.NoMoveDelay != 800*time.Millisecond {
		t.Errorf("NoMoveDelay = %v", cfg.NoMoveDelay)
	}
	custom := OrchestratorConfig{TurnTimeout: time.Minute}.withDefaults()
	if custom.TurnTimeout != time.Minute {
		t.Errorf("custom TurnTimeout = %v", custom.TurnTimeout)
	}
}
