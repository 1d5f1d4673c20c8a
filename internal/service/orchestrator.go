package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rmarchan/parchis-arena/server/pkg/parchis"
)

// OrchestratorConfig sets the pacing of automated play.
type OrchestratorConfig struct {
	// TurnTimeout is how long a human player has to act in each stage of
	// their turn before the heuristic plays for them.
	TurnTimeout time.Duration
	// BotThinkDelay paces bot rolls so clients can follow the game.
	BotThinkDelay time.Duration
	// AutoMoveDelay is the pause between an automated roll and its move.
	AutoMoveDelay time.Duration
	// NoMoveDelay is how long a forfeited roll stays on screen before the
	// turn passes.
	NoMoveDelay time.Duration
}

func (c OrchestratorConfig) withDefaults() OrchestratorConfig {
	if c.TurnTimeout <= 0 {
		c.TurnTimeout = 15 * time.Second
	}
	if c.BotThinkDelay <= 0 {
		c.BotThinkDelay = time.Second
	}
	if c.AutoMoveDelay <= 0 {
		c.AutoMoveDelay = 600 * time.Millisecond
	}
	if c.NoMoveDelay <= 0 {
		c.NoMoveDelay = 800 * time.Millisecond
	}
	return c
}

// roomTimer is the pending callback for one room. gen invalidates stale
// fires: generations are drawn from a single counter that only moves
// forward, and a fired callback re-checks its generation after taking the
// room lock.
type roomTimer struct {
	gen   uint64
	timer Timer
}

// Orchestrator drives every automated action in a session: bot turns, human
// turn timeouts and forfeited rolls. It keeps at most one pending timer per
// room. OnStateChanged is the single entry point and must be called with the
// room lock held after every state change.
type Orchestrator struct {
	svc   *SessionService
	clock Clock
	cfg   OrchestratorConfig

	mu    sync.Mutex
	gen   uint64
	rooms map[string]*roomTimer
}

// NewOrchestrator creates an Orchestrator and wires it into the session
// service.
func NewOrchestrator(svc *SessionService, clock Clock, cfg OrchestratorConfig) *Orchestrator {
	o := &Orchestrator{
		svc:   svc,
		clock: clock,
		cfg:   cfg.withDefaults(),
		rooms: make(map[string]*roomTimer),
	}
	svc.SetOrchestrator(o)
	return o
}

// OnStateChanged inspects the session and arms the timer for whatever must
// happen next. Called with the room lock held.
func (o *Orchestrator) OnStateChanged(roomID string, g *parchis.GameState) {
	if g == nil || g.Status != parchis.StatusInProgress {
		o.Cancel(roomID)
		o.svc.clearDeadline(roomID)
		return
	}
	p := g.CurrentPlayer()
	if p == nil {
		o.Cancel(roomID)
		return
	}

	switch {
	case g.Stage == parchis.StageAwaitingMove && !g.HasLegalMove():
		o.schedule(roomID, o.cfg.NoMoveDelay, o.svc.advanceTurn)
	case p.IsBot && g.Stage == parchis.StageAwaitingRoll:
		o.schedule(roomID, o.cfg.BotThinkDelay, o.svc.botRoll)
	case p.IsBot:
		o.schedule(roomID, o.cfg.AutoMoveDelay, o.svc.autoMove)
	default:
		o.schedule(roomID, o.cfg.TurnTimeout, o.svc.expireTurn)
		o.svc.publishDeadline(roomID, o.clock.Now().Add(o.cfg.TurnTimeout))
	}
}

// ScheduleAutoMove arms the short roll-to-move pause after a timed-out roll.
// Called with the room lock held.
func (o *Orchestrator) ScheduleAutoMove(roomID string) {
	o.schedule(roomID, o.cfg.AutoMoveDelay, o.svc.autoMove)
}

// Cancel stops any pending timer for the room and invalidates in-flight
// fires.
func (o *Orchestrator) Cancel(roomID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rt, ok := o.rooms[roomID]
	if !ok {
		return
	}
	if rt.timer != nil {
		rt.timer.Stop()
	}
	delete(o.rooms, roomID)
}

// Current reports whether gen is still the room's live timer generation.
// Fired callbacks call this after taking the room lock; a mismatch means
// the game moved on while the callback was in flight.
func (o *Orchestrator) Current(roomID string, gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	rt, ok := o.rooms[roomID]
	return ok && rt.gen == gen
}

func (o *Orchestrator) schedule(roomID string, d time.Duration, fn func(roomID string, gen uint64)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rt, ok := o.rooms[roomID]
	if !ok {
		rt = &roomTimer{}
		o.rooms[roomID] = rt
	}
	if rt.timer != nil {
		rt.timer.Stop()
	}
	o.gen++
	rt.gen = o.gen
	gen := rt.gen
	rt.timer = o.clock.AfterFunc(d, func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("roomId", roomID).Msg("Timer callback panicked")
			}
		}()
		fn(roomID, gen)
	})
}
