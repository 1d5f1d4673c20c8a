package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rmarchan/parchis-arena/server/internal/bot"
	"github.com/rmarchan/parchis-arena/server/internal/model"
	"github.com/rmarchan/parchis-arena/server/internal/repository"
	"github.com/rmarchan/parchis-arena/server/pkg/parchis"
)

var ErrSessionNotFound = errors.New("no game session in this room")

// cacheTimeout bounds best-effort Redis writes so a slow cache never stalls
// a turn.
const cacheTimeout = 2 * time.Second

// session pairs a game state with the room metadata the archive needs.
type session struct {
	game      *parchis.GameState
	roomName  string
	startedAt time.Time
}

// SessionService owns the live game sessions, one per room. All access to a
// session goes through its room lock; the orchestrator's timer callbacks
// re-enter through the same lock.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*session

	// roomLocks serializes all game actions for the same room.
	roomLocks sync.Map

	matchRepo   repository.MatchRepository
	cache       repository.SessionCache
	broadcaster Broadcaster
	clock       Clock
	orch        *Orchestrator
	seedFn      func() int64
}

// NewSessionService creates a SessionService.
func NewSessionService(matchRepo repository.MatchRepository, cache repository.SessionCache, broadcaster Broadcaster, clock Clock) *SessionService {
	return &SessionService{
		sessions:    make(map[string]*session),
		matchRepo:   matchRepo,
		cache:       cache,
		broadcaster: broadcaster,
		clock:       clock,
		seedFn:      func() int64 { return time.Now().UnixNano() },
	}
}

// SetOrchestrator wires the turn orchestrator. Must be called before any
// session starts; the two depend on each other so neither constructor can
// take the other.
func (s *SessionService) SetOrchestrator(o *Orchestrator) { s.orch = o }

// SetSeedFunc overrides the per-session RNG seed source for deterministic tests.
func (s *SessionService) SetSeedFunc(fn func() int64) { s.seedFn = fn }

func (s *SessionService) roomLock(roomID string) *sync.Mutex {
	v, _ := s.roomLocks.LoadOrStore(roomID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *SessionService) lookup(roomID string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[roomID]
	return sess, ok
}

// CreateSession returns the room's running session, starting one from the
// roster when none exists. Calling it again for the same room leaves the
// session untouched and hands back its current state, so a retried start
// request is harmless.
func (s *SessionService) CreateSession(roomID, roomName string, seats []parchis.Seat) (parchis.Snapshot, error) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	if old, ok := s.sessions[roomID]; ok && old.game.Status == parchis.StatusInProgress {
		s.mu.Unlock()
		return old.game.Snapshot(), nil
	}
	g := parchis.NewGameState(roomID, s.seedFn())
	sess := &session{game: g, roomName: roomName, startedAt: s.clock.Now()}
	s.sessions[roomID] = sess
	s.mu.Unlock()

	if err := g.Start(seats); err != nil {
		s.mu.Lock()
		delete(s.sessions, roomID)
		s.mu.Unlock()
		return parchis.Snapshot{}, err
	}

	log.Info().Str("roomId", roomID).Int("players", len(seats)).Msg("Game session started")
	snap := g.Snapshot()
	s.emit(roomID, "game_started", map[string]any{
		"state": snap,
	})
	s.cacheSnapshot(sess)
	s.orch.OnStateChanged(roomID, g)
	return snap, nil
}

// Roll rolls the dice for a player. Legal only on their turn during the
// roll stage.
func (s *SessionService) Roll(roomID, playerID string) (int, error) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	sess, ok := s.lookup(roomID)
	if !ok {
		return 0, ErrSessionNotFound
	}
	dice, err := s.rollLocked(sess, playerID)
	if err != nil {
		return 0, err
	}
	s.orch.OnStateChanged(roomID, sess.game)
	return dice, nil
}

// rollLocked performs the roll and emits the result. Callers hold the room
// lock and decide what the orchestrator does next.
func (s *SessionService) rollLocked(sess *session, playerID string) (int, error) {
	g := sess.game
	dice, err := g.Roll(playerID)
	if err != nil {
		return 0, err
	}
	s.emit(g.RoomID, "dice_rolled", map[string]any{
		"player_id": playerID,
		"dice":      dice,
	})
	if !g.HasLegalMove() {
		s.emit(g.RoomID, "no_moves", map[string]any{
			"player_id": playerID,
			"dice":      dice,
		})
	}
	s.cacheSnapshot(sess)
	return dice, nil
}

// Move advances one of the player's pieces by the current roll.
func (s *SessionService) Move(roomID, playerID string, piece int) (*parchis.MoveResult, error) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	sess, ok := s.lookup(roomID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	res, err := s.moveLocked(sess, playerID, piece)
	if err != nil {
		return nil, err
	}
	s.orch.OnStateChanged(roomID, sess.game)
	return res, nil
}

// moveLocked performs the move, emits every resulting event in causal order
// and archives the match when the move ends the game. Callers hold the room
// lock.
func (s *SessionService) moveLocked(sess *session, playerID string, piece int) (*parchis.MoveResult, error) {
	g := sess.game
	res, err := g.Move(playerID, piece)
	if err != nil {
		return nil, err
	}

	s.emit(g.RoomID, "piece_moved", map[string]any{
		"player_id": playerID,
		"piece":     res.PieceIndex,
		"from":      res.From,
		"to":        res.To,
	})
	for _, c := range res.Captured {
		s.emit(g.RoomID, "piece_captured", map[string]any{
			"by":        playerID,
			"player_id": c.PlayerID,
			"piece":     c.PieceIndex,
		})
	}
	if pu := res.PowerUp; pu != nil {
		s.emit(g.RoomID, "power_up", map[string]any{
			"player_id": playerID,
			"effect":    pu.Effect,
			"applied":   pu.Applied,
		})
		if pu.Applied && pu.Effect == parchis.EffectBomb {
			s.emit(g.RoomID, "bomb_armed", map[string]any{
				"player_id": playerID,
			})
		}
	}
	if res.BombDefused {
		s.emit(g.RoomID, "bomb_defused", map[string]any{
			"player_id": playerID,
		})
	}
	if det := res.Detonation; det != nil {
		s.emit(g.RoomID, "bomb_exploded", map[string]any{
			"cell":    det.Cell,
			"victims": det.Victims,
		})
	}
	if res.Finished {
		s.emit(g.RoomID, "player_finished", map[string]any{
			"player_id": playerID,
			"place":     len(g.Winners),
		})
	}

	switch {
	case res.GameOver:
		s.emit(g.RoomID, "game_ended", map[string]any{
			"winners":     g.Winners,
			"total_turns": g.TotalTurns,
		})
		s.archiveMatch(sess)
	case res.ExtraTurn:
		s.emit(g.RoomID, "extra_turn", map[string]any{
			"player_id": playerID,
		})
	default:
		s.emitTurnChanged(g)
	}
	s.cacheSnapshot(sess)
	return res, nil
}

// Surrender withdraws a player from the session.
func (s *SessionService) Surrender(roomID, playerID string) error {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()
	return s.surrenderLocked(roomID, playerID)
}

// surrenderLocked withdraws a player. Callers hold the room lock; the room
// service reuses it when a player leaves mid-game.
func (s *SessionService) surrenderLocked(roomID, playerID string) error {
	sess, ok := s.lookup(roomID)
	if !ok {
		return ErrSessionNotFound
	}
	g := sess.game
	before := g.CurrentPlayer()
	if err := g.Surrender(playerID); err != nil {
		return err
	}
	s.emit(roomID, "player_surrendered", map[string]any{
		"player_id": playerID,
	})
	if g.Status == parchis.StatusFinished {
		s.emit(roomID, "game_ended", map[string]any{
			"winners":     g.Winners,
			"total_turns": g.TotalTurns,
		})
		s.archiveMatch(sess)
	} else if g.CurrentPlayer() != before {
		// Surrendering off-turn leaves the turn where it was.
		s.emitTurnChanged(g)
	}
	s.cacheSnapshot(sess)
	s.orch.OnStateChanged(roomID, g)
	return nil
}

// Snapshot returns the public view of the room's session.
func (s *SessionService) Snapshot(roomID string) (parchis.Snapshot, error) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	sess, ok := s.lookup(roomID)
	if !ok {
		return parchis.Snapshot{}, ErrSessionNotFound
	}
	return sess.game.Snapshot(), nil
}

// LegalMoves returns the piece indices the player may move right now.
func (s *SessionService) LegalMoves(roomID, playerID string) ([]int, error) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	sess, ok := s.lookup(roomID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	g := sess.game
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, parchis.ErrUnknownPlayer
	}
	if p != g.CurrentPlayer() {
		return nil, nil
	}
	return g.LegalMoves(), nil
}

// RemoveSession drops the room's session and its cached data. Called on
// room teardown.
func (s *SessionService) RemoveSession(roomID string) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	delete(s.sessions, roomID)
	s.mu.Unlock()
	s.orch.Cancel(roomID)

	if s.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
		defer cancel()
		if err := s.cache.DeleteRoomData(ctx, roomID); err != nil {
			log.Warn().Err(err).Str("roomId", roomID).Msg("Failed to delete cached room data")
		}
	}
}

// HasSession reports whether the room has a session (running or finished).
func (s *SessionService) HasSession(roomID string) bool {
	_, ok := s.lookup(roomID)
	return ok
}

// --- orchestrator re-entry points, all called from timer goroutines ---

// expireTurn fires when a human player's turn timer runs out: roll if they
// have not, then play the best heuristic move on their behalf.
func (s *SessionService) expireTurn(roomID string, gen uint64) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	if !s.orch.Current(roomID, gen) {
		return
	}
	sess, ok := s.lookup(roomID)
	if !ok {
		return
	}
	g := sess.game
	p := g.CurrentPlayer()
	if p == nil {
		return
	}
	log.Info().Str("roomId", roomID).Str("playerId", p.ID).Msg("Turn timed out, auto-playing")
	s.emit(roomID, "turn_timeout", map[string]any{
		"player_id": p.ID,
	})

	if g.Stage == parchis.StageAwaitingRoll {
		if _, err := s.rollLocked(sess, p.ID); err != nil {
			log.Error().Err(err).Str("roomId", roomID).Msg("Auto-roll failed")
			return
		}
	}
	if !g.HasLegalMove() {
		s.orch.OnStateChanged(roomID, g)
		return
	}
	// A short pause lets clients show the forced roll before the move lands.
	s.orch.ScheduleAutoMove(roomID)
}

// botRoll fires when a bot's think delay elapses during the roll stage.
func (s *SessionService) botRoll(roomID string, gen uint64) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	if !s.orch.Current(roomID, gen) {
		return
	}
	sess, ok := s.lookup(roomID)
	if !ok {
		return
	}
	p := sess.game.CurrentPlayer()
	if p == nil {
		return
	}
	if _, err := s.rollLocked(sess, p.ID); err != nil {
		log.Error().Err(err).Str("roomId", roomID).Msg("Bot roll failed")
		return
	}
	s.orch.OnStateChanged(roomID, sess.game)
}

// autoMove fires for bot moves and for timed-out humans: the strategy picks
// the piece and the normal move path runs.
func (s *SessionService) autoMove(roomID string, gen uint64) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	if !s.orch.Current(roomID, gen) {
		return
	}
	sess, ok := s.lookup(roomID)
	if !ok {
		return
	}
	g := sess.game
	p := g.CurrentPlayer()
	legal := g.LegalMoves()
	if p == nil || len(legal) == 0 {
		return
	}
	strat := bot.StrategyForDifficulty("")
	if p.IsBot {
		strat = bot.StrategyForDifficulty(p.BotLevel)
	}
	piece := strat.SelectPiece(g, p, legal)
	if _, err := s.moveLocked(sess, p.ID, piece); err != nil {
		log.Error().Err(err).Str("roomId", roomID).Int("piece", piece).Msg("Auto-move failed")
		return
	}
	s.orch.OnStateChanged(roomID, g)
}

// advanceTurn fires after the no-legal-move pause: the rolled turn is
// forfeited and play passes on.
func (s *SessionService) advanceTurn(roomID string, gen uint64) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	if !s.orch.Current(roomID, gen) {
		return
	}
	sess, ok := s.lookup(roomID)
	if !ok {
		return
	}
	g := sess.game
	if g.Status != parchis.StatusInProgress || g.Stage != parchis.StageAwaitingMove {
		return
	}
	g.AdvanceTurn()
	if g.Status == parchis.StatusFinished {
		s.emit(roomID, "game_ended", map[string]any{
			"winners":     g.Winners,
			"total_turns": g.TotalTurns,
		})
		s.archiveMatch(sess)
	} else {
		s.emitTurnChanged(g)
	}
	s.cacheSnapshot(sess)
	s.orch.OnStateChanged(roomID, g)
}

// --- helpers ---

func (s *SessionService) emit(roomID, event string, data any) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastRoomEvent(roomID, event, data)
	}
}

func (s *SessionService) emitTurnChanged(g *parchis.GameState) {
	p := g.CurrentPlayer()
	if p == nil {
		return
	}
	s.emit(g.RoomID, "turn_changed", map[string]any{
		"player_id":  p.ID,
		"turn_index": g.TurnIndex,
		"stage":      g.Stage,
	})
}

func (s *SessionService) cacheSnapshot(sess *session) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(sess.game.Snapshot())
	if err != nil {
		log.Error().Err(err).Str("roomId", sess.game.RoomID).Msg("Failed to marshal snapshot")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := s.cache.SetSnapshot(ctx, sess.game.RoomID, data); err != nil {
		log.Warn().Err(err).Str("roomId", sess.game.RoomID).Msg("Failed to cache snapshot")
	}
}

func (s *SessionService) publishDeadline(roomID string, deadline time.Time) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := s.cache.SetTurnDeadline(ctx, roomID, deadline); err != nil {
		log.Warn().Err(err).Str("roomId", roomID).Msg("Failed to publish turn deadline")
	}
}

func (s *SessionService) clearDeadline(roomID string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := s.cache.ClearTurnDeadline(ctx, roomID); err != nil {
		log.Warn().Err(err).Str("roomId", roomID).Msg("Failed to clear turn deadline")
	}
}

// archiveMatch persists the finished session. Runs async so a slow database
// never blocks the final move's response.
func (s *SessionService) archiveMatch(sess *session) {
	if s.matchRepo == nil {
		return
	}
	g := sess.game
	m := &model.Match{
		RoomID:     g.RoomID,
		RoomName:   sess.roomName,
		Winners:    append([]string(nil), g.Winners...),
		TotalTurns: g.TotalTurns,
		StartedAt:  sess.startedAt,
		FinishedAt: s.clock.Now(),
	}
	for _, p := range g.Players {
		m.PlayerIDs = append(m.PlayerIDs, p.ID)
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.matchRepo.Insert(ctx, m); err != nil {
			log.Error().Err(err).Str("roomId", m.RoomID).Msg("Failed to archive match")
			return
		}
		log.Info().Str("roomId", m.RoomID).Str("matchId", m.ID).Msg("Match archived")
	}()
}
