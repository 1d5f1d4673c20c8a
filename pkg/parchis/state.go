package parchis

import (
	"errors"
	"math/rand"
	"sort"
)

// GameStatus represents the overall session status.
type GameStatus string

const (
	StatusWaiting    GameStatus = "waiting"
	StatusInProgress GameStatus = "in_progress"
	StatusFinished   GameStatus = "finished"
)

// Stage is the per-turn sub-state. Modeling it explicitly (instead of a
// nullable dice value) keeps illegal combinations unrepresentable.
type Stage string

const (
	StageAwaitingRoll Stage = "awaiting_roll"
	StageAwaitingMove Stage = "awaiting_move"
)

var (
	ErrNotInProgress = errors.New("game is not in progress")
	ErrAlreadyOver   = errors.New("game already started")
	ErrBadRoster     = errors.New("roster needs 2-4 players with distinct valid colors")
	ErrUnknownPlayer = errors.New("player is not in this game")
	ErrNotYourTurn   = errors.New("not this player's turn")
	ErrAlreadyRolled = errors.New("dice already rolled this turn")
	ErrNoRoll        = errors.New("dice not rolled yet")
	ErrIllegalMove   = errors.New("piece has no legal move for this dice")
)

// Player is one seat in a running session.
type Player struct {
	ID         string
	Name       string
	Color      Color
	Pieces     [PiecesPerPlayer]int
	Multiplier int   // 1 normally, 2 after x2_next until the next roll
	Bomb       *Bomb // nil when unarmed
	IsBot      bool
	BotLevel   string
}

// Withdrawn reports whether the player surrendered (all pieces withdrawn).
func (p *Player) Withdrawn() bool {
	for _, pos := range p.Pieces {
		if pos != PosWithdrawn {
			return false
		}
	}
	return true
}

// AtGoal reports whether every piece reached the goal cell.
func (p *Player) AtGoal() bool {
	for _, pos := range p.Pieces {
		if pos != p.Color.Goal() {
			return false
		}
	}
	return true
}

// Seat describes one roster entry handed over by the room layer at start.
type Seat struct {
	ID       string
	Name     string
	Color    Color
	IsBot    bool
	BotLevel string
}

// GameState is the authoritative record for one room's session. It is not
// safe for concurrent use; the service layer serializes access per room.
type GameState struct {
	RoomID     string
	Status     GameStatus
	Players    []*Player
	TurnIndex  int
	Stage      Stage
	Dice       int // meaningful only during StageAwaitingMove
	Winners    []string
	TotalTurns int
	PowerUps   *PowerUps

	rng    *rand.Rand
	diceFn func() int
}

// NewGameState creates a waiting session for a room. The seed drives dice
// and power-up randomness; sessions are reproducible given the same seed
// and action sequence.
func NewGameState(roomID string, seed int64) *GameState {
	rng := rand.New(rand.NewSource(seed))
	return &GameState{
		RoomID:   roomID,
		Status:   StatusWaiting,
		Stage:    StageAwaitingRoll,
		PowerUps: NewPowerUps(rng),
		rng:      rng,
	}
}

// SetDiceFunc overrides the dice source. Used for deterministic replays and
// tests; a nil fn restores the seeded RNG.
func (g *GameState) SetDiceFunc(fn func() int) { g.diceFn = fn }

// Start materializes the roster and begins play. Turn order is re-derived
// from the seats sorted by canonical color order, discarding any prior
// roster, so starting is deterministic for a given room membership.
func (g *GameState) Start(seats []Seat) error {
	if g.Status != StatusWaiting {
		return ErrAlreadyOver
	}
	if len(seats) < 2 || len(seats) > len(ColorOrder) {
		return ErrBadRoster
	}
	used := make(map[Color]bool)
	for _, s := range seats {
		if !s.Color.Valid() || used[s.Color] {
			return ErrBadRoster
		}
		used[s.Color] = true
	}
	ordered := make([]Seat, len(seats))
	copy(ordered, seats)
	sort.Slice(ordered, func(i, j int) bool {
		return ColorIndex(ordered[i].Color) < ColorIndex(ordered[j].Color)
	})

	g.Players = g.Players[:0]
	for _, s := range ordered {
		p := &Player{
			ID:         s.ID,
			Name:       s.Name,
			Color:      s.Color,
			Multiplier: 1,
			IsBot:      s.IsBot,
			BotLevel:   s.BotLevel,
		}
		for i := range p.Pieces {
			p.Pieces[i] = PosHome
		}
		g.Players = append(g.Players, p)
	}
	g.TurnIndex = 0
	g.Stage = StageAwaitingRoll
	g.Dice = 0
	g.Winners = nil
	g.TotalTurns = 0
	g.Status = StatusInProgress
	return nil
}

// CurrentPlayer returns the player whose turn it is.
func (g *GameState) CurrentPlayer() *Player {
	if len(g.Players) == 0 {
		return nil
	}
	return g.Players[g.TurnIndex]
}

// PlayerByID finds a roster member.
func (g *GameState) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *GameState) inWinners(id string) bool {
	for _, w := range g.Winners {
		if w == id {
			return true
		}
	}
	return false
}

// eligible reports whether p can still take turns.
func (g *GameState) eligible(p *Player) bool {
	return !p.Withdrawn() && !g.inWinners(p.ID)
}

func (g *GameState) cellOccupied(cell int) bool {
	for _, p := range g.Players {
		for _, pos := range p.Pieces {
			if pos == cell {
				return true
			}
		}
	}
	return false
}

// Roll rolls the dice for the current player, applying and consuming any
// pending multiplier. The caller decides what to do when no legal move
// exists (HasLegalMove).
func (g *GameState) Roll(playerID string) (int, error) {
	if g.Status != StatusInProgress {
		return 0, ErrNotInProgress
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return 0, ErrUnknownPlayer
	}
	if p != g.CurrentPlayer() {
		return 0, ErrNotYourTurn
	}
	if g.Stage != StageAwaitingRoll {
		return 0, ErrAlreadyRolled
	}

	d := 0
	if g.diceFn != nil {
		d = g.diceFn()
	} else {
		d = g.rng.Intn(6) + 1
	}
	d *= p.Multiplier
	p.Multiplier = 1

	g.Dice = d
	g.Stage = StageAwaitingMove
	return d, nil
}

// LegalMoves returns the piece indices the current player may move with the
// rolled dice, wall blocking included.
func (g *GameState) LegalMoves() []int {
	if g.Status != StatusInProgress || g.Stage != StageAwaitingMove {
		return nil
	}
	return g.legalMovesFor(g.CurrentPlayer(), g.Dice)
}

func (g *GameState) legalMovesFor(p *Player, dice int) []int {
	var moves []int
	for i, pos := range p.Pieces {
		if !CanAdvance(pos, dice, p.Color) {
			continue
		}
		if PathBlocked(g.Players, p, pos, dice) {
			continue
		}
		moves = append(moves, i)
	}
	return moves
}

// HasLegalMove reports whether the current player can move at all.
func (g *GameState) HasLegalMove() bool { return len(g.LegalMoves()) > 0 }

// PowerUpResult describes what a consumed mystery tile did.
type PowerUpResult struct {
	Effect     Effect
	Applied    bool // false when the effect had nothing to act on
	PieceIndex int
	To         int // landing cell for boost / free exit
}

// MoveResult describes everything a single move caused, in causal order:
// the move itself, captures, a power-up, bomb consequences, win detection,
// then turn handling.
type MoveResult struct {
	PieceIndex  int
	From, To    int
	Captured    []Capture
	PowerUp     *PowerUpResult
	ExtraTurn   bool // double_roll fired: same player rolls again
	BombDefused bool
	Detonation  *Detonation
	Finished    bool // the mover just got all four pieces home
	GameOver    bool
}

// Move advances one of the current player's pieces by the rolled dice,
// resolving captures, power-ups, bombs, win detection and turn advancement.
func (g *GameState) Move(playerID string, piece int) (*MoveResult, error) {
	if g.Status != StatusInProgress {
		return nil, ErrNotInProgress
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if p != g.CurrentPlayer() {
		return nil, ErrNotYourTurn
	}
	if g.Stage != StageAwaitingMove {
		return nil, ErrNoRoll
	}
	if piece < 0 || piece >= PiecesPerPlayer {
		return nil, ErrIllegalMove
	}
	pos := p.Pieces[piece]
	if !CanAdvance(pos, g.Dice, p.Color) || PathBlocked(g.Players, p, pos, g.Dice) {
		return nil, ErrIllegalMove
	}

	dest := ResolveDestination(pos, g.Dice, p.Color)
	p.Pieces[piece] = dest
	res := &MoveResult{PieceIndex: piece, From: pos, To: dest}

	if OnRing(dest) {
		res.Captured = ResolveCaptures(g.Players, p, dest)
		if effect, ok := g.PowerUps.Consume(dest); ok {
			res.PowerUp = g.applyEffect(p, piece, effect)
		}
	}

	if p.AtGoal() && !g.inWinners(p.ID) {
		g.Winners = append(g.Winners, p.ID)
		res.Finished = true
	}

	if g.checkGameEnd() {
		res.GameOver = true
		return res, nil
	}

	if res.PowerUp != nil && res.PowerUp.Applied && res.PowerUp.Effect == EffectDoubleRoll && !res.Finished {
		// Same player rolls again; the turn does not pass and the bomb
		// fuse does not tick.
		g.Stage = StageAwaitingRoll
		g.Dice = 0
		res.ExtraTurn = true
		return res, nil
	}

	res.Detonation, res.BombDefused = tickBomb(g.Players, p)

	g.AdvanceTurn()
	res.GameOver = g.Status == StatusFinished
	return res, nil
}

// applyEffect resolves a consumed tile against the piece that landed on it.
// Effects never advance or skip the turn themselves; Move owns that.
func (g *GameState) applyEffect(p *Player, piece int, effect Effect) *PowerUpResult {
	res := &PowerUpResult{Effect: effect, PieceIndex: piece}
	switch effect {
	case EffectBoost:
		// A single non-chaining hop along the ring: no second capture,
		// no tile pickup, blocked by enemy walls like a normal move.
		pos := p.Pieces[piece]
		if !OnRing(pos) {
			return res
		}
		for step := 1; step <= BoostCells; step++ {
			cell := (pos + step) % RingSize
			for _, other := range g.Players {
				if other != p && HasWallAt(other, cell) {
					return res
				}
			}
		}
		p.Pieces[piece] = (pos + BoostCells) % RingSize
		res.Applied = true
		res.To = p.Pieces[piece]
	case EffectDoubleRoll:
		res.Applied = true
	case EffectDoubleNext:
		p.Multiplier = 2
		res.Applied = true
	case EffectFreeExit:
		for i, pos := range p.Pieces {
			if pos != PosHome {
				continue
			}
			entry := p.Color.Entry()
			blocked := false
			for _, other := range g.Players {
				if other != p && HasWallAt(other, entry) {
					blocked = true
					break
				}
			}
			if blocked {
				return res
			}
			p.Pieces[i] = entry
			res.Applied = true
			res.PieceIndex = i
			res.To = entry
			return res
		}
	case EffectBomb:
		p.Bomb = &Bomb{PieceIndex: piece, TurnsLeft: BombFuseTurns}
		res.Applied = true
	}
	return res
}

// AdvanceTurn passes control to the next eligible player, ticking the
// session turn counter and respawning power-up tiles on cadence. If no
// eligible player remains the session finishes.
func (g *GameState) AdvanceTurn() {
	g.Stage = StageAwaitingRoll
	g.Dice = 0
	g.TotalTurns++
	if g.TotalTurns%PowerUpCadence == 0 {
		g.PowerUps.Spawn(g.cellOccupied)
	}
	n := len(g.Players)
	for i := 1; i <= n; i++ {
		idx := (g.TurnIndex + i) % n
		if g.eligible(g.Players[idx]) {
			g.TurnIndex = idx
			return
		}
	}
	g.finish()
}

// Surrender withdraws all of a player's pieces, advances the turn if it was
// theirs, and ends the session when at most one contender remains.
func (g *GameState) Surrender(playerID string) error {
	if g.Status != StatusInProgress {
		return ErrNotInProgress
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if p.Withdrawn() || g.inWinners(p.ID) {
		return ErrUnknownPlayer
	}

	for i := range p.Pieces {
		p.Pieces[i] = PosWithdrawn
	}
	p.Bomb = nil
	wasTurn := p == g.CurrentPlayer()

	if g.checkGameEnd() {
		return nil
	}
	if wasTurn {
		g.AdvanceTurn()
	}
	return nil
}

// checkGameEnd finishes the session when all-but-one players have finished,
// or when wins plus withdrawals leave at most one contender. A sole
// remaining contender is recorded as the final winner.
func (g *GameState) checkGameEnd() bool {
	if len(g.Winners) >= len(g.Players)-1 {
		g.finish()
		return true
	}
	var active []*Player
	for _, p := range g.Players {
		if g.eligible(p) {
			active = append(active, p)
		}
	}
	if len(active) > 1 {
		return false
	}
	if len(active) == 1 {
		g.Winners = append(g.Winners, active[0].ID)
	}
	g.finish()
	return true
}

func (g *GameState) finish() {
	g.Status = StatusFinished
	g.Stage = StageAwaitingRoll
	g.Dice = 0
}

// PlayerSnapshot is the public view of one seat. The bomb carrier's piece
// index stays hidden: carriers are disguised until detonation.
type PlayerSnapshot struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Color      Color               `json:"color"`
	Pieces     [PiecesPerPlayer]int `json:"pieces"`
	Multiplier int                 `json:"multiplier"`
	HasBomb    bool                `json:"hasBomb"`
	IsBot      bool                `json:"isBot"`
	BotLevel   string              `json:"botLevel,omitempty"`
}

// Snapshot is the public session state broadcast to the room. Tile effects
// are omitted: mystery tiles reveal themselves only on pickup.
type Snapshot struct {
	RoomID        string           `json:"roomId"`
	Status        GameStatus       `json:"status"`
	Stage         Stage            `json:"stage"`
	Dice          *int             `json:"dice"` // null until rolled
	TurnIndex     int              `json:"turnIndex"`
	CurrentPlayer string           `json:"currentPlayerId,omitempty"`
	Players       []PlayerSnapshot `json:"players"`
	Winners       []string         `json:"winners"`
	TotalTurns    int              `json:"totalTurns"`
	PowerUpCells  []int            `json:"powerUpCells"`
}

// Snapshot returns the public view of the session.
func (g *GameState) Snapshot() Snapshot {
	s := Snapshot{
		RoomID:       g.RoomID,
		Status:       g.Status,
		Stage:        g.Stage,
		TurnIndex:    g.TurnIndex,
		Winners:      append([]string(nil), g.Winners...),
		TotalTurns:   g.TotalTurns,
		PowerUpCells: g.PowerUps.Cells(),
	}
	if g.Stage == StageAwaitingMove {
		d := g.Dice
		s.Dice = &d
	}
	if cur := g.CurrentPlayer(); cur != nil && g.Status == StatusInProgress {
		s.CurrentPlayer = cur.ID
	}
	for _, p := range g.Players {
		s.Players = append(s.Players, PlayerSnapshot{
			ID:         p.ID,
			Name:       p.Name,
			Color:      p.Color,
			Pieces:     p.Pieces,
			Multiplier: p.Multiplier,
			HasBomb:    p.Bomb != nil,
			IsBot:      p.IsBot,
			BotLevel:   p.BotLevel,
		})
	}
	return s
}
