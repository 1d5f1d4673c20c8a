package bot

import (
	"github.com/rmarchan/parchis-arena/server/pkg/parchis"
)

// Strategy picks which piece a bot moves after its roll. The legal slice is
// never empty when SelectPiece is called; the orchestrator skips the move
// stage entirely when no piece can advance.
type Strategy interface {
	Name() string
	SelectPiece(g *parchis.GameState, p *parchis.Player, legal []int) int
}

// StrategyForDifficulty returns the appropriate strategy for a bot difficulty level.
func StrategyForDifficulty(difficulty string) Strategy {
	switch difficulty {
	case "random":
		return &RandomStrategy{}
	case "rusher":
		return &RusherStrategy{}
	default:
		return &HeuristicStrategy{}
	}
}

// --- HeuristicStrategy ---

// HeuristicStrategy prefers a capturing move, then bringing a piece out of
// the home yard, then a uniformly random legal piece. It doubles as the
// auto-play policy for players who time out.
type HeuristicStrategy struct{}

func (HeuristicStrategy) Name() string { return "heuristic" }

func (HeuristicStrategy) SelectPiece(g *parchis.GameState, p *parchis.Player, legal []int) int {
	for _, piece := range legal {
		if wouldCapture(g, p, piece) {
			return piece
		}
	}
	for _, piece := range legal {
		if p.Pieces[piece] == parchis.PosHome {
			return piece
		}
	}
	return legal[botIntn(len(legal))]
}

// --- RandomStrategy ---

// RandomStrategy picks a uniformly random legal piece.
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) SelectPiece(_ *parchis.GameState, _ *parchis.Player, legal []int) int {
	return legal[botIntn(len(legal))]
}

// --- RusherStrategy ---

// RusherStrategy takes a capture when available, otherwise races the piece
// closest to the goal. It never leaves the home yard while a ring piece can
// still advance, which makes it strong in short games and brittle in long ones.
type RusherStrategy struct{}

func (RusherStrategy) Name() string { return "rusher" }

func (RusherStrategy) SelectPiece(g *parchis.GameState, p *parchis.Player, legal []int) int {
	for _, piece := range legal {
		if wouldCapture(g, p, piece) {
			return piece
		}
	}
	best := legal[0]
	for _, piece := range legal[1:] {
		if progress(p.Pieces[piece], p.Color) > progress(p.Pieces[best], p.Color) {
			best = piece
		}
	}
	return best
}

// progress measures how far along its track a piece is, higher is closer
// to the goal. Home pieces rank lowest so rushers keep pushing leaders.
func progress(pos int, c parchis.Color) int {
	switch {
	case pos == parchis.PosHome:
		return -1
	case parchis.InStretch(pos, c):
		return parchis.RingSize + (pos - c.StretchBase())
	default:
		return parchis.RingSize - ringStepsToTurn(pos, c)
	}
}

func ringStepsToTurn(pos int, c parchis.Color) int {
	return (c.Turn() - pos + parchis.RingSize) % parchis.RingSize
}

// wouldCapture reports whether moving the piece lands on a ring cell holding
// exactly one capturable enemy piece.
func wouldCapture(g *parchis.GameState, p *parchis.Player, piece int) bool {
	dest := parchis.ResolveDestination(p.Pieces[piece], g.Dice, p.Color)
	if !parchis.OnRing(dest) {
		return false
	}
	for _, other := range g.Players {
		if other.ID == p.ID {
			continue
		}
		var idxs []int
		for i, pos := range other.Pieces {
			if pos == dest {
				idxs = append(idxs, i)
			}
		}
		if len(idxs) != 1 {
			continue
		}
		if other.Bomb != nil && other.Bomb.PieceIndex == idxs[0] {
			continue
		}
		return true
	}
	return false
}
