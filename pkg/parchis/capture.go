package parchis

// Capture records one enemy piece sent back to its home yard.
type Capture struct {
	PlayerID   string
	PlayerName string
	PieceIndex int
}

// piecesAt returns the indices of p's pieces currently on ring cell.
func piecesAt(p *Player, cell int) []int {
	var idxs []int
	for i, pos := range p.Pieces {
		if pos == cell {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// HasWallAt reports whether p has two or more pieces stacked on ring cell.
// A wall is immune to capture and blocks enemy passage.
func HasWallAt(p *Player, cell int) bool {
	return len(piecesAt(p, cell)) >= 2
}

// PathBlocked reports whether any enemy wall sits on a ring cell the mover
// would cross or land on. A wall blocks every intermediate cell, not just
// the landing cell.
func PathBlocked(players []*Player, mover *Player, pos, dice int) bool {
	for _, cell := range PathCells(pos, dice, mover.Color) {
		for _, p := range players {
			if p == mover {
				continue
			}
			if HasWallAt(p, cell) {
				return true
			}
		}
	}
	return false
}

// ResolveCaptures applies the capture rule after mover lands on ring cell:
// every other player with exactly one piece there loses it back to home,
// unless that exact piece carries an armed bomb (disguised carriers are
// immune). Stacks of two or more are walls and are never captured. All
// players are examined; distinct opponents can be captured on one cell.
func ResolveCaptures(players []*Player, mover *Player, cell int) []Capture {
	if !OnRing(cell) {
		return nil
	}
	var captured []Capture
	for _, p := range players {
		if p == mover {
			continue
		}
		idxs := piecesAt(p, cell)
		if len(idxs) != 1 {
			continue
		}
		idx := idxs[0]
		if p.Bomb != nil && p.Bomb.PieceIndex == idx {
			continue
		}
		p.Pieces[idx] = PosHome
		captured = append(captured, Capture{PlayerID: p.ID, PlayerName: p.Name, PieceIndex: idx})
	}
	return captured
}
