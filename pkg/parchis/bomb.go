package parchis

// Bomb fuse and blast parameters.
const (
	BombFuseTurns   = 3
	BombBlastRadius = 2
)

// Bomb is a timed hazard attached to one of a player's pieces. The carrier
// is immune to capture while disguised; the fuse ticks down once per
// completed turn of the owner.
type Bomb struct {
	PieceIndex int `json:"pieceIndex"`
	TurnsLeft  int `json:"turnsLeft"`
}

// Detonation describes an exploded bomb: the ring cell it went off on and
// the players (de-duplicated, in roster order) who lost pieces.
type Detonation struct {
	Cell    int
	Victims []string
}

// tickBomb advances p's bomb at the end of p's turn. It returns a
// Detonation when the fuse reaches zero, and defused=true when the carried
// piece left the ring (reached home or entered its final stretch) before
// the fuse ran out.
func tickBomb(players []*Player, p *Player) (det *Detonation, defused bool) {
	if p.Bomb == nil {
		return nil, false
	}
	pos := p.Pieces[p.Bomb.PieceIndex]
	if !OnRing(pos) {
		p.Bomb = nil
		return nil, true
	}
	p.Bomb.TurnsLeft--
	if p.Bomb.TurnsLeft > 0 {
		return nil, false
	}
	p.Bomb = nil
	return detonate(players, p, pos), false
}

// detonate sends the carrier's piece home along with every piece on the
// ring within BombBlastRadius cells of the blast, other players' included.
// Pieces in a private stretch are out of reach regardless of numeric
// proximity.
func detonate(players []*Player, carrier *Player, cell int) *Detonation {
	det := &Detonation{Cell: cell}
	for _, p := range players {
		hit := false
		for i, pos := range p.Pieces {
			if !OnRing(pos) {
				continue
			}
			if RingDistance(pos, cell) <= BombBlastRadius {
				p.Pieces[i] = PosHome
				hit = true
			}
		}
		if hit {
			det.Victims = append(det.Victims, p.Name)
		}
	}
	return det
}
