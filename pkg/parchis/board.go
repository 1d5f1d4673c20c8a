// Package parchis implements the rules of a four-player Parchís variant:
// board arithmetic, captures, power-ups, bombs, and the per-session game
// state machine. The package is pure game logic with no I/O; the service
// layer drives it and owns timers and broadcasting.
package parchis

// Position encoding, per piece:
//
//	-1           in the home yard, not yet on the board
//	-99          permanently withdrawn (player surrendered)
//	0..51        shared circular main track, absolute cells
//	base..base+5 the color's private final stretch; base+5 is the goal
const (
	PosHome      = -1
	PosWithdrawn = -99

	RingSize        = 52
	StretchLen      = 6
	PiecesPerPlayer = 4
)

// Color identifies one of the four seats on the board.
type Color string

const (
	Green  Color = "green"
	Yellow Color = "yellow"
	Blue   Color = "blue"
	Red    Color = "red"
)

// ColorOrder is the canonical seating order; turn order follows it so play
// proceeds clockwise regardless of join order.
var ColorOrder = []Color{Green, Yellow, Blue, Red}

// colorSpec fixes where a color enters the ring, where it peels off into its
// private stretch, and the numeric base of that stretch.
type colorSpec struct {
	Entry       int
	Turn        int
	StretchBase int
}

var colorSpecs = map[Color]colorSpec{
	Green:  {Entry: 0, Turn: 50, StretchBase: 100},
	Yellow: {Entry: 13, Turn: 11, StretchBase: 200},
	Blue:   {Entry: 26, Turn: 24, StretchBase: 300},
	Red:    {Entry: 39, Turn: 37, StretchBase: 400},
}

// Valid reports whether c is one of the four playable colors.
func (c Color) Valid() bool {
	_, ok := colorSpecs[c]
	return ok
}

// Entry returns the ring cell where c's pieces enter from home.
func (c Color) Entry() int { return colorSpecs[c].Entry }

// Turn returns the last ring cell c occupies before its final stretch.
func (c Color) Turn() int { return colorSpecs[c].Turn }

// StretchBase returns the numeric base of c's final stretch cells.
func (c Color) StretchBase() int { return colorSpecs[c].StretchBase }

// Goal returns c's goal cell (the last stretch cell).
func (c Color) Goal() int { return colorSpecs[c].StretchBase + StretchLen - 1 }

// ColorIndex returns the canonical seat index of c, or -1.
func ColorIndex(c Color) int {
	for i, o := range ColorOrder {
		if o == c {
			return i
		}
	}
	return -1
}

// OnRing reports whether pos is on the shared main track.
func OnRing(pos int) bool { return pos >= 0 && pos < RingSize }

// InStretch reports whether pos is inside c's private final stretch
// (goal cell included).
func InStretch(pos int, c Color) bool {
	base := colorSpecs[c].StretchBase
	return pos >= base && pos <= base+StretchLen-1
}

// RingDistance returns the circular distance between two ring cells.
func RingDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if RingSize-d < d {
		d = RingSize - d
	}
	return d
}

// CanAdvance reports whether a piece of color c at pos may legally move
// dice steps, considering only board arithmetic. Walls blocking the path
// are a roster concern and are checked separately (PathBlocked).
//
// House rule: a piece exits home on a rolled 1 or 6. A doubled roll
// (multiplier) produces values that can never exit.
func CanAdvance(pos, dice int, c Color) bool {
	switch {
	case pos == PosWithdrawn:
		return false
	case pos == PosHome:
		return dice == 1 || dice == 6
	case InStretch(pos, c):
		return pos+dice <= c.Goal()
	case OnRing(pos):
		toTurn := (c.Turn() - pos + RingSize) % RingSize
		if dice <= toTurn {
			return true
		}
		// Overshoot past the turn cell climbs the stretch.
		return dice-toTurn-1 <= StretchLen-1
	default:
		return false
	}
}

// ResolveDestination returns the landing cell for a legal move. Callers must
// check CanAdvance first; the result is unspecified for illegal moves.
func ResolveDestination(pos, dice int, c Color) int {
	switch {
	case pos == PosHome:
		return c.Entry()
	case InStretch(pos, c):
		return pos + dice
	default:
		toTurn := (c.Turn() - pos + RingSize) % RingSize
		if dice <= toTurn {
			return (pos + dice) % RingSize
		}
		return c.StretchBase() + (dice - toTurn - 1)
	}
}

// PathCells returns every ring cell a piece of color c at pos crosses or
// lands on when moving dice steps, in step order. Stretch cells are omitted:
// the private stretch is never contested. From home the only contested cell
// is the entry cell itself.
func PathCells(pos, dice int, c Color) []int {
	if pos == PosHome {
		return []int{c.Entry()}
	}
	if !OnRing(pos) {
		return nil
	}
	toTurn := (c.Turn() - pos + RingSize) % RingSize
	steps := dice
	if steps > toTurn {
		steps = toTurn
	}
	cells := make([]int, 0, steps)
	for i := 1; i <= steps; i++ {
		cells = append(cells, (pos+i)%RingSize)
	}
	return cells
}
