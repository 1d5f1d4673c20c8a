package parchis

import "testing"

func TestColorSpecs(t *testing.T) {
	tests := []struct {
		color Color
		entry int
		turn  int
		goal  int
	}{
		{Green, 0, 50, 105},
		{Yellow, 13, 11, 205},
		{Blue, 26, 24, 305},
		{Red, 39, 37, 405},
	}
	for _, tt := range tests {
		if got := tt.color.Entry(); got != tt.entry {
			t.Errorf("%s.Entry() = %d, want %d", tt.color, got, tt.entry)
		}
		if got := tt.color.Turn(); got != tt.turn {
			t.Errorf("%s.Turn() = %d, want %d", tt.color, got, tt.turn)
		}
		if got := tt.color.Goal(); got != tt.goal {
			t.Errorf("%s.Goal() = %d, want %d", tt.color, got, tt.goal)
		}
	}
	if Color("purple").Valid() {
		t.Error("purple should not be a valid color")
	}
}

func TestRingDistance(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{1, 0, 1},
		{0, 51, 1},
		{51, 0, 1},
		{0, 26, 26},
		{10, 40, 22},
	}
	for _, tt := range tests {
		if got := RingDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("RingDistance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCanAdvanceFromHome(t *testing.T) {
	for dice := 1; dice <= 6; dice++ {
		want := dice == 1 || dice == 6
		if got := CanAdvance(PosHome, dice, Green); got != want {
			t.Errorf("CanAdvance(home, %d) = %v, want %v", dice, got, want)
		}
	}
	// Doubled rolls (2..12 even) can exceed 6 and never exit.
	for _, dice := range []int{8, 10, 12} {
		if CanAdvance(PosHome, dice, Green) {
			t.Errorf("CanAdvance(home, %d) should be false", dice)
		}
	}
}

func TestCanAdvanceWithdrawn(t *testing.T) {
	for dice := 1; dice <= 6; dice++ {
		if CanAdvance(PosWithdrawn, dice, Green) {
			t.Errorf("withdrawn piece should never advance (dice %d)", dice)
		}
	}
}

func TestCanAdvanceStretch(t *testing.T) {
	base := Green.StretchBase()
	tests := []struct {
		pos, dice int
		want      bool
	}{
		{base, 5, true},      // lands exactly on goal
		{base, 6, false},     // overshoots goal
		{base + 4, 1, true},  // lands on goal
		{base + 4, 2, false}, // overshoots
		{base + 5, 1, false}, // already at goal
	}
	for _, tt := range tests {
		if got := CanAdvance(tt.pos, tt.dice, Green); got != tt.want {
			t.Errorf("CanAdvance(%d, %d) = %v, want %v", tt.pos, tt.dice, got, tt.want)
		}
	}
}

func TestCanAdvanceIntoStretch(t *testing.T) {
	// Green turns off the ring at cell 50.
	tests := []struct {
		pos, dice int
		want      bool
	}{
		{50, 1, true},  // one past the turn: first stretch cell
		{50, 6, true},  // lands exactly on goal
		{50, 7, false}, // 12 via multiplier would overshoot
		{48, 2, true},  // lands on turn cell, still ring
		{48, 8, true},  // turn + 6 = goal
		{48, 9, false},
	}
	for _, tt := range tests {
		if got := CanAdvance(tt.pos, tt.dice, Green); got != tt.want {
			t.Errorf("CanAdvance(%d, %d) = %v, want %v", tt.pos, tt.dice, got, tt.want)
		}
	}
}

func TestResolveDestination(t *testing.T) {
	tests := []struct {
		name      string
		pos, dice int
		color     Color
		want      int
	}{
		{"home exit", PosHome, 6, Green, 0},
		{"home exit yellow", PosHome, 1, Yellow, 13},
		{"plain ring move", 10, 4, Green, 14},
		{"ring wraparound", 50, 4, Yellow, 2},
		{"onto turn cell", 48, 2, Green, 50},
		{"into stretch", 50, 1, Green, 100},
		{"turn overshoot to goal", 50, 6, Green, 105},
		{"within stretch", 101, 3, Green, 104},
		{"red into stretch", 37, 1, Red, 400},
	}
	for _, tt := range tests {
		if got := ResolveDestination(tt.pos, tt.dice, tt.color); got != tt.want {
			t.Errorf("%s: ResolveDestination(%d, %d, %s) = %d, want %d",
				tt.name, tt.pos, tt.dice, tt.color, got, tt.want)
		}
	}
}

// Every legal ring move must land where it claims: walking the path one cell
// at a time agrees with ResolveDestination, for all colors, positions and
// dice values a multiplier can produce.
func TestDestinationAgreesWithPath(t *testing.T) {
	for _, c := range ColorOrder {
		for pos := 0; pos < RingSize; pos++ {
			for dice := 1; dice <= 12; dice++ {
				if !CanAdvance(pos, dice, c) {
					continue
				}
				dest := ResolveDestination(pos, dice, c)
				toTurn := (c.Turn() - pos + RingSize) % RingSize
				if dice <= toTurn {
					want := (pos + dice) % RingSize
					if dest != want {
						t.Fatalf("%s pos %d dice %d: dest %d, want ring %d", c, pos, dice, dest, want)
					}
					continue
				}
				want := c.StretchBase() + (dice - toTurn - 1)
				if dest != want {
					t.Fatalf("%s pos %d dice %d: dest %d, want stretch %d", c, pos, dice, dest, want)
				}
				if !InStretch(dest, c) {
					t.Fatalf("%s pos %d dice %d: dest %d not in stretch", c, pos, dice, dest)
				}
			}
		}
	}
}

func TestPathCells(t *testing.T) {
	tests := []struct {
		name      string
		pos, dice int
		color     Color
		want      []int
	}{
		{"from home", PosHome, 6, Green, []int{0}},
		{"plain move", 10, 3, Green, []int{11, 12, 13}},
		{"wraparound", 50, 3, Yellow, []int{51, 0, 1}},
		{"stops at turn", 49, 4, Green, []int{50}},
		{"all stretch", 50, 3, Green, []int{}},
	}
	for _, tt := range tests {
		got := PathCells(tt.pos, tt.dice, tt.color)
		if len(got) != len(tt.want) {
			t.Errorf("%s: PathCells = %v, want %v", tt.name, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: PathCells = %v, want %v", tt.name, got, tt.want)
				break
			}
		}
	}
}
