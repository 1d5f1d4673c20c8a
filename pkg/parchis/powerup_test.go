package parchis

import (
	"math/rand"
	"testing"
)

func TestSpawnPlacesTiles(t *testing.T) {
	u := NewPowerUps(rand.New(rand.NewSource(1)))
	u.Spawn(func(cell int) bool { return false })

	cells := u.Cells()
	if len(cells) < minTiles || len(cells) > maxTiles {
		t.Errorf("spawned %d tiles, want between %d and %d", len(cells), minTiles, maxTiles)
	}
	for _, c := range cells {
		if !OnRing(c) {
			t.Errorf("tile on %d, outside the ring", c)
		}
	}
}

func TestSpawnAvoidsOccupiedCells(t *testing.T) {
	u := NewPowerUps(rand.New(rand.NewSource(7)))
	blocked := map[int]bool{3: true, 17: true, 40: true}
	for i := 0; i < 20; i++ {
		u.Spawn(func(cell int) bool { return blocked[cell] })
		for _, c := range u.Cells() {
			if blocked[c] {
				t.Fatalf("tile spawned on occupied cell %d", c)
			}
		}
	}
}

func TestSpawnClearsPreviousTiles(t *testing.T) {
	u := NewPowerUps(rand.New(rand.NewSource(3)))
	u.SetTile(5, EffectBoost)
	u.Spawn(func(cell int) bool { return cell != 30 && cell != 31 })

	for _, c := range u.Cells() {
		if c == 5 {
			// 5 is occupied per the predicate above, so its survival
			// means the old tile leaked through the respawn.
			t.Error("stale tile survived respawn")
		}
	}
}

func TestSpawnBoundedOnFullBoard(t *testing.T) {
	u := NewPowerUps(rand.New(rand.NewSource(2)))
	// All cells occupied: Spawn must give up rather than loop.
	u.Spawn(func(cell int) bool { return true })
	if len(u.Cells()) != 0 {
		t.Errorf("expected no tiles on a full board, got %v", u.Cells())
	}
}

func TestConsume(t *testing.T) {
	u := NewPowerUps(rand.New(rand.NewSource(1)))
	u.SetTile(14, EffectDoubleRoll)

	e, ok := u.Consume(14)
	if !ok || e != EffectDoubleRoll {
		t.Errorf("Consume(14) = %v, %v; want double_roll, true", e, ok)
	}
	if _, ok := u.Consume(14); ok {
		t.Error("tile should be gone after pickup")
	}
	if _, ok := u.Consume(15); ok {
		t.Error("empty cell should not yield a tile")
	}
}

func TestDrawCoversAllEffects(t *testing.T) {
	u := NewPowerUps(rand.New(rand.NewSource(9)))
	seen := make(map[Effect]int)
	for i := 0; i < 2000; i++ {
		seen[u.draw()]++
	}
	for _, w := range effectWeights {
		if seen[w.effect] == 0 {
			t.Errorf("effect %s never drawn", w.effect)
		}
	}
	// Boost carries the highest weight and should dominate.
	for _, w := range effectWeights[1:] {
		if seen[EffectBoost] <= seen[w.effect] {
			t.Errorf("boost drawn %d times, fewer than %s (%d)", seen[EffectBoost], w.effect, seen[w.effect])
		}
	}
}
