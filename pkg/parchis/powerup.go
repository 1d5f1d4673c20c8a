package parchis

import (
	"math/rand"
	"sort"
)

// Effect is one of the five mystery-tile outcomes.
type Effect string

const (
	EffectBoost      Effect = "boost"       // bonus hop forward on the ring
	EffectDoubleRoll Effect = "double_roll" // same player rolls again
	EffectDoubleNext Effect = "x2_next"     // next roll is doubled
	EffectFreeExit   Effect = "free_exit"   // one piece leaves home for free
	EffectBomb       Effect = "bomb"        // arms a bomb on the landing piece
)

// Power-up tuning.
const (
	PowerUpCadence     = 6  // respawn tiles every N completed turns
	BoostCells         = 4  // extra cells granted by EffectBoost
	spawnAttempts      = 30 // bounded retries when placing tiles
	minTiles, maxTiles = 2, 3
)

// effectWeights drives the five-way draw at spawn time.
var effectWeights = []struct {
	effect Effect
	weight int
}{
	{EffectBoost, 30},
	{EffectDoubleRoll, 20},
	{EffectDoubleNext, 20},
	{EffectFreeExit, 15},
	{EffectBomb, 15},
}

// PowerUps owns the mystery tiles on the shared ring. Tile effects are
// drawn when a tile is placed and revealed only on pickup; clients see
// tile cells, never kinds.
type PowerUps struct {
	tiles map[int]Effect
	rng   *rand.Rand
}

// NewPowerUps creates an empty tile set drawing from rng.
func NewPowerUps(rng *rand.Rand) *PowerUps {
	return &PowerUps{tiles: make(map[int]Effect), rng: rng}
}

// Spawn clears all unclaimed tiles and places 2-3 new ones on ring cells
// that are neither occupied by a piece nor already holding a tile. Placement
// is attempt-bounded so a crowded board cannot loop forever.
func (u *PowerUps) Spawn(occupied func(cell int) bool) {
	u.tiles = make(map[int]Effect)
	want := minTiles + u.rng.Intn(maxTiles-minTiles+1)
	for attempt := 0; attempt < spawnAttempts && len(u.tiles) < want; attempt++ {
		cell := u.rng.Intn(RingSize)
		if occupied(cell) {
			continue
		}
		if _, taken := u.tiles[cell]; taken {
			continue
		}
		u.tiles[cell] = u.draw()
	}
}

// draw picks an effect by weighted random draw.
func (u *PowerUps) draw() Effect {
	total := 0
	for _, w := range effectWeights {
		total += w.weight
	}
	n := u.rng.Intn(total)
	for _, w := range effectWeights {
		n -= w.weight
		if n < 0 {
			return w.effect
		}
	}
	return effectWeights[len(effectWeights)-1].effect
}

// Consume removes and returns the tile at cell, if any.
func (u *PowerUps) Consume(cell int) (Effect, bool) {
	e, ok := u.tiles[cell]
	if ok {
		delete(u.tiles, cell)
	}
	return e, ok
}

// SetTile places a tile with a known effect. Used when loading fixtures and
// in tests that need a deterministic draw.
func (u *PowerUps) SetTile(cell int, e Effect) {
	u.tiles[cell] = e
}

// Cells returns the cells currently holding a tile, in ascending order.
func (u *PowerUps) Cells() []int {
	cells := make([]int, 0, len(u.tiles))
	for c := range u.tiles {
		cells = append(cells, c)
	}
	sort.Ints(cells)
	return cells
}
