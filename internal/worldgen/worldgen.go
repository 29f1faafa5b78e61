// Package worldgen builds randomized initial worlds.
//
// Placement mirrors what the claw rig starts from: blocks drop in one at a
// time at a random horizontal position, landing on the tallest block whose
// footprint overlaps, or on the ground if nothing does. Placement is a
// direct, unvalidated write - there is no prior block to clear-check the
// very first drop against, so it bypasses the operation catalog entirely.
package worldgen

import (
	"fmt"
	"math/rand"

	"github.com/roach88/gantry/internal/world"
)

// Defaults for generation parameters.
const (
	DefaultCount = 10
	DefaultSide  = 40
)

// Params controls world generation. The zero value is not useful; build
// one with NewParams and adjust via options.
type Params struct {
	Count       int   // number of blocks to drop
	Side        int   // edge length, fixed for the whole run
	GroundWidth int   // horizontal extent of usable ground
	Seed        int64 // RNG seed; the same seed reproduces the same world
}

// Option adjusts generation parameters.
type Option func(*Params)

// WithCount sets how many blocks are dropped.
func WithCount(n int) Option { return func(p *Params) { p.Count = n } }

// WithSide sets the edge length for every block in the run.
func WithSide(side int) Option { return func(p *Params) { p.Side = side } }

// WithGroundWidth sets the usable ground extent.
func WithGroundWidth(w int) Option { return func(p *Params) { p.GroundWidth = w } }

// WithSeed fixes the RNG seed for reproducible worlds.
func WithSeed(seed int64) Option { return func(p *Params) { p.Seed = seed } }

// NewParams returns defaulted parameters with the given options applied.
func NewParams(opts ...Option) Params {
	p := Params{
		Count:       DefaultCount,
		Side:        DefaultSide,
		GroundWidth: world.DefaultGroundWidth,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Generate drops p.Count blocks one at a time and returns the resulting
// snapshot. Block IDs are "b01", "b02", ... in drop order.
func Generate(p Params) world.Snapshot {
	rng := rand.New(rand.NewSource(p.Seed))
	s := world.New(p.GroundWidth)

	for i := 0; i < p.Count; i++ {
		id := world.ID(fmt.Sprintf("b%02d", i+1))
		b := world.Block{
			ID:   id,
			X:    rng.Intn(maxInt(p.GroundWidth-p.Side, 0) + 1),
			Side: p.Side,
			Color: world.Color{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
			},
		}
		s = s.Apply(place(s, b))
	}
	return s
}

// place returns the direct-placement transaction for one dropped block:
// stacked on the tallest overlapping block, position snapped as a move
// would snap it, or grounded at its random x when nothing overlaps.
func place(s world.Snapshot, b world.Block) world.Transaction {
	support, ok := s.FindSupport(b)
	if !ok {
		return world.Transaction{world.AddBlock(b)}
	}
	top, _ := s.Lookup(support)
	b.X = top.X
	b.Y = top.Top()
	return world.Transaction{
		world.AddBlock(b),
		world.AssertSupport(support, b.ID),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
