// Package layout compiles declarative world-layout files into snapshots.
//
// Layouts are written in CUE. A file names its blocks, where each one
// stands or rests, and optionally a goal:
//
//	world: {
//		ground_width: 600
//		side:         40
//		blocks: {
//			a: {x: 0}
//			b: {on: "a", color: "#3366cc"}
//			c: {x: 100}
//		}
//	}
//	goal: {subject: "a", supporter: "c"}
//
// Grounded blocks give an x; stacked blocks name the block they rest on and
// inherit its x, seated exactly on its top. Side length is fixed for the
// whole world. Declaration order does not matter - stacking resolves after
// every block is known.
package layout

import (
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/gantry/internal/planner"
	"github.com/roach88/gantry/internal/world"
)

// Layout is a compiled layout file: the world it describes plus the goal,
// when one is declared.
type Layout struct {
	World world.Snapshot
	Goal  *planner.Goal
}

// DefaultSide is the block edge length when a layout omits world.side.
const DefaultSide = 40

// blockDecl is one block entry before stacking is resolved.
type blockDecl struct {
	id    world.ID
	x     int
	hasX  bool
	on    world.ID
	color world.Color
	pos   cue.Value // for error positions
}

// LoadFile reads and compiles a layout file from disk.
func LoadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return Compile(v)
}

// Compile parses a CUE value holding a layout document.
func Compile(v cue.Value) (*Layout, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	worldVal := v.LookupPath(cue.ParsePath("world"))
	if !worldVal.Exists() {
		return nil, &CompileError{Field: "world", Message: "world is required", Pos: v.Pos()}
	}

	side := DefaultSide
	if sideVal := worldVal.LookupPath(cue.ParsePath("side")); sideVal.Exists() {
		n, err := sideVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if n <= 0 {
			return nil, &CompileError{Field: "side", Message: "side must be positive", Pos: sideVal.Pos()}
		}
		side = int(n)
	}

	groundWidth := world.DefaultGroundWidth
	if gwVal := worldVal.LookupPath(cue.ParsePath("ground_width")); gwVal.Exists() {
		n, err := gwVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if n <= 0 {
			return nil, &CompileError{Field: "ground_width", Message: "ground_width must be positive", Pos: gwVal.Pos()}
		}
		groundWidth = int(n)
	}

	decls, err := parseBlocks(worldVal)
	if err != nil {
		return nil, err
	}
	if len(decls) == 0 {
		return nil, &CompileError{Field: "blocks", Message: "at least one block is required", Pos: worldVal.Pos()}
	}

	snapshot, err := placeAll(decls, side, groundWidth)
	if err != nil {
		return nil, err
	}

	out := &Layout{World: snapshot}

	if goalVal := v.LookupPath(cue.ParsePath("goal")); goalVal.Exists() {
		goal, err := parseGoal(goalVal, snapshot)
		if err != nil {
			return nil, err
		}
		out.Goal = goal
	}

	return out, nil
}

// parseBlocks reads world.blocks into declarations, keyed by the struct
// labels.
func parseBlocks(worldVal cue.Value) ([]blockDecl, error) {
	blocksVal := worldVal.LookupPath(cue.ParsePath("blocks"))
	if !blocksVal.Exists() {
		return nil, &CompileError{Field: "blocks", Message: "blocks is required", Pos: worldVal.Pos()}
	}

	iter, err := blocksVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var decls []blockDecl
	for iter.Next() {
		bv := iter.Value()
		d := blockDecl{id: world.ID(iter.Selector().String()), pos: bv}

		if xVal := bv.LookupPath(cue.ParsePath("x")); xVal.Exists() {
			n, err := xVal.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			d.x, d.hasX = int(n), true
		}
		if onVal := bv.LookupPath(cue.ParsePath("on")); onVal.Exists() {
			s, err := onVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			d.on = world.ID(s)
		}
		if colVal := bv.LookupPath(cue.ParsePath("color")); colVal.Exists() {
			s, err := colVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			c, err := parseColor(s)
			if err != nil {
				return nil, &CompileError{Field: string(d.id) + ".color", Message: err.Error(), Pos: colVal.Pos()}
			}
			d.color = c
		}

		switch {
		case d.on != "" && d.hasX:
			return nil, &CompileError{Field: string(d.id), Message: "declare either x or on, not both", Pos: bv.Pos()}
		case d.on == "" && !d.hasX:
			return nil, &CompileError{Field: string(d.id), Message: "a block needs x (grounded) or on (stacked)", Pos: bv.Pos()}
		case d.on == d.id:
			return nil, &CompileError{Field: string(d.id), Message: "a block cannot rest on itself", Pos: bv.Pos()}
		}

		decls = append(decls, d)
	}
	return decls, nil
}

// placeAll seats grounded blocks first, then resolves stacked blocks until
// a fixpoint. Anything left unresolved names an unknown block or sits in a
// support cycle.
func placeAll(decls []blockDecl, side, groundWidth int) (world.Snapshot, error) {
	var tx world.Transaction
	placed := map[world.ID]world.Block{}

	for _, d := range decls {
		if _, dup := placed[d.id]; dup {
			return world.Snapshot{}, &CompileError{Field: string(d.id), Message: "duplicate block", Pos: d.pos.Pos()}
		}
		if !d.hasX {
			placed[d.id] = world.Block{} // reserve the ID for duplicate detection
			continue
		}
		b := world.Block{ID: d.id, X: d.x, Y: 0, Side: side, Color: d.color}
		placed[d.id] = b
		tx = append(tx, world.AddBlock(b))
	}

	pending := make([]blockDecl, 0, len(decls))
	for _, d := range decls {
		if !d.hasX {
			pending = append(pending, d)
		}
	}
	seated := map[world.ID]bool{}
	for _, d := range decls {
		if d.hasX {
			seated[d.id] = true
		}
	}

	for len(pending) > 0 {
		progress := false
		var next []blockDecl
		for _, d := range pending {
			sup, ok := placed[d.on]
			if !ok {
				return world.Snapshot{}, &CompileError{
					Field: string(d.id), Message: fmt.Sprintf("rests on unknown block %q", d.on), Pos: d.pos.Pos(),
				}
			}
			if !seated[d.on] {
				next = append(next, d)
				continue
			}
			b := world.Block{ID: d.id, X: sup.X, Y: sup.Top(), Side: side, Color: d.color}
			placed[d.id] = b
			seated[d.id] = true
			tx = append(tx, world.AddBlock(b), world.AssertSupport(d.on, d.id))
			progress = true
		}
		if !progress {
			ids := make([]string, len(next))
			for i, d := range next {
				ids[i] = string(d.id)
			}
			sort.Strings(ids)
			return world.Snapshot{}, &CompileError{
				Field:   "blocks",
				Message: fmt.Sprintf("support cycle among %v", ids),
				Pos:     next[0].pos.Pos(),
			}
		}
		pending = next
	}

	return world.New(groundWidth).Apply(tx), nil
}

// parseGoal reads a goal {subject, supporter} and checks both blocks exist.
func parseGoal(goalVal cue.Value, s world.Snapshot) (*planner.Goal, error) {
	subjVal := goalVal.LookupPath(cue.ParsePath("subject"))
	supVal := goalVal.LookupPath(cue.ParsePath("supporter"))
	if !subjVal.Exists() || !supVal.Exists() {
		return nil, &CompileError{Field: "goal", Message: "goal needs subject and supporter", Pos: goalVal.Pos()}
	}
	subj, err := subjVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	sup, err := supVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for _, id := range []string{subj, sup} {
		if _, ok := s.Lookup(world.ID(id)); !ok {
			return nil, &CompileError{
				Field: "goal", Message: fmt.Sprintf("references unknown block %q", id), Pos: goalVal.Pos(),
			}
		}
	}
	return &planner.Goal{Subject: world.ID(subj), Supporter: world.ID(sup)}, nil
}

// parseColor parses "#rrggbb".
func parseColor(s string) (world.Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return world.Color{}, fmt.Errorf("color must be #rrggbb, got %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return world.Color{}, fmt.Errorf("color must be #rrggbb, got %q", s)
	}
	return world.Color{R: r, G: g, B: b}, nil
}
