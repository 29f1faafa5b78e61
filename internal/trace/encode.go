package trace

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/gantry/internal/op"
	"github.com/roach88/gantry/internal/planner"
	"github.com/roach88/gantry/internal/world"
)

// BlockDoc is the wire form of one block. On names the supporter, empty for
// grounded blocks. The wire form assumes the forest shape every
// operation-built world has; a hand-built multi-supporter snapshot is not
// representable and is rejected by EncodeWorld.
type BlockDoc struct {
	ID    string `json:"id"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Side  int    `json:"side"`
	Color [3]int `json:"color"`
	On    string `json:"on,omitempty"`
}

// WorldDoc is the wire form of a whole snapshot. Blocks are sorted by ID.
type WorldDoc struct {
	GroundWidth int        `json:"ground_width"`
	Blocks      []BlockDoc `json:"blocks"`
}

// EncodeWorld converts a snapshot to its wire form.
func EncodeWorld(s world.Snapshot) (WorldDoc, error) {
	doc := WorldDoc{GroundWidth: s.GroundWidth()}
	for _, b := range s.AllBlocks() {
		bd := BlockDoc{
			ID:    string(b.ID),
			X:     b.X,
			Y:     b.Y,
			Side:  b.Side,
			Color: [3]int{int(b.Color.R), int(b.Color.G), int(b.Color.B)},
		}
		switch supporters := s.Supporters(b.ID); len(supporters) {
		case 0:
		case 1:
			bd.On = string(supporters[0])
		default:
			return WorldDoc{}, fmt.Errorf("block %q has %d supporters, wire form holds one", b.ID, len(supporters))
		}
		doc.Blocks = append(doc.Blocks, bd)
	}
	return doc, nil
}

// DecodeWorld rebuilds a snapshot from its wire form. A block naming an
// unknown supporter is an error.
func DecodeWorld(doc WorldDoc) (world.Snapshot, error) {
	known := map[string]bool{}
	for _, bd := range doc.Blocks {
		if known[bd.ID] {
			return world.Snapshot{}, fmt.Errorf("duplicate block %q", bd.ID)
		}
		known[bd.ID] = true
	}

	var tx world.Transaction
	for _, bd := range doc.Blocks {
		tx = append(tx, world.AddBlock(world.Block{
			ID:   world.ID(bd.ID),
			X:    bd.X,
			Y:    bd.Y,
			Side: bd.Side,
			Color: world.Color{
				R: uint8(bd.Color[0]),
				G: uint8(bd.Color[1]),
				B: uint8(bd.Color[2]),
			},
		}))
		if bd.On != "" {
			if !known[bd.On] {
				return world.Snapshot{}, fmt.Errorf("block %q rests on unknown block %q", bd.ID, bd.On)
			}
			tx = append(tx, world.AssertSupport(world.ID(bd.On), world.ID(bd.ID)))
		}
	}
	return world.New(doc.GroundWidth).Apply(tx), nil
}

// MarshalWorld renders the wire form as JSON bytes.
func MarshalWorld(s world.Snapshot) ([]byte, error) {
	doc, err := EncodeWorld(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// UnmarshalWorld parses JSON bytes back into a snapshot.
func UnmarshalWorld(data []byte) (world.Snapshot, error) {
	var doc WorldDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return world.Snapshot{}, fmt.Errorf("unmarshal world: %w", err)
	}
	return DecodeWorld(doc)
}

// MarshalPlan renders a plan as a JSON array of operations.
func MarshalPlan(p planner.Plan) ([]byte, error) {
	if p == nil {
		p = planner.Plan{}
	}
	return json.Marshal(p)
}

// UnmarshalPlan parses a JSON operation array, rejecting unknown kinds.
func UnmarshalPlan(data []byte) (planner.Plan, error) {
	var p planner.Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	for i, o := range p {
		switch o.Kind {
		case op.KindMove, op.KindClear, op.KindTransit:
		default:
			return nil, fmt.Errorf("plan step %d: unknown kind %q", i, o.Kind)
		}
	}
	return p, nil
}

// MarshalOp renders a single operation as JSON.
func MarshalOp(o op.Op) ([]byte, error) {
	return json.Marshal(o)
}

// UnmarshalOp parses a single JSON operation, rejecting unknown kinds.
func UnmarshalOp(data []byte) (op.Op, error) {
	var o op.Op
	if err := json.Unmarshal(data, &o); err != nil {
		return op.Op{}, fmt.Errorf("unmarshal op: %w", err)
	}
	switch o.Kind {
	case op.KindMove, op.KindClear, op.KindTransit:
	default:
		return op.Op{}, fmt.Errorf("unknown op kind %q", o.Kind)
	}
	return o, nil
}

// canonicalWorld builds the canonical-JSON value for a snapshot.
func canonicalWorld(s world.Snapshot) (map[string]any, error) {
	doc, err := EncodeWorld(s)
	if err != nil {
		return nil, err
	}
	blocks := make([]any, len(doc.Blocks))
	for i, bd := range doc.Blocks {
		m := map[string]any{
			"id":    bd.ID,
			"x":     bd.X,
			"y":     bd.Y,
			"side":  bd.Side,
			"color": []any{bd.Color[0], bd.Color[1], bd.Color[2]},
		}
		if bd.On != "" {
			m["on"] = bd.On
		}
		blocks[i] = m
	}
	return map[string]any{
		"ground_width": doc.GroundWidth,
		"blocks":       blocks,
	}, nil
}

// canonicalOp builds the canonical-JSON value for one operation.
func canonicalOp(o op.Op) map[string]any {
	m := map[string]any{"kind": string(o.Kind)}
	if o.Moved != "" {
		m["moved"] = string(o.Moved)
	}
	if o.Target != "" {
		m["target"] = string(o.Target)
	}
	return m
}

// canonicalGoal builds the canonical-JSON value for a goal.
func canonicalGoal(g planner.Goal) map[string]any {
	return map[string]any{
		"subject":   string(g.Subject),
		"supporter": string(g.Supporter),
	}
}
