// Package world holds the blocks-world fact store: block attributes, the
// directed supports relation, and the pure queries derived from them.
//
// The central type is Snapshot, an immutable view of every block and every
// supports edge at one instant. Snapshots have value semantics: Apply takes
// a transaction (a list of mutations) and returns a NEW snapshot, leaving
// the receiver untouched. Old snapshots stay valid indefinitely, which is
// what lets the planner explore hypothetical futures without ever mutating
// the world the caller holds.
//
// Apply is pure and total. It performs NO physical validation - a transaction
// that stacks a block in mid-air applies cleanly. Legality is the operation
// catalog's job (package op); this layer only guarantees that the same
// transaction applied to the same snapshot always yields the same result.
package world
