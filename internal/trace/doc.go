// Package trace gives worlds, goals, and plans a stable wire form and a
// content-addressed identity.
//
// The wire form (WorldDoc and friends) is ordinary JSON used by the session
// log and the CLI. Identity comes from canonical JSON: object keys sorted,
// strings NFC-normalized, no HTML escaping, no floats, no null. The same
// world always canonicalizes to the same bytes, so its SHA-256 digest can be
// compared across processes and replays.
package trace
