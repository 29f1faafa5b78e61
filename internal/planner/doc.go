// Package planner computes the operation sequence that carries a world from
// its current arrangement to a goal arrangement.
//
// The search is bounded greedy hill-climbing with single-step lookahead, not
// a full planner with backtracking: each step enumerates every operation
// over the currently clear blocks, scores the hypothetical result of each
// with a distance heuristic, commits to the lowest score, and repeats until
// the goal holds or the step budget runs out. Plans are therefore legal and
// complete when reported, but not necessarily shortest.
//
// During search, candidate futures are produced through the UNCHECKED
// transaction path - legality holds by construction because only clear
// blocks are enumerated. A plan is never trusted on that argument alone:
// Validate replays it through the legality-checking apply path, and
// consumers must discard any plan that fails the replay.
package planner
