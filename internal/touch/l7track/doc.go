// Package l7track owns Layer 7 (Tracker) of the touch pipeline, the
// stateful heart of the system (spec.md §4.7).
//
// Responsibilities: maintain the set of Touches on one screen, assign fresh
// MappedCandidates to existing Touches with a gated minimum-cost matching,
// smooth matched Touches by exponential moving average, birth unmatched
// candidates, age out unmatched Touches, and emit ADD/UPDATE/REMOVE events.
//
// Dependency rule: L7 may depend on L1-L6, but never on L8.
package l7track
