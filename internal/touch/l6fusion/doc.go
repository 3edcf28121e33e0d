// Package l6fusion owns Layer 6 (Fusion) of the touch pipeline.
//
// Responsibilities: given every MappedCandidate that landed on one screen in
// one frame window (possibly contributed by several sensors), merge any pair
// within r_merge of each other by point-count-weighted centroid, iterating
// to a fixed point, and hand the tracker a deduplicated candidate set.
//
// Dependency rule: L6 may depend on L1-L5, but never on L7+.
package l6fusion
