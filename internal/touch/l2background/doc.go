// Package l2background owns Layer 2 (Background) of the touch-core data
// model.
//
// Responsibilities: learning and freezing a per-angle reference distance for
// one sensor, and classifying each new scan's samples as foreground or
// background against it.
//
// Dependency rule: L2 may depend on L1, but never on L3+.
package l2background
