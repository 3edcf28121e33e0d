// Package l1scan owns Layer 1 (Scan) of the touch-core data model.
//
// Responsibilities: abstracting a planar range scanner (hardware-backed or
// mock) behind a single blocking-read interface, and guaranteeing the
// monotonic-timestamp / constant-N contract every higher layer relies on.
//
// Dependency rule: L1 has no inward dependencies on higher layers.
package l1scan
