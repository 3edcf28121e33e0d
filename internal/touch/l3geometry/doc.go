// Package l3geometry owns Layer 3 (Geometry) of the touch-core data model.
//
// Responsibilities: projecting a foreground polar sample into a world-frame
// Cartesian point under a sensor's pose and mounting offset.
//
// Dependency rule: L3 may depend on L1-L2, but never on L4+.
package l3geometry
