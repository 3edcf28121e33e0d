// Package l4cluster owns Layer 4 (Cluster) of the touch-core data model.
//
// Responsibilities: grid-indexed DBSCAN clustering of foreground points
// into candidate touches.
//
// Dependency rule: L4 may depend on L1-L3, but never on L5+.
package l4cluster
