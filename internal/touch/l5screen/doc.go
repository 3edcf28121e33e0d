// Package l5screen owns Layer 5 (Screen) of the touch pipeline.
//
// Responsibilities: test each world-frame Candidate against the configured
// ScreenRects, and for the first (smallest-id) screen whose local-frame
// bounds contain the point and whose allowed-sensor set includes the
// candidate's sensor, emit a MappedCandidate normalized into [0,1]².
//
// Dependency rule: L5 may depend on L1-L4, but never on L6+.
package l5screen
