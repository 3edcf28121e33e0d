// Package l8tuio owns Layer 8 (TUIO Emitter) of the touch pipeline: it
// renders each screen's confirmed Touches into TUIO 1.1 `/tuio/2Dcur` OSC
// bundles and fans them out over UDP to configured (host, port, screen id)
// endpoints (spec.md §4.8).
//
// No OSC-protocol library exists anywhere in the retrieved example corpus,
// so osc.go implements the OSC 1.0 wire format directly against
// encoding/binary and bytes.Buffer; see DESIGN.md for the full accounting.
//
// Dependency rule: L8 depends on L7 (it emits Touches) but nothing above it.
package l8tuio
