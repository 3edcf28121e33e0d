// Package remote exposes a running Pipeline's touch-event stream and
// per-sensor/per-screen stats over gRPC, for the kind of outboard
// visualiser/monitoring tool the teacher's in-process UDP listener served
// directly but a touch input system keeps out of the real-time path.
// Messages use the protobuf runtime's well-known wrapper types
// (structpb, emptypb) rather than a hand-generated .pb.go, so there is
// no protoc step in this build.
package remote
