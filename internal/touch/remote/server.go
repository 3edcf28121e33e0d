package remote

import (
	"context"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lumentouch/touchcore/internal/touch/l7track"
)

// Server adapts a running pipeline to PipelineStatusServer. It reads stats
// through the Snapshotter interface below, since PipelineStats'
// GetAndReset returns a concrete Snapshot, and holds the event feed
// directly; Server is
// constructed with the two accessors it needs rather than the whole
// Pipeline type, keeping this package free of a dependency on pipeline's
// worker internals.
type Server struct {
	statsFn func() map[string]Snapshotter
	events  <-chan l7track.TouchEvent
}

// Snapshotter is the subset of *observability.PipelineStats Server reads.
type Snapshotter interface {
	GetAndReset() SnapshotView
}

// SnapshotView mirrors observability.Snapshot's fields without importing
// the concrete type, so callers can adapt any counter source.
type SnapshotView struct {
	Scans, Dropped, ForegroundPts, Clusters, TouchEventsOut int64
	DurationSeconds                                         float64
	P50LatencySecs, P95LatencySecs                          float64
}

// NewServer builds a Server. statsFn is called fresh on every Stats RPC so
// the response always reflects the Pipeline's current goroutine set.
func NewServer(statsFn func() map[string]Snapshotter, events <-chan l7track.TouchEvent) *Server {
	return &Server{statsFn: statsFn, events: events}
}

func (s *Server) Stats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	fields := make(map[string]interface{})
	for name, snap := range s.statsFn() {
		v := snap.GetAndReset()
		fields[name] = map[string]interface{}{
			"scans":            float64(v.Scans),
			"dropped":          float64(v.Dropped),
			"foreground_pts":   float64(v.ForegroundPts),
			"clusters":         float64(v.Clusters),
			"touch_events_out": float64(v.TouchEventsOut),
			"duration_seconds": v.DurationSeconds,
			"p50_latency_ms":   v.P50LatencySecs * 1000,
			"p95_latency_ms":   v.P95LatencySecs * 1000,
		}
	}
	return structpb.NewStruct(fields)
}

func (s *Server) StreamEvents(_ *emptypb.Empty, stream PipelineStatus_StreamEventsServer) error {
	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case evt, ok := <-s.events:
			if !ok {
				return nil
			}
			msg, err := structpb.NewStruct(map[string]interface{}{
				"kind":            evt.Kind.String(),
				"session_id":      float64(evt.SessionID),
				"screen_id":       float64(evt.ScreenID),
				"u":               evt.U,
				"v":               evt.V,
				"du":              evt.DU,
				"dv":              evt.DV,
				"timestamp_nanos": float64(evt.TimestampNanos),
			})
			if err != nil {
				return err
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}
