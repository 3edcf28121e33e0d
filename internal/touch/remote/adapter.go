package remote

import "github.com/lumentouch/touchcore/internal/observability"

// statsAdapter makes an *observability.PipelineStats satisfy Snapshotter
// without observability needing to know about this package's view type.
type statsAdapter struct {
	stats *observability.PipelineStats
}

func (a statsAdapter) GetAndReset() SnapshotView {
	snap := a.stats.GetAndReset()
	return SnapshotView{
		Scans:           snap.Scans,
		Dropped:         snap.Dropped,
		ForegroundPts:   snap.ForegroundPts,
		Clusters:        snap.Clusters,
		TouchEventsOut:  snap.TouchEventsOut,
		DurationSeconds: snap.Duration.Seconds(),
		P50LatencySecs:  snap.P50LatencySecs,
		P95LatencySecs:  snap.P95LatencySecs,
	}
}

// AdaptStats wraps a Pipeline's raw stats map (sensor id / "screen-<id>" ->
// *observability.PipelineStats) into the Snapshotter map NewServer expects.
func AdaptStats(raw map[string]*observability.PipelineStats) func() map[string]Snapshotter {
	return func() map[string]Snapshotter {
		out := make(map[string]Snapshotter, len(raw))
		for name, s := range raw {
			out[name] = statsAdapter{stats: s}
		}
		return out
	}
}
