package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPipelineStats_AccumulatesAcrossCalls(t *testing.T) {
	s := NewPipelineStats()
	s.AddScan()
	s.AddScan()
	s.AddDropped()
	s.AddForegroundPoints(12)
	s.AddClusters(2)
	s.AddTouchEvents(3)

	snap := s.GetAndReset()
	require.Equal(t, int64(2), snap.Scans)
	require.Equal(t, int64(1), snap.Dropped)
	require.Equal(t, int64(12), snap.ForegroundPts)
	require.Equal(t, int64(2), snap.Clusters)
	require.Equal(t, int64(3), snap.TouchEventsOut)
}

func TestPipelineStats_GetAndResetZeroesCounters(t *testing.T) {
	s := NewPipelineStats()
	s.AddScan()
	_ = s.GetAndReset()

	snap := s.GetAndReset()
	require.Zero(t, snap.Scans)
	require.Zero(t, snap.Dropped)
}

func TestPipelineStats_DurationReflectsElapsedWindow(t *testing.T) {
	s := NewPipelineStats()
	time.Sleep(5 * time.Millisecond)
	snap := s.GetAndReset()
	require.Greater(t, snap.Duration, time.Duration(0))
}

func TestPipelineStats_LogIsSilentWithoutActivity(t *testing.T) {
	s := NewPipelineStats()
	s.Log("north") // must not panic on an empty window
}

func TestPipelineStats_FrameLatencyPercentiles(t *testing.T) {
	s := NewPipelineStats()
	for i := 1; i <= 100; i++ {
		s.AddFrameLatency(time.Duration(i) * time.Millisecond)
	}

	snap := s.GetAndReset()
	require.InDelta(t, 0.050, snap.P50LatencySecs, 0.01)
	require.InDelta(t, 0.095, snap.P95LatencySecs, 0.01)

	snap2 := s.GetAndReset()
	require.Zero(t, snap2.P50LatencySecs)
}
