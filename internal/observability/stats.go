// Package observability is the pipeline's counters-and-logging layer:
// thread-safe accumulators that each worker goroutine touches on every
// frame, periodically drained and logged the way the teacher corpus logs
// its packet throughput. Percentile latency figures use gonum/stat, the
// same library the teacher's admin routes use for summarizing request
// timings, rather than a hand-rolled quantile function.
package observability

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// maxLatencySamples bounds the per-window frame-latency buffer; once full,
// the oldest sample is dropped for the newest rather than growing
// unbounded on a long-running process.
const maxLatencySamples = 4096

// PipelineStats tracks per-sensor scan throughput and queue health for one
// sensor's worker goroutine, grounded on the teacher's PacketStats.
type PipelineStats struct {
	mu sync.Mutex

	scanCount      int64
	droppedCount   int64
	foregroundPts  int64
	clusterCount   int64
	touchEventsOut int64
	frameLatencies []float64 // seconds; screen workers only
	lastReset      time.Time
}

// NewPipelineStats creates a PipelineStats with its reset window starting now.
func NewPipelineStats() *PipelineStats {
	return &PipelineStats{lastReset: time.Now()}
}

// AddScan records one scan ingested from the sensor's channel.
func (s *PipelineStats) AddScan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanCount++
}

// AddDropped records one scan dropped because the bounded queue was full
// (spec.md's drop-oldest policy).
func (s *PipelineStats) AddDropped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.droppedCount++
}

// AddForegroundPoints records how many foreground samples one frame produced.
func (s *PipelineStats) AddForegroundPoints(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foregroundPts += int64(n)
}

// AddClusters records how many clusters one frame produced.
func (s *PipelineStats) AddClusters(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clusterCount += int64(n)
}

// AddTouchEvents records how many TouchEvents the tracker emitted for one
// frame (ADD/UPDATE/REMOVE combined).
func (s *PipelineStats) AddTouchEvents(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchEventsOut += int64(n)
}

// AddFrameLatency records one screen worker's processFrame wall-clock cost,
// used to compute the p50/p95 figures in Snapshot.
func (s *PipelineStats) AddFrameLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frameLatencies) >= maxLatencySamples {
		s.frameLatencies = s.frameLatencies[1:]
	}
	s.frameLatencies = append(s.frameLatencies, d.Seconds())
}

// Snapshot is a point-in-time, reset-on-read view of a PipelineStats window.
type Snapshot struct {
	Scans            int64
	Dropped          int64
	ForegroundPts    int64
	Clusters         int64
	TouchEventsOut   int64
	Duration         time.Duration
	P50LatencySecs   float64
	P95LatencySecs   float64
}

// GetAndReset returns the accumulated counters since the last reset and
// zeroes them, mirroring PacketStats.GetAndReset.
func (s *PipelineStats) GetAndReset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	snap := Snapshot{
		Scans:          s.scanCount,
		Dropped:        s.droppedCount,
		ForegroundPts:  s.foregroundPts,
		Clusters:       s.clusterCount,
		TouchEventsOut: s.touchEventsOut,
		Duration:       now.Sub(s.lastReset),
	}

	if len(s.frameLatencies) > 0 {
		sorted := append([]float64(nil), s.frameLatencies...)
		sort.Float64s(sorted)
		snap.P50LatencySecs = stat.Quantile(0.50, stat.Empirical, sorted, nil)
		snap.P95LatencySecs = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	}

	s.scanCount = 0
	s.droppedCount = 0
	s.foregroundPts = 0
	s.clusterCount = 0
	s.touchEventsOut = 0
	s.frameLatencies = s.frameLatencies[:0]
	s.lastReset = now

	return snap
}

// Log formats and logs the current window via the standard log package,
// then resets it. Silent when nothing happened during the window.
func (s *PipelineStats) Log(sensorID string) {
	snap := s.GetAndReset()
	if snap.Scans == 0 && snap.Dropped == 0 {
		return
	}

	scansPerSec := float64(snap.Scans) / snap.Duration.Seconds()
	msg := fmt.Sprintf("touch stats [%s]: %.1f scans/sec, %d clusters, %d touch events",
		sensorID, scansPerSec, snap.Clusters, snap.TouchEventsOut)
	if snap.Dropped > 0 {
		msg += fmt.Sprintf(", %d dropped", snap.Dropped)
	}
	if snap.P95LatencySecs > 0 {
		msg += fmt.Sprintf(", p50/p95 frame latency %.1f/%.1fms", snap.P50LatencySecs*1000, snap.P95LatencySecs*1000)
	}
	log.Print(msg)
}
