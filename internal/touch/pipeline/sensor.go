package pipeline

import (
	"context"
	"errors"
	"log"

	"github.com/lumentouch/touchcore/internal/observability"
	"github.com/lumentouch/touchcore/internal/touch/l1scan"
	"github.com/lumentouch/touchcore/internal/touch/l2background"
	"github.com/lumentouch/touchcore/internal/touch/l3geometry"
	"github.com/lumentouch/touchcore/internal/touch/l4cluster"
	"github.com/lumentouch/touchcore/internal/touch/l5screen"
)

// sensorWorker owns one Scanner and carries its scans through L2-L5: learn
// or classify background, project to world-frame, cluster, and map onto
// every screen this sensor is allowed to contribute to. Grounded on the
// teacher's per-connection listenUDP goroutine (cmd/lidar/lidar.go).
type sensorWorker struct {
	id          string
	scanner     l1scan.Scanner
	model       *l2background.Model
	pose        l3geometry.Pose
	angularStep float64
	clusterer   l4cluster.Clusterer
	screens     []l5screen.ScreenRect  // only the screens this sensor may feed
	outboxes    map[int]chan frameBatch // screenID -> this worker's private queue
	stats       *observability.PipelineStats
	indicesBuf  []int // pooled foreground-index scratch space, reused every scan
}

// run drives the sensor's scan loop until the scanner closes or ctx is
// cancelled. Suspension happens inside scanner.NextScan, matching spec.md
// §5's "blocking reads on the scanner" suspension point; cancellation
// latency is therefore bounded by the scanner's own timeout, not polled.
func (w *sensorWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		scan, err := w.scanner.NextScan()
		if err != nil {
			if errors.Is(err, l1scan.ErrScannerClosed) {
				return
			}
			if errors.Is(err, l1scan.ErrScanTimeout) {
				continue
			}
			log.Printf("pipeline: sensor %s: scan error: %v", w.id, err)
			continue
		}
		w.stats.AddScan()

		mapped, ready := w.processScan(scan)
		if !ready {
			continue
		}
		w.dispatch(scan.TimestampNanos, mapped)
	}
}

// processScan carries one scan through L2-L5: background classification,
// projection, clustering, and screen mapping. It reports ready=false while
// the background model is still learning, in which case the scan is
// consumed for learning only and nothing is dispatched downstream.
//
// Factored out of run so a deterministic test can drive the same L2-L5
// logic scan-by-scan without the surrounding goroutine and channel
// machinery (see golden_replay_test.go).
func (w *sensorWorker) processScan(scan l1scan.Scan) (mapped []l5screen.MappedCandidate, ready bool) {
	if w.model.IsLearning() {
		if err := w.model.ObserveScan(scan.Ranges); err != nil {
			log.Printf("pipeline: sensor %s: background learning: %v", w.id, err)
		}
		return nil, false
	}

	mask := w.model.Classify(scan.Ranges)
	w.indicesBuf = w.indicesBuf[:0]
	for i, fg := range mask {
		if fg {
			w.indicesBuf = append(w.indicesBuf, i)
		}
	}

	var candidates []l4cluster.Candidate
	if len(w.indicesBuf) > 0 {
		fgPoints := l3geometry.ProjectForeground(w.pose, w.angularStep, w.id, scan.Ranges, w.indicesBuf)
		w.stats.AddForegroundPoints(len(fgPoints))
		candidates = w.clusterer.Cluster(fgPoints, w.id, scan.TimestampNanos)
		w.stats.AddClusters(len(candidates))
	}

	// Every screen this sensor feeds is notified on every scan, even with
	// zero candidates, so the screen worker's frame window can complete via
	// "every contributing sensor reported" rather than always falling back
	// to its grace deadline (spec.md §5).
	return l5screen.MapAll(candidates, w.screens, nil), true
}

func (w *sensorWorker) dispatch(timestampNanos int64, mapped []l5screen.MappedCandidate) {
	byScreen := make(map[int][]l5screen.MappedCandidate, len(w.screens))
	for _, sc := range w.screens {
		byScreen[sc.ID] = nil
	}
	for _, m := range mapped {
		byScreen[m.ScreenID] = append(byScreen[m.ScreenID], m)
	}
	for screenID, cands := range byScreen {
		ch, ok := w.outboxes[screenID]
		if !ok {
			continue
		}
		sendDropOldest(ch, frameBatch{sensorID: w.id, timestampNanos: timestampNanos, candidates: cands}, w.stats)
	}
}
