package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/lumentouch/touchcore/internal/observability"
	"github.com/lumentouch/touchcore/internal/touch/l5screen"
	"github.com/lumentouch/touchcore/internal/touch/l6fusion"
	"github.com/lumentouch/touchcore/internal/touch/l7track"
	"github.com/lumentouch/touchcore/internal/touch/l8tuio"
	"github.com/lumentouch/touchcore/internal/touchstore"
)

// frameGraceDeadline is spec.md §5's "10 ms past target" grace window: how
// long the screen worker waits, once the first sensor reports for a frame,
// for the remaining expected sensors before processing with what arrived.
const frameGraceDeadline = 10 * time.Millisecond

// screenWorker owns one screen's Fusion + Tracker pair: it assembles a
// frame from every sensor allowed to see the screen, merges cross-sensor
// duplicates, advances the tracker, and forwards emitted events to the
// TUIO emitter and (optionally) persistent history.
type screenWorker struct {
	screenID       int
	expectedSensor map[string]struct{} // sensors allowed to contribute
	inbox          chan frameBatch     // fed by per-sensor forwarders
	mergeRadius    float64
	tracker        *l7track.Tracker
	emitter        *l8tuio.Emitter
	store          *touchstore.DB
	stats          *observability.PipelineStats
	broadcast      chan l7track.TouchEvent // shared across screens; drop-oldest
}

func (w *screenWorker) run(ctx context.Context) {
	pending := make(map[string]frameBatch, len(w.expectedSensor))
	var grace *time.Timer
	var graceC <-chan time.Time

	stopGrace := func() {
		if grace != nil {
			grace.Stop()
			grace = nil
			graceC = nil
		}
	}
	defer stopGrace()

	for {
		select {
		case <-ctx.Done():
			return

		case batch, ok := <-w.inbox:
			if !ok {
				return
			}
			if len(pending) == 0 {
				grace = time.NewTimer(frameGraceDeadline)
				graceC = grace.C
			}
			pending[batch.sensorID] = batch
			if w.haveAllExpected(pending) {
				stopGrace()
				w.processFrame(pending)
				pending = make(map[string]frameBatch, len(w.expectedSensor))
			}

		case <-graceC:
			graceC = nil
			grace = nil
			w.processFrame(pending)
			pending = make(map[string]frameBatch, len(w.expectedSensor))
		}
	}
}

func (w *screenWorker) haveAllExpected(pending map[string]frameBatch) bool {
	if len(w.expectedSensor) == 0 {
		return false
	}
	for sensorID := range w.expectedSensor {
		if _, ok := pending[sensorID]; !ok {
			return false
		}
	}
	return true
}

func (w *screenWorker) processFrame(pending map[string]frameBatch) {
	if len(pending) == 0 {
		return
	}
	start := time.Now()
	defer func() { w.stats.AddFrameLatency(time.Since(start)) }()

	var all []l5screen.MappedCandidate
	var frameNanos int64
	for _, batch := range pending {
		all = append(all, batch.candidates...)
		if batch.timestampNanos > frameNanos {
			frameNanos = batch.timestampNanos
		}
	}

	merged := l6fusion.Merge(all, w.mergeRadius)
	events := w.tracker.Update(merged, frameNanos)
	w.stats.AddTouchEvents(len(events))

	for _, evt := range events {
		if w.store != nil {
			if err := w.store.InsertTouchEvent(w.screenID, evt); err != nil {
				log.Printf("pipeline: screen %d: persist touch event: %v", w.screenID, err)
			}
		}
		publishEvent(w.broadcast, evt)
	}

	confirmed := make([]l7track.Touch, 0, len(merged))
	for _, touch := range w.tracker.Touches() {
		if touch.Confirmed {
			confirmed = append(confirmed, touch)
		}
	}
	w.emitter.EmitScreenFrame(w.screenID, confirmed, frameNanos)
}
