package pipeline

import (
	"github.com/lumentouch/touchcore/internal/observability"
	"github.com/lumentouch/touchcore/internal/touch/l5screen"
	"github.com/lumentouch/touchcore/internal/touch/l7track"
)

// sensorQueueCapacity is the "capacity 4 frames" bounded queue spec.md §5
// requires between each sensor worker and the screen worker(s) it feeds.
const sensorQueueCapacity = 4

// eventBroadcastCapacity bounds the shared feed read by remote observers
// (internal/touch/remote); a slow or absent subscriber drops the oldest
// queued event rather than blocking a screen worker.
const eventBroadcastCapacity = 256

// publishEvent is a no-op when ch is nil. Workers built by New always get
// the Pipeline's events channel; with nobody reading it, each new event
// displaces the oldest queued one once the channel is full.
func publishEvent(ch chan l7track.TouchEvent, evt l7track.TouchEvent) {
	if ch == nil {
		return
	}
	select {
	case ch <- evt:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- evt:
	default:
	}
}

// frameBatch is one sensor's contribution to one screen's frame: every
// MappedCandidate that sensor produced this scan which fell on that screen.
type frameBatch struct {
	sensorID       string
	timestampNanos int64
	candidates     []l5screen.MappedCandidate
}

// sendDropOldest pushes item onto ch, dropping the oldest queued item first
// if ch is full. Callers must be the channel's sole producer: sensorWorker
// owns one such queue per screen it feeds, so this never races.
func sendDropOldest(ch chan frameBatch, item frameBatch, stats *observability.PipelineStats) {
	select {
	case ch <- item:
		return
	default:
	}
	select {
	case <-ch:
		stats.AddDropped()
	default:
	}
	select {
	case ch <- item:
	default:
	}
}
