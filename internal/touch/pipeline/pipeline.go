package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lumentouch/touchcore/internal/observability"
	"github.com/lumentouch/touchcore/internal/touch/l1scan"
	"github.com/lumentouch/touchcore/internal/touch/l2background"
	"github.com/lumentouch/touchcore/internal/touch/l3geometry"
	"github.com/lumentouch/touchcore/internal/touch/l4cluster"
	"github.com/lumentouch/touchcore/internal/touch/l5screen"
	"github.com/lumentouch/touchcore/internal/touch/l7track"
	"github.com/lumentouch/touchcore/internal/touch/l8tuio"
	"github.com/lumentouch/touchcore/internal/touchconfig"
	"github.com/lumentouch/touchcore/internal/touchstore"
)

// emitterWriteTimeout bounds a single UDP write to a TUIO endpoint.
const emitterWriteTimeout = 10 * time.Millisecond

// Pipeline is the assembled, runnable touch-core: one sensorWorker per
// configured sensor, one screenWorker per configured screen, and the
// shared l8tuio.Emitter the screen workers feed. Grounded on spec.md §5's topology
// and the teacher's cmd/lidar/lidar.go wiring of UDP listener + stats +
// HTTP goroutines under one context.
type Pipeline struct {
	sensors []*sensorWorker
	screens []*screenWorker
	links   []link
	emitter *l8tuio.Emitter
	stats   map[string]*observability.PipelineStats
	events  chan l7track.TouchEvent
}

type link struct {
	from chan frameBatch
	to   chan frameBatch
}

// New builds a Pipeline from a validated Config and a set of already-opened
// Scanners keyed by sensor id (dialing hardware is the caller's concern;
// Pipeline only consumes the interface). store is optional; when non-nil,
// every TouchEvent is additionally persisted.
func New(cfg touchconfig.Config, scanners map[string]l1scan.Scanner, store *touchstore.DB) (*Pipeline, error) {
	screens := make([]l5screen.ScreenRect, 0, len(cfg.Screens))
	for _, sc := range cfg.Screens {
		allowed := make(map[string]struct{}, len(sc.AllowedSensors))
		for _, id := range sc.AllowedSensors {
			allowed[id] = struct{}{}
		}
		screens = append(screens, l5screen.ScreenRect{
			ID: sc.ID, X: sc.X, Y: sc.Y, W: sc.W, H: sc.H, Phi: sc.Phi,
			AllowedSensors: allowed,
		})
	}

	emitter := l8tuio.NewEmitter(cfg.AppName, cfg.HostName, cfg.Global.HeartbeatInterval, emitterWriteTimeout)
	for _, ep := range cfg.Endpoints {
		if err := emitter.AddEndpoint(l8tuio.Endpoint{Host: ep.Host, Port: ep.Port, ScreenID: ep.ScreenID}); err != nil {
			return nil, fmt.Errorf("pipeline: add endpoint %s:%d: %w", ep.Host, ep.Port, err)
		}
	}

	counter := l7track.NewSessionCounter()
	trackerParams := l7track.Params{
		Beta:           cfg.Global.Beta,
		Gamma:          cfg.Global.Gamma,
		BirthGrace:     cfg.Global.BirthGrace,
		DeathThreshold: cfg.Global.DeathThreshold,
		RGate:          cfg.Global.GateRadius,
	}

	p := &Pipeline{
		emitter: emitter,
		stats:   make(map[string]*observability.PipelineStats),
		events:  make(chan l7track.TouchEvent, eventBroadcastCapacity),
	}

	screenWorkers := make(map[int]*screenWorker, len(cfg.Screens))
	for _, sc := range cfg.Screens {
		expected := make(map[string]struct{}, len(sc.AllowedSensors))
		for _, id := range sc.AllowedSensors {
			expected[id] = struct{}{}
		}
		stats := observability.NewPipelineStats()
		p.stats[fmt.Sprintf("screen-%d", sc.ID)] = stats

		sw := &screenWorker{
			screenID:       sc.ID,
			expectedSensor: expected,
			inbox:          make(chan frameBatch, max(1, len(sc.AllowedSensors))),
			mergeRadius:    cfg.Global.MergeRadius,
			tracker:        l7track.NewTracker(sc.ID, trackerParams, counter),
			emitter:        emitter,
			store:          store,
			stats:          stats,
			broadcast:      p.events,
		}
		screenWorkers[sc.ID] = sw
		p.screens = append(p.screens, sw)
	}

	for _, sensorCfg := range cfg.Sensors {
		scanner, ok := scanners[sensorCfg.ID]
		if !ok {
			return nil, fmt.Errorf("pipeline: no scanner provided for sensor %q", sensorCfg.ID)
		}

		bgCfg := l2background.DefaultConfig().
			WithWindowFrames(sensorCfg.WindowFrames).
			WithForegroundDelta(sensorCfg.ForegroundDelta).
			WithRangeLimits(sensorCfg.MinRangeMeters, sensorCfg.MaxRangeMeters)
		model, err := l2background.NewModel(scanner.StepCount(), *bgCfg)
		if err != nil {
			return nil, fmt.Errorf("pipeline: sensor %q background model: %w", sensorCfg.ID, err)
		}

		clusterer := l4cluster.NewDBSCANClusterer(l4cluster.Params{
			Eps:    sensorCfg.ClusterEps,
			MinPts: sensorCfg.ClusterMinPts,
		})

		sensorScreens := make([]l5screen.ScreenRect, 0)
		outboxes := make(map[int]chan frameBatch)
		for _, screen := range screens {
			if !screen.AllowsSensor(sensorCfg.ID) {
				continue
			}
			sensorScreens = append(sensorScreens, screen)
			queue := make(chan frameBatch, sensorQueueCapacity)
			outboxes[screen.ID] = queue
			p.links = append(p.links, link{from: queue, to: screenWorkers[screen.ID].inbox})
		}

		stats := observability.NewPipelineStats()
		p.stats[sensorCfg.ID] = stats

		p.sensors = append(p.sensors, &sensorWorker{
			id:          sensorCfg.ID,
			scanner:     scanner,
			model:       model,
			pose:        l3geometry.Pose{X: sensorCfg.PoseX, Y: sensorCfg.PoseY, Theta: sensorCfg.PoseTheta, MountingOffset: sensorCfg.MountingOffset},
			angularStep: sensorCfg.AngularStepRadians,
			clusterer:   clusterer,
			screens:     sensorScreens,
			outboxes:    outboxes,
			stats:       stats,
		})
	}

	return p, nil
}

// Run starts every sensor worker, screen worker, and forwarding link, and
// blocks until ctx is cancelled and all goroutines have drained, then sends
// a final empty-alive bundle to every TUIO endpoint (spec.md §5's
// cancellation-drains-and-exits requirement).
func (p *Pipeline) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for _, l := range p.links {
		l := l
		wg.Add(1)
		go func() {
			defer wg.Done()
			forwardFrames(ctx, l.from, l.to)
		}()
	}
	for _, sw := range p.screens {
		sw := sw
		wg.Add(1)
		go func() {
			defer wg.Done()
			sw.run(ctx)
		}()
	}
	for _, w := range p.sensors {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}

	wg.Wait()
	p.emitter.Shutdown()
}

// Stats returns the live per-sensor and per-screen counters, keyed by
// sensor id or "screen-<id>", for a caller (e.g. a periodic log tick or the
// gRPC status service) to read and reset.
func (p *Pipeline) Stats() map[string]*observability.PipelineStats {
	return p.stats
}

// Events returns the Pipeline's shared confirmed-touch event feed, read by
// internal/touch/remote to serve a gRPC stream. The channel is shared by
// every screen and never closed by Pipeline; a caller that stops reading
// simply starts losing the oldest queued events.
func (p *Pipeline) Events() <-chan l7track.TouchEvent {
	return p.events
}

func forwardFrames(ctx context.Context, from, to chan frameBatch) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-from:
			if !ok {
				return
			}
			select {
			case to <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}
