package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/lumentouch/touchcore/internal/touch/l1scan"
	"github.com/lumentouch/touchcore/internal/touch/l7track"
)

// goldenScript builds a MockScanner script with a learning phase (flat 2m
// scans), an active phase (a single finger-sized dip to 1m at angle 0), and
// a quiet phase (flat 2m scans again), ten milliseconds apart.
func goldenScript(t *testing.T, stepCount int) *l1scan.MockScanner {
	t.Helper()
	const (
		learnFrames  = 4
		activeFrames = 4
		quietFrames  = 4
		stepNanos    = int64(1e7)
	)

	s := l1scan.NewMockScanner(stepCount, 0.01)
	var ts int64

	for i := 0; i < learnFrames; i++ {
		s.AddConstantScan(ts, 2.0)
		ts += stepNanos
	}
	for i := 0; i < activeFrames; i++ {
		ranges := make([]float64, stepCount)
		for a := range ranges {
			ranges[a] = 2.0
		}
		ranges[0] = 1.0
		s.AddScan(ts, ranges)
		ts += stepNanos
	}
	for i := 0; i < quietFrames; i++ {
		s.AddConstantScan(ts, 2.0)
		ts += stepNanos
	}
	return s
}

// TestGoldenReplay_TouchLifecycle drives a fixed two-sensor MockScanner
// script through L2-L7 (background, geometry, clustering, screen mapping,
// fusion, tracking) frame-by-frame with a freshly seeded SessionCounter,
// bypassing the goroutine/channel/timer machinery in sensorWorker.run and
// screenWorker.run so advancement is single-threaded and deterministic,
// and asserts the emitted TouchEvent sequence against a fixed golden
// sequence — in the style of the teacher corpus's golden_replay_test.go.
//
// Both sensors see an identical touch at world (1, 0), so L6 Fusion merges
// their two candidates before L7 assigns a single session id; this also
// exercises the cross-sensor dedup path. U and V land on exact binary
// fractions (1/2) or a value every stage reproduces identically bit for
// bit (3/5), so only the tolerance in cmpopts.EquateApprox guards against
// accumulated floating-point noise, not against a wrong formula.
func TestGoldenReplay_TouchLifecycle(t *testing.T) {
	const stepCount = 16
	const totalFrames = 12 // 4 learning + 4 active + 4 quiet

	north := goldenScript(t, stepCount)
	south := goldenScript(t, stepCount)

	p, err := New(testConfig(stepCount), map[string]l1scan.Scanner{"north": north, "south": south}, nil)
	require.NoError(t, err)
	require.Len(t, p.screens, 1)

	screen := p.screens[0]
	for i := 0; i < totalFrames; i++ {
		pending := make(map[string]frameBatch, len(p.sensors))
		for _, sw := range p.sensors {
			scan, err := sw.scanner.NextScan()
			require.NoError(t, err)
			mapped, ready := sw.processScan(scan)
			if !ready {
				continue
			}
			pending[sw.id] = frameBatch{sensorID: sw.id, timestampNanos: scan.TimestampNanos, candidates: mapped}
		}
		if len(pending) == 0 {
			continue
		}
		screen.processFrame(pending)
	}

	var got []l7track.TouchEvent
drain:
	for {
		select {
		case evt := <-p.events:
			got = append(got, evt)
		default:
			break drain
		}
	}

	want := []l7track.TouchEvent{
		{Kind: l7track.EventAdd, SessionID: 1, ScreenID: 0, U: 0.6, V: 0.5, DU: 0, DV: 0, TimestampNanos: 50_000_000},
		{Kind: l7track.EventUpdate, SessionID: 1, ScreenID: 0, U: 0.6, V: 0.5, DU: 0, DV: 0, TimestampNanos: 60_000_000},
		{Kind: l7track.EventUpdate, SessionID: 1, ScreenID: 0, U: 0.6, V: 0.5, DU: 0, DV: 0, TimestampNanos: 70_000_000},
		{Kind: l7track.EventRemove, SessionID: 1, ScreenID: 0, U: 0.6, V: 0.5, DU: 0, DV: 0, TimestampNanos: 70_000_000},
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("touch event sequence mismatch (-want +got):\n%s", diff)
	}
}

// TestGoldenReplay_Determinism re-runs the same script through a fresh
// Pipeline and checks the two runs agree (to the same 1e-9 tolerance on
// floating-point fields), the property the golden assertion above depends
// on: nothing in L2-L7 may
// read wall-clock time, randomness, or map iteration order to decide a
// Touch's fate.
func TestGoldenReplay_Determinism(t *testing.T) {
	const stepCount = 16
	const totalFrames = 12

	run := func() []l7track.TouchEvent {
		north := goldenScript(t, stepCount)
		south := goldenScript(t, stepCount)
		p, err := New(testConfig(stepCount), map[string]l1scan.Scanner{"north": north, "south": south}, nil)
		require.NoError(t, err)

		screen := p.screens[0]
		for i := 0; i < totalFrames; i++ {
			pending := make(map[string]frameBatch, len(p.sensors))
			for _, sw := range p.sensors {
				scan, err := sw.scanner.NextScan()
				require.NoError(t, err)
				mapped, ready := sw.processScan(scan)
				if !ready {
					continue
				}
				pending[sw.id] = frameBatch{sensorID: sw.id, timestampNanos: scan.TimestampNanos, candidates: mapped}
			}
			if len(pending) == 0 {
				continue
			}
			screen.processFrame(pending)
		}

		var events []l7track.TouchEvent
	drain:
		for {
			select {
			case evt := <-p.events:
				events = append(events, evt)
			default:
				break drain
			}
		}
		return events
	}

	first := run()
	second := run()

	if diff := cmp.Diff(first, second, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("replay is not deterministic (-run1 +run2):\n%s", diff)
	}
}
