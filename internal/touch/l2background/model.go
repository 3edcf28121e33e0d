package l2background

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lumentouch/touchcore/internal/touch/l1scan"
)

// ErrInsufficientBackground is returned by ObserveScan when the learning
// window closes with fewer than half the angular indices ever having seen a
// valid sample. The pipeline
// must refuse to emit foreground for this sensor until relearning succeeds.
var ErrInsufficientBackground = errors.New("l2background: insufficient background coverage")

// MinPopulatedFraction is the minimum fraction of angles that must have
// received at least one valid observation for learning to succeed.
const MinPopulatedFraction = 0.5

// Model maintains a per-angle reference distance for one sensor. Its angle
// count is immutable once created and must equal the bound sensor's scan
// length (an invariant enforced by ObserveScan).
type Model struct {
	mu sync.RWMutex

	angleCount int
	cfg        Config

	refDistance []float64 // r_i
	seenCount   []uint32  // c_i

	learning     bool
	framesSeen   int
	insufficient bool
}

// NewModel creates a Model bound to a sensor with angleCount angular steps.
func NewModel(angleCount int, cfg Config) (*Model, error) {
	if angleCount <= 0 {
		return nil, fmt.Errorf("l2background: angleCount must be positive, got %d", angleCount)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		angleCount:  angleCount,
		cfg:         cfg,
		refDistance: make([]float64, angleCount),
		seenCount:   make([]uint32, angleCount),
		learning:    true,
	}
	return m, nil
}

// AngleCount returns N, the bound sensor's scan length.
func (m *Model) AngleCount() int { return m.angleCount }

// IsLearning reports whether the model is still in its learning window.
func (m *Model) IsLearning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.learning
}

// IsUsable reports whether the model finished learning with sufficient
// coverage and can classify foreground.
func (m *Model) IsUsable() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.learning && !m.insufficient
}

// Reset discards the learned reference and restarts the learning window,
// matching spec.md's "the caller may re-trigger learning" provision.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.refDistance {
		m.refDistance[i] = 0
		m.seenCount[i] = 0
	}
	m.learning = true
	m.framesSeen = 0
	m.insufficient = false
}

// ObserveScan feeds one scan's samples into the learning window. While
// learning, each valid sample updates r_i to the minimum range ever seen at
// that angle (the background is the farthest fixed surface; hands appear
// closer, never farther). Once WindowFrames scans have been observed, the
// model freezes and is validated: if fewer than MinPopulatedFraction of
// angles were ever populated, ErrInsufficientBackground is returned and the
// model stays unusable until Reset is called.
//
// len(ranges) must equal AngleCount(); ObserveScan panics otherwise, since
// a scanner changing its step count mid-run is a programming error, not a
// recoverable runtime condition.
func (m *Model) ObserveScan(ranges []float64) error {
	if len(ranges) != m.angleCount {
		panic(fmt.Sprintf("l2background: scan has %d samples, model bound to %d", len(ranges), m.angleCount))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.learning {
		return nil
	}

	for i, s := range ranges {
		if !isValidSample(s) {
			continue
		}
		if m.seenCount[i] == 0 || s < m.refDistance[i] {
			m.refDistance[i] = s
		}
		m.seenCount[i]++
	}

	m.framesSeen++
	if m.framesSeen < m.cfg.WindowFrames {
		return nil
	}

	m.learning = false
	populated := 0
	for _, c := range m.seenCount {
		if c > 0 {
			populated++
		}
	}
	if float64(populated) < MinPopulatedFraction*float64(m.angleCount) {
		m.insufficient = true
		return ErrInsufficientBackground
	}
	return nil
}

// Classify returns a boolean mask, one entry per angle, true where the
// sample is foreground: valid, within [MinRangeMeters, MaxRangeMeters], and
// (r_i - s) >= ForegroundDelta. Ties at exactly the threshold count as
// foreground. Classify is safe to call concurrently and does not mutate the
// model, so re-running it on the same scan always yields the same mask.
func (m *Model) Classify(ranges []float64) []bool {
	if len(ranges) != m.angleCount {
		panic(fmt.Sprintf("l2background: scan has %d samples, model bound to %d", len(ranges), m.angleCount))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	mask := make([]bool, m.angleCount)
	if !m.IsUsableLocked() {
		return mask
	}

	for i, s := range ranges {
		if !isValidSample(s) {
			continue
		}
		if s < m.cfg.MinRangeMeters || s > m.cfg.MaxRangeMeters {
			continue
		}
		if m.seenCount[i] == 0 {
			continue
		}
		if (m.refDistance[i] - s) >= m.cfg.ForegroundDelta {
			mask[i] = true
		}
	}
	return mask
}

// IsUsableLocked is IsUsable for callers that already hold m.mu.
func (m *Model) IsUsableLocked() bool {
	return !m.learning && !m.insufficient
}

// ReferenceDistance returns r_i for the given angle, for diagnostics.
func (m *Model) ReferenceDistance(i int) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refDistance[i]
}

// Snapshot captures the model's learned state for persistence. The
// returned slices are copies; mutating them does not affect the model.
func (m *Model) Snapshot() (refDistance []float64, seenCount []uint32, learning bool, insufficient bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	refDistance = append([]float64(nil), m.refDistance...)
	seenCount = append([]uint32(nil), m.seenCount...)
	return refDistance, seenCount, m.learning, m.insufficient
}

// Restore replaces the model's learned state with previously captured
// values, e.g. one loaded from a persisted snapshot. len(refDistance) and
// len(seenCount) must equal AngleCount().
func (m *Model) Restore(refDistance []float64, seenCount []uint32, learning bool, insufficient bool) error {
	if len(refDistance) != m.angleCount || len(seenCount) != m.angleCount {
		return fmt.Errorf("l2background: snapshot has %d/%d samples, model bound to %d", len(refDistance), len(seenCount), m.angleCount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.refDistance, refDistance)
	copy(m.seenCount, seenCount)
	m.learning = learning
	m.insufficient = insufficient
	m.framesSeen = m.cfg.WindowFrames
	return nil
}

func isValidSample(s float64) bool {
	return s != l1scan.RangeInvalid
}
