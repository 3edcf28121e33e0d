package l1scan

import "sync"

// MockScanner implements Scanner by replaying a scripted sequence of scans.
// It is grounded on the teacher corpus's MockUDPSocket pattern: a slice of
// canned frames plus a read cursor, returning ErrScanTimeout once the script
// is exhausted (or while explicitly paused) so tests can exercise the
// Scanner timeout contract without real hardware.
type MockScanner struct {
	mu sync.Mutex

	stepCount int
	angStep   float64

	scans  []Scan
	cursor int
	paused bool
	closed bool
}

// NewMockScanner builds a MockScanner that will replay scans in order.
// Every Scan in scans must have len(Ranges) == stepCount; callers assemble
// scripts with AddScan to make that easy to guarantee.
func NewMockScanner(stepCount int, angularStepRadians float64) *MockScanner {
	return &MockScanner{
		stepCount: stepCount,
		angStep:   angularStepRadians,
	}
}

// AddScan appends one scripted scan to the replay queue.
func (m *MockScanner) AddScan(timestampNanos int64, ranges []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]float64, len(ranges))
	copy(cp, ranges)
	m.scans = append(m.scans, Scan{TimestampNanos: timestampNanos, Ranges: cp})
}

// AddConstantScan appends a scan where every angle reports the same range.
func (m *MockScanner) AddConstantScan(timestampNanos int64, rangeMeters float64) {
	ranges := make([]float64, m.stepCount)
	for i := range ranges {
		ranges[i] = rangeMeters
	}
	m.AddScan(timestampNanos, ranges)
}

// Pause makes subsequent NextScan calls return ErrScanTimeout regardless of
// whether scripted scans remain, simulating a stalled sensor.
func (m *MockScanner) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

// Resume clears a prior Pause.
func (m *MockScanner) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
}

// NextScan returns the next scripted scan, ErrScanTimeout if paused or the
// script is exhausted, or ErrScannerClosed once Close has been called.
func (m *MockScanner) NextScan() (Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Scan{}, ErrScannerClosed
	}
	if m.paused || m.cursor >= len(m.scans) {
		return Scan{}, ErrScanTimeout
	}

	s := m.scans[m.cursor]
	m.cursor++
	return s, nil
}

// StepCount returns N.
func (m *MockScanner) StepCount() int { return m.stepCount }

// AngularStepRadians returns Δ.
func (m *MockScanner) AngularStepRadians() float64 { return m.angStep }

// Close marks the scanner closed; subsequent NextScan calls fail.
func (m *MockScanner) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Remaining reports how many scripted scans have not yet been consumed.
func (m *MockScanner) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scans) - m.cursor
}

var _ Scanner = (*MockScanner)(nil)
