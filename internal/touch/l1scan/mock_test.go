package l1scan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockScanner_ReplaysInOrder(t *testing.T) {
	m := NewMockScanner(4, 0.01)
	m.AddConstantScan(100, 3.0)
	m.AddConstantScan(200, 1.0)

	s1, err := m.NextScan()
	require.NoError(t, err)
	require.Equal(t, int64(100), s1.TimestampNanos)
	require.Equal(t, []float64{3.0, 3.0, 3.0, 3.0}, s1.Ranges)

	s2, err := m.NextScan()
	require.NoError(t, err)
	require.Equal(t, int64(200), s2.TimestampNanos)

	_, err = m.NextScan()
	require.ErrorIs(t, err, ErrScanTimeout)
}

func TestMockScanner_PauseResume(t *testing.T) {
	m := NewMockScanner(1, 0.01)
	m.AddScan(1, []float64{1.0})

	m.Pause()
	_, err := m.NextScan()
	require.ErrorIs(t, err, ErrScanTimeout)
	require.Equal(t, 1, m.Remaining())

	m.Resume()
	_, err = m.NextScan()
	require.NoError(t, err)
	require.Equal(t, 0, m.Remaining())
}

func TestMockScanner_CloseRejectsFurtherReads(t *testing.T) {
	m := NewMockScanner(1, 0.01)
	m.AddScan(1, []float64{1.0})
	require.NoError(t, m.Close())

	_, err := m.NextScan()
	require.ErrorIs(t, err, ErrScannerClosed)
}

func TestMockScanner_ConstantProperties(t *testing.T) {
	m := NewMockScanner(1081, 0.0043)
	require.Equal(t, 1081, m.StepCount())
	require.InDelta(t, 0.0043, m.AngularStepRadians(), 1e-9)
}
