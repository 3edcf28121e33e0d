package l5screen

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/lumentouch/touchcore/internal/touch/l4cluster"
)

func allow(sensorIDs ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(sensorIDs))
	for _, id := range sensorIDs {
		set[id] = struct{}{}
	}
	return set
}

func TestMap_ContainedPointNormalizes(t *testing.T) {
	screen := ScreenRect{ID: 0, X: 0, Y: 0, W: 2, H: 1, AllowedSensors: allow("s1")}
	candidate := l4cluster.Candidate{X: 1.0, Y: 0.25, SensorID: "s1", PointCount: 4}

	mapped, ok := Map(candidate, []ScreenRect{screen})
	require.True(t, ok)
	require.Equal(t, 0, mapped.ScreenID)
	require.InDelta(t, 0.5, mapped.U, 1e-9)
	require.InDelta(t, 0.25, mapped.V, 1e-9)
	require.Equal(t, 4, mapped.PointCount)
}

func TestMap_OutsideBoundsDoesNotMatch(t *testing.T) {
	screen := ScreenRect{ID: 0, X: 0, Y: 0, W: 1, H: 1, AllowedSensors: allow("s1")}
	candidate := l4cluster.Candidate{X: 1.5, Y: 0.5, SensorID: "s1"}

	_, ok := Map(candidate, []ScreenRect{screen})
	require.False(t, ok)
}

func TestMap_DisallowedSensorDoesNotMatch(t *testing.T) {
	screen := ScreenRect{ID: 0, X: 0, Y: 0, W: 1, H: 1, AllowedSensors: allow("s1")}
	candidate := l4cluster.Candidate{X: 0.5, Y: 0.5, SensorID: "s2"}

	_, ok := Map(candidate, []ScreenRect{screen})
	require.False(t, ok)
}

func TestMap_AppliesRotation(t *testing.T) {
	// Screen rotated 90deg (phi=pi/2) about its origin: its local +x axis
	// points along world +y, local +y axis points along world -x.
	screen := ScreenRect{ID: 0, X: 0, Y: 0, W: 1, H: 1, Phi: math.Pi / 2, AllowedSensors: allow("s1")}
	// World point (0, 0.5) should localize to (lx=0.5, ly=0) -> u=0.5, v=0.
	candidate := l4cluster.Candidate{X: 0.0, Y: 0.5, SensorID: "s1"}

	mapped, ok := Map(candidate, []ScreenRect{screen})
	require.True(t, ok)
	require.InDelta(t, 0.5, mapped.U, 1e-9)
	require.InDelta(t, 0.0, mapped.V, 1e-9)
}

func TestMap_OverlappingScreensSmallestIDWins(t *testing.T) {
	screens := SortByID([]ScreenRect{
		{ID: 2, X: 0, Y: 0, W: 1, H: 1, AllowedSensors: allow("s1")},
		{ID: 0, X: 0, Y: 0, W: 1, H: 1, AllowedSensors: allow("s1")},
		{ID: 1, X: 0, Y: 0, W: 1, H: 1, AllowedSensors: allow("s1")},
	})
	candidate := l4cluster.Candidate{X: 0.5, Y: 0.5, SensorID: "s1"}

	mapped, ok := Map(candidate, screens)
	require.True(t, ok)
	require.Equal(t, 0, mapped.ScreenID)
}

func TestMap_NoScreensIsNoMatch(t *testing.T) {
	_, ok := Map(l4cluster.Candidate{SensorID: "s1"}, nil)
	require.False(t, ok)
}

func TestDiagonal(t *testing.T) {
	s := ScreenRect{W: 3, H: 4}
	require.InDelta(t, 5.0, s.Diagonal(), 1e-9)
}

func TestMapAll_FiltersUnmatchedAndReusesSlice(t *testing.T) {
	screens := []ScreenRect{{ID: 0, X: 0, Y: 0, W: 1, H: 1, AllowedSensors: allow("s1")}}
	candidates := []l4cluster.Candidate{
		{X: 0.1, Y: 0.1, SensorID: "s1"},
		{X: 5.0, Y: 5.0, SensorID: "s1"}, // out of bounds
		{X: 0.2, Y: 0.2, SensorID: "s2"}, // disallowed sensor
	}

	var buf []MappedCandidate
	buf = MapAll(candidates, screens, buf)
	require.Len(t, buf, 1)
	require.InDelta(t, 0.1, buf[0].U, 1e-9)

	// Reuse with a smaller result set confirms dst is truncated, not stale.
	buf = MapAll(nil, screens, buf)
	require.Empty(t, buf)
}

func TestMapAll_MultipleCandidatesOnSameScreen(t *testing.T) {
	screens := SortByID([]ScreenRect{{ID: 0, X: 0, Y: 0, W: 2, H: 2, AllowedSensors: allow("s1")}})
	candidates := []l4cluster.Candidate{
		{X: 0.5, Y: 0.5, PointCount: 3, SensorID: "s1", TimestampNanos: 10},
		{X: 1.5, Y: 1.0, PointCount: 7, SensorID: "s1", TimestampNanos: 10},
	}

	got := MapAll(candidates, screens, nil)
	want := []MappedCandidate{
		{ScreenID: 0, U: 0.25, V: 0.25, PointCount: 3, SensorID: "s1", TimestampNanos: 10},
		{ScreenID: 0, U: 0.75, V: 0.5, PointCount: 7, SensorID: "s1", TimestampNanos: 10},
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("MapAll result mismatch (-want +got):\n%s", diff)
	}
}
