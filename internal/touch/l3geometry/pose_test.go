package l3geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProject_IdentityPoseZeroAngle(t *testing.T) {
	p := Project(Pose{}, 0.01, 0, 2.0)
	require.InDelta(t, 2.0, p.X, 1e-9)
	require.InDelta(t, 0.0, p.Y, 1e-9)
}

func TestProject_AppliesMountingOffset(t *testing.T) {
	p := Project(Pose{MountingOffset: math.Pi / 2}, 0.0, 0, 1.0)
	require.InDelta(t, 0.0, p.X, 1e-9)
	require.InDelta(t, 1.0, p.Y, 1e-9)
}

func TestProject_AppliesHeadingRotationAndTranslation(t *testing.T) {
	pose := Pose{X: 10, Y: -5, Theta: math.Pi / 2}
	p := Project(pose, 0.0, 0, 1.0)
	// local point (1,0) rotated 90deg -> (0,1), translated by (10,-5)
	require.InDelta(t, 10.0, p.X, 1e-9)
	require.InDelta(t, -4.0, p.Y, 1e-9)
}

func TestProject_AngularStepAdvancesLocalAngle(t *testing.T) {
	step := math.Pi / 2
	p := Project(Pose{}, step, 1, 1.0)
	require.InDelta(t, 0.0, p.X, 1e-9)
	require.InDelta(t, 1.0, p.Y, 1e-9)
}

func TestProjectScan_ReusesDestinationSlice(t *testing.T) {
	ranges := []float64{1.0, 2.0, 3.0}
	indices := []int{0, 2}

	dst := make([]Point, 0, 8)
	dst = ProjectScan(Pose{}, 0.0, ranges, indices, dst)
	require.Len(t, dst, 2)
	require.InDelta(t, 1.0, dst[0].X, 1e-9)
	require.InDelta(t, 3.0, dst[1].X, 1e-9)
}
