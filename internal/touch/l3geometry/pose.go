package l3geometry

import "math"

// Pose is a sensor's placement in the world frame: position (X, Y) in
// metres, heading Theta in radians, plus a MountingOffset (also radians)
// applied before the heading rotation — the angle between the scanner's
// zero-index beam and the sensor housing's forward axis.
type Pose struct {
	X, Y           float64
	Theta          float64
	MountingOffset float64
}

// Point is a world-frame Cartesian point in metres.
type Point struct {
	X, Y float64
}

// Project converts one foreground angular sample (angle index i, distance s
// in metres) into a world-frame point, following spec.md §4.3:
//
//	local angle = α + i·Δ
//	local point = (s·cos(local_angle), s·sin(local_angle))
//	world point = (x0, y0) + R(θ)·local_point
//
// Project is pure and allocation-free, matching the teacher corpus's
// SphericalToCartesian/ApplyPose split (internal/lidar/transform.go), here
// specialised to the 2D case and folded into one call since spec.md treats
// projection as a single per-sample operation.
func Project(pose Pose, angularStepRadians float64, angleIndex int, distanceMeters float64) Point {
	localAngle := pose.MountingOffset + float64(angleIndex)*angularStepRadians

	localX := distanceMeters * math.Cos(localAngle)
	localY := distanceMeters * math.Sin(localAngle)

	sinT, cosT := math.Sin(pose.Theta), math.Cos(pose.Theta)
	rotatedX := cosT*localX - sinT*localY
	rotatedY := sinT*localX + cosT*localY

	return Point{
		X: pose.X + rotatedX,
		Y: pose.Y + rotatedY,
	}
}

// ProjectScan projects every foreground sample named by indices into world
// points, reusing dst when it has enough capacity (the teacher corpus's
// per-frame-allocation discipline: foreground buffers are pooled rather
// than reallocated every frame).
func ProjectScan(pose Pose, angularStepRadians float64, ranges []float64, indices []int, dst []Point) []Point {
	dst = dst[:0]
	for _, i := range indices {
		dst = append(dst, Project(pose, angularStepRadians, i, ranges[i]))
	}
	return dst
}
