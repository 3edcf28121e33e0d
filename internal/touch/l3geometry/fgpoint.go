package l3geometry

// FgPoint is a world-frame point attributed to a foreground sample: the
// sensor it came from, the angular index it was read at, and the raw
// (pre-projection) distance, kept for diagnostics and quality metrics.
type FgPoint struct {
	Point
	SensorID    string
	AngleIndex  int
	RawDistance float64
}

// ProjectForeground projects every index in indices (already filtered to
// foreground by l2background.Model.Classify) into FgPoints.
func ProjectForeground(pose Pose, angularStepRadians float64, sensorID string, ranges []float64, indices []int) []FgPoint {
	points := make([]FgPoint, 0, len(indices))
	for _, i := range indices {
		points = append(points, FgPoint{
			Point:       Project(pose, angularStepRadians, i, ranges[i]),
			SensorID:    sensorID,
			AngleIndex:  i,
			RawDistance: ranges[i],
		})
	}
	return points
}
