package l6fusion

import (
	"math"

	"github.com/lumentouch/touchcore/internal/touch/l5screen"
)

// DefaultMergeRadius is r_merge's default, expressed directly in normalized
// [0,1]² screen units (spec.md §4.6 quotes it as "0.02 of the screen
// diagonal"; since u and v are already normalized independently of the
// screen's physical aspect ratio, the merge radius is carried as a plain
// normalized-space fraction rather than re-derived from a world-frame
// diagonal at merge time).
const DefaultMergeRadius = 0.02

// Merge collapses candidates pairwise wherever their (u, v) Euclidean
// distance is below rMerge, replacing each merged pair with their
// point-count-weighted centroid, iterating until no further pair qualifies
// (spec.md §4.6). The input slice is not mutated; merge order is
// deterministic (always the lowest-index qualifying pair first) so repeated
// calls on the same input produce the same output.
func Merge(candidates []l5screen.MappedCandidate, rMerge float64) []l5screen.MappedCandidate {
	if len(candidates) < 2 {
		return append([]l5screen.MappedCandidate(nil), candidates...)
	}

	working := append([]l5screen.MappedCandidate(nil), candidates...)

	for {
		i, j, found := firstMergeablePair(working, rMerge)
		if !found {
			return working
		}
		merged := weightedCentroid(working[i], working[j])

		next := make([]l5screen.MappedCandidate, 0, len(working)-1)
		for k, c := range working {
			if k == i || k == j {
				continue
			}
			next = append(next, c)
		}
		next = append(next, merged)
		working = next
	}
}

func firstMergeablePair(candidates []l5screen.MappedCandidate, rMerge float64) (int, int, bool) {
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if distance(candidates[i], candidates[j]) < rMerge {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func distance(a, b l5screen.MappedCandidate) float64 {
	return math.Hypot(a.U-b.U, a.V-b.V)
}

// weightedCentroid merges two same-screen candidates by point-count weight.
// A candidate carrying zero PointCount (shouldn't occur downstream of
// l4cluster, but kept defensive) is treated as weight 1 so it still
// contributes to the centroid.
func weightedCentroid(a, b l5screen.MappedCandidate) l5screen.MappedCandidate {
	wa, wb := weight(a.PointCount), weight(b.PointCount)
	total := wa + wb

	sensorID := a.SensorID
	if sensorID != b.SensorID {
		sensorID = ""
	}

	ts := a.TimestampNanos
	if b.TimestampNanos > ts {
		ts = b.TimestampNanos
	}

	return l5screen.MappedCandidate{
		ScreenID:       a.ScreenID,
		U:              (a.U*wa + b.U*wb) / total,
		V:              (a.V*wa + b.V*wb) / total,
		PointCount:     a.PointCount + b.PointCount,
		SensorID:       sensorID,
		TimestampNanos: ts,
	}
}

func weight(pointCount int) float64 {
	if pointCount <= 0 {
		return 1
	}
	return float64(pointCount)
}
