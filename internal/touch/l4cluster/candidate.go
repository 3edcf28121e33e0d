package l4cluster

import (
	"math"
	"time"

	"github.com/lumentouch/touchcore/internal/touch/l3geometry"
)

// Candidate is an unnormalized world-frame centroid produced by clustering
// one sensor's foreground points for one scan.
type Candidate struct {
	X, Y           float64
	PointCount     int
	BoundRadius    float64
	SensorID       string
	TimestampNanos int64
}

// Params holds the DBSCAN tuning knobs from spec.md §4.4.
type Params struct {
	Eps    float64 // neighbourhood radius, metres
	MinPts int     // minimum core-neighbourhood size, including the point itself
}

// DefaultParams returns parameters tuned for finger-sized touches on a
// table-top surface.
func DefaultParams() Params {
	return Params{Eps: 0.02, MinPts: 3}
}

// Cluster groups points into Candidates using density-based clustering
// equivalent to DBSCAN with Euclidean distance (spec.md §4.4). Points must
// all share sensorID; timestamp is copied onto every output Candidate.
//
// This is grounded on the teacher corpus's internal/lidar.DBSCAN, adapted
// from a single-assignment border-point rule to the explicit smaller-id
// tie-break spec.md requires: a union-find merges mutually-reachable core
// points into clusters in point-order discovery, then every border point is
// attached to the smallest-id cluster among the core points it neighbours.
func Cluster(points []l3geometry.FgPoint, sensorID string, timestampNanos int64, params Params) []Candidate {
	n := len(points)
	if n == 0 {
		return nil
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}

	grid := newSpatialGrid(params.Eps, n)
	grid.build(xs, ys)

	neighbors := make([][]int, n)
	isCore := make([]bool, n)
	for i := 0; i < n; i++ {
		neighbors[i] = grid.regionQuery(xs, ys, i, params.Eps)
		isCore[i] = len(neighbors[i]) >= params.MinPts
	}

	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		if !isCore[i] {
			continue
		}
		for _, j := range neighbors[i] {
			if isCore[j] {
				uf.union(i, j)
			}
		}
	}

	// Assign cluster ids to core roots in discovery order (point order).
	rootToID := make(map[int]int)
	clusterOf := make([]int, n) // -1 = noise/unassigned
	for i := range clusterOf {
		clusterOf[i] = -1
	}
	nextID := 0
	for i := 0; i < n; i++ {
		if !isCore[i] {
			continue
		}
		root := uf.find(i)
		id, ok := rootToID[root]
		if !ok {
			id = nextID
			nextID++
			rootToID[root] = id
		}
		clusterOf[i] = id
	}

	// Attach border (non-core) points to the smallest-id cluster among the
	// core neighbours they are within eps of.
	for i := 0; i < n; i++ {
		if isCore[i] {
			continue
		}
		best := -1
		for _, j := range neighbors[i] {
			if j == i || !isCore[j] {
				continue
			}
			id := clusterOf[j]
			if best == -1 || id < best {
				best = id
			}
		}
		clusterOf[i] = best // stays -1 (noise) if no core neighbour
	}

	if nextID == 0 {
		return nil
	}

	sumX := make([]float64, nextID)
	sumY := make([]float64, nextID)
	count := make([]int, nextID)
	for i, c := range clusterOf {
		if c < 0 {
			continue
		}
		sumX[c] += xs[i]
		sumY[c] += ys[i]
		count[c]++
	}

	candidates := make([]Candidate, 0, nextID)
	for c := 0; c < nextID; c++ {
		if count[c] == 0 {
			continue
		}
		cx := sumX[c] / float64(count[c])
		cy := sumY[c] / float64(count[c])

		var radius float64
		for i, cc := range clusterOf {
			if cc != c {
				continue
			}
			dx, dy := xs[i]-cx, ys[i]-cy
			d := math.Hypot(dx, dy)
			if d > radius {
				radius = d
			}
		}

		candidates = append(candidates, Candidate{
			X:              cx,
			Y:              cy,
			PointCount:     count[c],
			BoundRadius:    radius,
			SensorID:       sensorID,
			TimestampNanos: timestampNanos,
		})
	}

	return candidates
}

// Now returns the current time as nanoseconds since the Unix epoch; a thin
// wrapper so callers can avoid a direct time.Now() import when all they
// need is a timestamp to hand to Cluster.
func Now() int64 { return time.Now().UnixNano() }
