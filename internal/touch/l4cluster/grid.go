package l4cluster

import "math"

// spatialGrid provides O(1)-average neighbour lookups for DBSCAN by
// bucketing points into cells the size of eps, grounded on the teacher
// corpus's internal/lidar.SpatialIndex (Szudzik pairing for negative-safe
// 2D cell ids).
type spatialGrid struct {
	cellSize float64
	cells    map[int64][]int
}

func newSpatialGrid(cellSize float64, hintPoints int) *spatialGrid {
	return &spatialGrid{
		cellSize: cellSize,
		cells:    make(map[int64][]int, hintPoints/4+1),
	}
}

func (g *spatialGrid) build(xs, ys []float64) {
	for i := range xs {
		id := g.cellID(xs[i], ys[i])
		g.cells[id] = append(g.cells[id], i)
	}
}

func (g *spatialGrid) cellID(x, y float64) int64 {
	cx := int64(math.Floor(x / g.cellSize))
	cy := int64(math.Floor(y / g.cellSize))
	return szudzikPair(zigzag(cx), zigzag(cy))
}

func zigzag(v int64) int64 {
	if v >= 0 {
		return 2 * v
	}
	return -2*v - 1
}

func szudzikPair(a, b int64) int64 {
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

// regionQuery returns the indices of every point within eps of points
// (xs[idx], ys[idx]), including idx itself.
func (g *spatialGrid) regionQuery(xs, ys []float64, idx int, eps float64) []int {
	px, py := xs[idx], ys[idx]
	eps2 := eps * eps

	cx := int64(math.Floor(px / g.cellSize))
	cy := int64(math.Floor(py / g.cellSize))

	var neighbors []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			id := szudzikPair(zigzag(cx+dx), zigzag(cy+dy))
			for _, j := range g.cells[id] {
				ddx := xs[j] - px
				ddy := ys[j] - py
				if ddx*ddx+ddy*ddy <= eps2 {
					neighbors = append(neighbors, j)
				}
			}
		}
	}
	return neighbors
}
