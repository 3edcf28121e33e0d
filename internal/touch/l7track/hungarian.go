package l7track

import "math"

// hungarianInf stands in for "forbidden" in a cost matrix.
const hungarianInf = 1e18

// HungarianAssign solves the rectangular minimum-cost assignment problem for
// an n x m cost matrix, returning assignment[i] = the column assigned to row
// i, or -1 if row i is left unassigned. Entries >= hungarianInf are treated
// as forbidden and never selected.
//
// This is the Kuhn-Munkres algorithm with potentials (Jonker-Volgenant
// variant), adapted from the teacher corpus's internal/lidar.HungarianAssign:
// the potential-update loop below (u, v, p, way, minv, used) is the same
// O(n^3) formulation, since the assignment problem doesn't change shape
// between vehicle tracks and touch candidates. The only change is the cost
// type, generalized from float32 to float64: touch-to-candidate costs are
// plain Euclidean distances in normalized [0,1]² screen space, so the extra
// precision costs nothing and avoids a redundant narrowing conversion at
// every call site.
func HungarianAssign(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}
	m := len(cost[0])
	if m == 0 {
		result := make([]int, n)
		for i := range result {
			result[i] = -1
		}
		return result
	}

	dim := n
	if m > dim {
		dim = m
	}

	c := make([][]float64, dim)
	for i := 0; i < dim; i++ {
		c[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			if i < n && j < m {
				c[i][j] = cost[i][j]
			} else {
				c[i][j] = hungarianInf
			}
		}
	}

	const inf = math.MaxFloat64 / 2

	u := make([]float64, dim+1)
	v := make([]float64, dim+1)
	p := make([]int, dim+1)
	way := make([]int, dim+1)
	minv := make([]float64, dim+1)
	used := make([]bool, dim+1)

	for i := 1; i <= dim; i++ {
		p[0] = i
		j0 := 0

		for j := 1; j <= dim; j++ {
			minv[j] = inf
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1

			for j := 1; j <= dim; j++ {
				if used[j] {
					continue
				}
				cur := c[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			if j1 < 0 {
				break
			}

			for j := 0; j <= dim; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			p[j0] = p[way[j0]]
			j0 = way[j0]
		}
	}

	rowAssign := make([]int, dim)
	for i := range rowAssign {
		rowAssign[i] = -1
	}
	for j := 1; j <= dim; j++ {
		if p[j] > 0 && p[j] <= dim {
			rowAssign[p[j]-1] = j - 1
		}
	}

	result := make([]int, n)
	for i := 0; i < n; i++ {
		col := rowAssign[i]
		if col < 0 || col >= m || cost[i][col] >= hungarianInf {
			result[i] = -1
		} else {
			result[i] = col
		}
	}

	return result
}
