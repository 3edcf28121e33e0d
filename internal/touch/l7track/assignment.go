package l7track

import (
	"math"

	"github.com/lumentouch/touchcore/internal/touch/l5screen"
)

// tieBreakEpsilon biases the cost matrix by a vanishingly small amount per
// row so that when two candidates are genuinely equidistant from two
// touches' predicted positions, the solver prefers assigning the
// lower-indexed (lower session id, since rows are sorted ascending by id)
// touch first, per spec.md §4.7's explicit tie-break rule. It is far too
// small to change the outcome of any non-tied comparison.
const tieBreakEpsilon = 1e-9

// buildCostMatrix computes the predicted-position-to-candidate Euclidean
// distance between each touch (rows, sorted ascending by SessionID) and
// each candidate (columns), gating out pairs beyond rGate by marking them
// forbidden.
func buildCostMatrix(touches []*Touch, candidates []l5screen.MappedCandidate, dt, rGate float64) [][]float64 {
	cost := make([][]float64, len(touches))
	for i, touch := range touches {
		predictedU := touch.U + touch.DU*dt
		predictedV := touch.V + touch.DV*dt

		row := make([]float64, len(candidates))
		for j, c := range candidates {
			d := math.Hypot(predictedU-c.U, predictedV-c.V)
			if d > rGate {
				row[j] = hungarianInf
			} else {
				row[j] = d + float64(i)*tieBreakEpsilon
			}
		}
		cost[i] = row
	}
	return cost
}
