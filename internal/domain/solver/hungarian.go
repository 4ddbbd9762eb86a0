package solver

import "math"

// blockedCost marks a (position, player) pair that must never be selected:
// ineligible, excluded, pinned elsewhere, or already at its appearance bound.
const blockedCost = 1e12

// assignMin solves the rectangular assignment problem, minimizing total cost
// over a rows×cols matrix with rows <= cols. It returns assign[row] = col.
//
// Potential-based O(rows²·cols) Kuhn-Munkres. The steps pointer is a shared
// work budget: every inner relaxation decrements it, and the solve aborts
// with ok=false once it reaches zero, so a pathological instance degrades to
// the heuristic instead of hanging.
func assignMin(cost [][]float64, steps *int) (assign []int, ok bool) {
	rows := len(cost)
	if rows == 0 {
		return nil, true
	}
	cols := len(cost[0])
	if cols < rows {
		return nil, false
	}

	// 1-indexed potentials and column matching, per the classic formulation.
	u := make([]float64, rows+1)
	v := make([]float64, cols+1)
	match := make([]int, cols+1) // match[j] = row assigned to column j
	way := make([]int, cols+1)

	for i := 1; i <= rows; i++ {
		match[0] = i
		j0 := 0
		minv := make([]float64, cols+1)
		used := make([]bool, cols+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}
		for {
			used[j0] = true
			i0 := match[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= cols; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
				*steps--
			}
			if *steps <= 0 {
				return nil, false
			}
			for j := 0; j <= cols; j++ {
				if used[j] {
					u[match[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if match[j0] == 0 {
				break
			}
		}
		// Augment along the alternating path.
		for j0 != 0 {
			j1 := way[j0]
			match[j0] = match[j1]
			j0 = j1
		}
	}

	assign = make([]int, rows)
	for i := range assign {
		assign[i] = -1
	}
	for j := 1; j <= cols; j++ {
		if match[j] > 0 {
			assign[match[j]-1] = j - 1
		}
	}
	return assign, true
}
