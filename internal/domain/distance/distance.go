// Package distance implements Levenshtein edit distance over runes, with an
// optional optimal alignment for highlighting.
package distance

import "slices"

// Distance returns the minimum number of single-rune insertions, deletions
// or substitutions needed to turn a into b.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rows of the (len(a)+1) x (len(b)+1) grid are enough for the cost.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Align returns the edit distance between a and b together with one optimal
// alignment turning a into b. Among equal-cost paths the backtrace prefers
// match, then substitution, then deletion, then insertion.
func Align(a, b string) (int, Alignment) {
	ra, rb := []rune(a), []rune(b)
	grid := table(ra, rb)

	ops := make(Alignment, 0, max(len(ra), len(rb)))
	i, j := len(ra), len(rb)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && ra[i-1] == rb[j-1] && grid[i][j] == grid[i-1][j-1]:
			ops = append(ops, Op{Kind: Match, From: ra[i-1], To: rb[j-1]})
			i, j = i-1, j-1
		case i > 0 && j > 0 && grid[i][j] == grid[i-1][j-1]+1:
			ops = append(ops, Op{Kind: Substitute, From: ra[i-1], To: rb[j-1]})
			i, j = i-1, j-1
		case i > 0 && grid[i][j] == grid[i-1][j]+1:
			ops = append(ops, Op{Kind: Delete, From: ra[i-1]})
			i--
		default:
			ops = append(ops, Op{Kind: Insert, To: rb[j-1]})
			j--
		}
	}
	slices.Reverse(ops)

	return grid[len(ra)][len(rb)], ops
}

// table fills the full dynamic programming grid.
func table(a, b []rune) [][]int {
	grid := make([][]int, len(a)+1)
	cells := make([]int, (len(a)+1)*(len(b)+1))
	for i := range grid {
		grid[i] = cells[i*(len(b)+1) : (i+1)*(len(b)+1)]
		grid[i][0] = i
	}
	for j := range grid[0] {
		grid[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			grid[i][j] = min(grid[i-1][j]+1, grid[i][j-1]+1, grid[i-1][j-1]+cost)
		}
	}
	return grid
}
