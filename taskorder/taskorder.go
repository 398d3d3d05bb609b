// Package taskorder computes fractional sort ranks for kanban columns.
//
// Each column orders its tasks by a float64 rank. Inserting between two
// neighbors takes the midpoint of their ranks, so a move touches exactly
// one row. Repeated insertion into the same gap eventually exhausts float64
// precision; callers detect that through ErrGapExhausted and rewrite the
// column with fresh spaced ranks from Rebalance.
package taskorder

import (
	"errors"
	"math"
)

const (
	// InitialGap is the spacing between ranks in a freshly numbered column
	InitialGap = 1024.0

	// MinGap is the smallest usable distance between two adjacent ranks.
	// Below this the midpoint stops producing distinct values reliably.
	MinGap = 1e-9
)

// ErrGapExhausted is returned when two neighbor ranks are too close to split.
// The caller should rebalance the column and retry.
var ErrGapExhausted = errors.New("taskorder: gap between neighbors exhausted")

// ErrInvalidRank is returned for NaN or infinite neighbor ranks.
var ErrInvalidRank = errors.New("taskorder: rank is not a finite number")

// Between returns a rank strictly between lo and hi.
func Between(lo, hi float64) (float64, error) {
	if !isFinite(lo) || !isFinite(hi) {
		return 0, ErrInvalidRank
	}
	if hi-lo < MinGap {
		return 0, ErrGapExhausted
	}

	mid := lo + (hi-lo)/2
	if mid <= lo || mid >= hi {
		// float64 has no representable value between the neighbors
		return 0, ErrGapExhausted
	}
	return mid, nil
}

// Before returns a rank placed ahead of the current head rank.
func Before(head float64) (float64, error) {
	if !isFinite(head) {
		return 0, ErrInvalidRank
	}
	return head - InitialGap, nil
}

// After returns a rank placed behind the current tail rank.
func After(tail float64) (float64, error) {
	if !isFinite(tail) {
		return 0, ErrInvalidRank
	}
	return tail + InitialGap, nil
}

// ForInsert computes the rank for a task inserted between prev and next.
// Either neighbor may be nil: nil prev means insert at the head, nil next
// means insert at the tail, both nil means the column is empty.
func ForInsert(prev, next *float64) (float64, error) {
	switch {
	case prev == nil && next == nil:
		return InitialGap, nil
	case prev == nil:
		return Before(*next)
	case next == nil:
		return After(*prev)
	default:
		if *prev >= *next {
			return 0, ErrGapExhausted
		}
		return Between(*prev, *next)
	}
}

// Sequence returns n spaced ranks for an initial or rebalanced column,
// in ascending order starting at InitialGap.
func Sequence(n int) []float64 {
	ranks := make([]float64, n)
	for i := range ranks {
		ranks[i] = float64(i+1) * InitialGap
	}
	return ranks
}

// Rebalance is an alias of Sequence named for its use at the store layer:
// rewriting a column whose midpoint gaps have been exhausted.
func Rebalance(n int) []float64 {
	return Sequence(n)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
