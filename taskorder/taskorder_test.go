package taskorder

import (
	"math"
	"testing"
)

func TestBetween_ReturnsMidpoint(t *testing.T) {
	got, err := Between(1024, 2048)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1536 {
		t.Errorf("expected 1536, got %v", got)
	}
}

func TestBetween_GapExhausted(t *testing.T) {
	lo := 1024.0
	hi := lo + MinGap/2

	if _, err := Between(lo, hi); err != ErrGapExhausted {
		t.Errorf("expected ErrGapExhausted, got %v", err)
	}
}

func TestBetween_RejectsNonFinite(t *testing.T) {
	if _, err := Between(math.NaN(), 1); err != ErrInvalidRank {
		t.Errorf("expected ErrInvalidRank for NaN, got %v", err)
	}
	if _, err := Between(0, math.Inf(1)); err != ErrInvalidRank {
		t.Errorf("expected ErrInvalidRank for +Inf, got %v", err)
	}
}

func TestForInsert_EmptyColumn(t *testing.T) {
	got, err := ForInsert(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != InitialGap {
		t.Errorf("expected %v, got %v", InitialGap, got)
	}
}

func TestForInsert_Head(t *testing.T) {
	head := 1024.0
	got, err := ForInsert(nil, &head)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got >= head {
		t.Errorf("head insert rank %v should be below %v", got, head)
	}
}

func TestForInsert_Tail(t *testing.T) {
	tail := 4096.0
	got, err := ForInsert(&tail, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got <= tail {
		t.Errorf("tail insert rank %v should be above %v", got, tail)
	}
}

func TestForInsert_InvertedNeighbors(t *testing.T) {
	lo, hi := 2048.0, 1024.0
	if _, err := ForInsert(&lo, &hi); err != ErrGapExhausted {
		t.Errorf("expected ErrGapExhausted for inverted neighbors, got %v", err)
	}
}

func TestForInsert_RepeatedSplitsEventuallyExhaust(t *testing.T) {
	// Repeatedly insert at the head of the same gap. Each step halves the
	// gap, so this must terminate with ErrGapExhausted, never loop forever
	// or return a duplicate rank.
	lo, hi := 0.0, InitialGap
	seen := map[float64]bool{lo: true, hi: true}

	for i := 0; i < 10000; i++ {
		mid, err := Between(lo, hi)
		if err == ErrGapExhausted {
			return
		}
		if err != nil {
			t.Fatalf("unexpected error at step %d: %v", i, err)
		}
		if mid <= lo || mid >= hi {
			t.Fatalf("step %d: midpoint %v outside (%v, %v)", i, mid, lo, hi)
		}
		if seen[mid] {
			t.Fatalf("step %d: duplicate rank %v", i, mid)
		}
		seen[mid] = true
		hi = mid
	}

	t.Fatal("gap never exhausted after 10000 splits")
}

func TestSequence_SpacedAscending(t *testing.T) {
	ranks := Sequence(5)
	if len(ranks) != 5 {
		t.Fatalf("expected 5 ranks, got %d", len(ranks))
	}
	for i := 1; i < len(ranks); i++ {
		if ranks[i]-ranks[i-1] != InitialGap {
			t.Errorf("gap between ranks[%d] and ranks[%d] is %v, want %v",
				i-1, i, ranks[i]-ranks[i-1], InitialGap)
		}
	}
}

func TestSequence_Empty(t *testing.T) {
	if got := Sequence(0); len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}
