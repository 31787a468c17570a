package rng

import "testing"

func TestSameInputsSameSequence(t *testing.T) {
	a := New(42, 1, -3, 500)
	b := New(42, 1, -3, 500)
	for i := 0; i < 100; i++ {
		if x, y := a.Uint64(), b.Uint64(); x != y {
			t.Fatalf("step %d: %d != %d", i, x, y)
		}
	}
}

func TestDifferentInputsDiffer(t *testing.T) {
	a := New(42, 0, 0)
	b := New(42, 0, 1)
	if a.Uint64() == b.Uint64() {
		t.Error("different salts produced the same first value")
	}
}

func TestRanges(t *testing.T) {
	s := New(7)
	for i := 0; i < 10000; i++ {
		if v := s.Intn(16); v < 0 || v >= 16 {
			t.Fatalf("Intn(16) = %d", v)
		}
		if f := s.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64() = %v", f)
		}
	}
	if s.Intn(0) != 0 || s.Intn(-5) != 0 {
		t.Error("Intn of non-positive n should be 0")
	}
	if s.Chance(0) {
		t.Error("Chance(0) returned true")
	}
	if !s.Chance(1) {
		t.Error("Chance(1) returned false")
	}
}

func TestIntnCoversRange(t *testing.T) {
	s := New(99)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		seen[s.Intn(6)] = true
	}
	if len(seen) != 6 {
		t.Errorf("Intn(6) hit %d distinct values in 1000 draws, want 6", len(seen))
	}
}
