package rng

import "testing"

func TestStreamDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("two streams with the same seed diverged")
		}
	}
}

func TestStreamDistinctSeeds(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 5; i++ {
		if a.Float64() != b.Float64() {
			same = false
		}
	}
	if same {
		t.Fatal("two streams with different seeds produced identical draws")
	}
}

func TestExponentialNonNegative(t *testing.T) {
	s := New(7)
	for i := 0; i < 100; i++ {
		if v := s.Exponential(2.5); v < 0 {
			t.Fatalf("expected a nonnegative waiting time, got %v", v)
		}
	}
}
