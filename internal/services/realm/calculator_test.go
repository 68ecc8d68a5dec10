package realm

import (
	"testing"
	"time"
)

func TestDigitSum(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 0},
		{7, 7},
		{19, 10},
		{2024, 8},
		{-42, 6},
	}
	for _, c := range cases {
		if got := DigitSum(c.in); got != c.want {
			t.Fatalf("DigitSum(%d): expected %d, got %d", c.in, c.want, got)
		}
	}
}

func TestReduceStaysInOneToNine(t *testing.T) {
	for n := -5; n <= 200; n++ {
		got := Reduce(n)
		if got < 1 || got > 9 {
			t.Fatalf("Reduce(%d) = %d out of range", n, got)
		}
	}
}

func TestReduceDigitRoot(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{1, 1},
		{9, 9},
		{10, 1},
		{18, 9},
		{28, 1},
	}
	for _, c := range cases {
		if got := Reduce(c.in); got != c.want {
			t.Fatalf("Reduce(%d): expected %d, got %d", c.in, c.want, got)
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	calc := NewCalculator(time.UTC)
	ts := time.Date(2024, 10, 10, 14, 30, 0, 0, time.UTC)

	a := calc.Compute(ts, 72)
	b := calc.Compute(ts, 72)
	if a != b {
		t.Fatalf("expected deterministic result, got %d and %d", a, b)
	}
	if a < 1 || a > 9 {
		t.Fatalf("result %d out of range", a)
	}
}

func TestComputeKnownValue(t *testing.T) {
	calc := NewCalculator(time.UTC)
	// 14 + 30 + 10 + 10 (Oct) + 2024 + 72 reduced digit-wise:
	// 5 + 3 + 1 + 1 + 8 + 9 = 27 -> 9
	ts := time.Date(2024, 10, 10, 14, 30, 0, 0, time.UTC)
	if got := calc.Compute(ts, 72); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
}
