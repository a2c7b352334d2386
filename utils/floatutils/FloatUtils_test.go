package floatutils

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-2, -1, 1, -1},
		{3, -1, 1, 1},
	}

	for _, test := range tests {
		if got := Clip(test.value, test.min, test.max); got != test.want {
			t.Errorf("clip(%v, %v, %v): want(%v) have(%v)", test.value,
				test.min, test.max, test.want, got)
		}
	}
}

func TestWrapInterval(t *testing.T) {
	angles := r1.Interval{Min: -math.Pi, Max: math.Pi}
	tests := []struct {
		value, want float64
	}{
		{0.25, 0.25},
		{math.Pi + 0.5, -math.Pi + 0.5},
		{-math.Pi - 0.5, math.Pi - 0.5},
		{4*math.Pi + 1, 1},
	}

	for _, test := range tests {
		got := WrapInterval(test.value, angles)
		if math.Abs(got-test.want) > 1e-12 {
			t.Errorf("wrap(%v): want(%v) have(%v)", test.value, test.want,
				got)
		}
		if got < angles.Min || got > angles.Max {
			t.Errorf("wrap(%v): %v outside of %v", test.value, got, angles)
		}
	}
}
