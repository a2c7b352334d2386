// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// Wrap wraps a floating point around the interval [min, max] so that
// values larger than max continue from min and values smaller than
// min continue from max. For example, angles can be wrapped to stay
// within [-π, π].
func Wrap(value, min, max float64) float64 {
	diff := max - min
	for value > max {
		value -= diff
	}
	for value < min {
		value += diff
	}
	return value
}

// WrapInterval is a wrapper to use Wrap with an r1.Interval instead of
// a separate max and min value
func WrapInterval(value float64, interval r1.Interval) float64 {
	return Wrap(value, interval.Min, interval.Max)
}
