package math

import "golang.org/x/exp/constraints"

// Clamp returns f limited to the range [low, high]. When low > high the
// result is low.
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f > high {
		f = high
	}
	if f < low {
		return low
	}
	return f
}
