package utils

import (
	"math"

	"golang.org/x/exp/constraints"
)

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// OneHot returns a vector of size n with a 1 at the position of item in slice. Items
// beyond n, or missing from slice, yield an all-zero vector.
func OneHot[T comparable](slice []T, item T, n int) []float64 {
	out := make([]float64, n)
	if i := FindIndex(slice, item); i >= 0 && i < n {
		out[i] = 1
	}
	return out
}

// Bucket rounds v down to a multiple of size.
func Bucket[T constraints.Integer | constraints.Float](v T, size int) int {
	if size <= 0 {
		return int(v)
	}
	return int(math.Floor(float64(v)/float64(size))) * size
}

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Fit pads v with zeros or truncates it to exactly n values.
func Fit(v []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, v)
	return out
}
