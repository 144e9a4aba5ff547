package mathutil

import "math"

// IntMin returns the smaller of two ints (search: int-math).
func IntMin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// IntMax returns the larger of two ints (search: int-math).
func IntMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// IntAbs returns the absolute value of an int (search: int-math).
func IntAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// IntClamp limits x to [lo, hi]. hi wins when the range is empty.
func IntClamp(x, lo, hi int) int {
	return IntMin(IntMax(x, lo), hi)
}

// FloorInt converts a continuous coordinate to the index of the cell containing it.
func FloorInt(v float64) int {
	return int(math.Floor(v))
}

// RoundInt converts a continuous coordinate to the index of the nearest grid line.
// Halves round away from zero.
func RoundInt(v float64) int {
	return int(math.Round(v))
}
