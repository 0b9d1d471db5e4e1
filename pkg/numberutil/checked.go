package numberutil

import (
	"errors"
	"math"
	"math/bits"
)

var ErrOverflow = errors.New("arithmetic overflow")

// MaxStored is the largest amount or counter the database keeps exactly, it
// stores them as signed 64-bit integers.
const MaxStored = math.MaxInt64

func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}

	return sum, nil
}

// CheckedAddStored is CheckedAdd bounded by MaxStored.
func CheckedAddStored(a, b uint64) (uint64, error) {
	sum, err := CheckedAdd(a, b)
	if err != nil || sum > MaxStored {
		return 0, ErrOverflow
	}

	return sum, nil
}

func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrOverflow
	}

	return diff, nil
}

func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}

	return lo, nil
}

// MulDiv computes a*b/d with a 128-bit intermediate product, truncating. It
// fails if d is zero or the quotient does not fit in 64 bits.
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrOverflow
	}

	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, ErrOverflow
	}

	quo, _ := bits.Div64(hi, lo, d)
	return quo, nil
}
