package fixedpoint

import (
	"errors"
	"math"

	"github.com/holiman/uint256"
)

const (
	// Resolution is the number of fractional bits in the Q32 format.
	Resolution = 32
	// Q32 is the Q32.32 fixed-point number representing 1.
	Q32 = uint64(1) << Resolution
)

var (
	// ErrArithmeticOverflow is returned when a result does not fit its target width.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	// ErrDivisionByZero is returned when a denominator is zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// MulDivFloor returns floor(a * b / denominator).
// The product is held in a 256-bit intermediate, so only the final quotient
// is narrowed to 64 bits.
func MulDivFloor(a, b, denominator uint64) (uint64, error) {
	return mulDiv(a, b, denominator, false)
}

// MulDivCeil returns ceil(a * b / denominator).
func MulDivCeil(a, b, denominator uint64) (uint64, error) {
	return mulDiv(a, b, denominator, true)
}

// DivCeil returns ceil(a / b).
func DivCeil(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	q := a / b
	if a%b != 0 {
		q++
	}
	return q, nil
}

// ToUint32 narrows x to 32 bits.
func ToUint32(x uint64) (uint32, error) {
	if x > math.MaxUint32 {
		return 0, ErrArithmeticOverflow
	}
	return uint32(x), nil
}

func mulDiv(a, b, denominator uint64, roundUp bool) (uint64, error) {
	if denominator == 0 {
		return 0, ErrDivisionByZero
	}

	var product, d, quotient, rem uint256.Int
	product.Mul(uint256.NewInt(a), uint256.NewInt(b))
	d.SetUint64(denominator)
	quotient.DivMod(&product, &d, &rem)

	if roundUp && !rem.IsZero() {
		quotient.AddUint64(&quotient, 1)
	}
	if !quotient.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return quotient.Uint64(), nil
}
