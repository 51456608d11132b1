package sqrtpricemath

import (
	"errors"
	"math"

	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/fixedpoint"
)

var (
	ErrSqrtPriceZero        = errors.New("sqrt price must be greater than zero")
	ErrLiquidityOutOfBounds = errors.New("liquidity magnitude must fit in 32 bits")
)

// GetAmount0Delta calculates the amount0 delta between two prices.
// Δx = L * 2^32 * (√P_upper - √P_lower) / √P_upper / √P_lower
func GetAmount0Delta(sqrtRatioAX32, sqrtRatioBX32 uint64, liquidity uint32, roundUp bool) (uint64, error) {
	if sqrtRatioAX32 > sqrtRatioBX32 {
		sqrtRatioAX32, sqrtRatioBX32 = sqrtRatioBX32, sqrtRatioAX32
	}
	if sqrtRatioAX32 == 0 {
		return 0, ErrSqrtPriceZero
	}

	numerator1 := uint64(liquidity) << fixedpoint.Resolution
	numerator2 := sqrtRatioBX32 - sqrtRatioAX32

	if roundUp {
		term, err := fixedpoint.MulDivCeil(numerator1, numerator2, sqrtRatioBX32)
		if err != nil {
			return 0, err
		}
		return fixedpoint.DivCeil(term, sqrtRatioAX32)
	}

	term, err := fixedpoint.MulDivFloor(numerator1, numerator2, sqrtRatioBX32)
	if err != nil {
		return 0, err
	}
	return term / sqrtRatioAX32, nil
}

// GetAmount1Delta calculates the amount1 delta between two prices.
// Δy = L * (√P_upper - √P_lower) / 2^32
func GetAmount1Delta(sqrtRatioAX32, sqrtRatioBX32 uint64, liquidity uint32, roundUp bool) (uint64, error) {
	if sqrtRatioAX32 > sqrtRatioBX32 {
		sqrtRatioAX32, sqrtRatioBX32 = sqrtRatioBX32, sqrtRatioAX32
	}

	if roundUp {
		return fixedpoint.MulDivCeil(uint64(liquidity), sqrtRatioBX32-sqrtRatioAX32, fixedpoint.Q32)
	}
	return fixedpoint.MulDivFloor(uint64(liquidity), sqrtRatioBX32-sqrtRatioAX32, fixedpoint.Q32)
}

// GetAmount0DeltaSigned returns the amount0 owed for a signed liquidity change.
// Adding liquidity rounds up and is positive (owed to the pool); removing
// liquidity rounds down and is negative (owed by the pool).
func GetAmount0DeltaSigned(sqrtRatioAX32, sqrtRatioBX32 uint64, liquidity int64) (int64, error) {
	return signedDelta(sqrtRatioAX32, sqrtRatioBX32, liquidity, GetAmount0Delta)
}

// GetAmount1DeltaSigned returns the amount1 owed for a signed liquidity change.
func GetAmount1DeltaSigned(sqrtRatioAX32, sqrtRatioBX32 uint64, liquidity int64) (int64, error) {
	return signedDelta(sqrtRatioAX32, sqrtRatioBX32, liquidity, GetAmount1Delta)
}

type deltaFunc func(sqrtRatioAX32, sqrtRatioBX32 uint64, liquidity uint32, roundUp bool) (uint64, error)

func signedDelta(sqrtRatioAX32, sqrtRatioBX32 uint64, liquidity int64, delta deltaFunc) (int64, error) {
	if liquidity < -math.MaxUint32 || liquidity > math.MaxUint32 {
		return 0, ErrLiquidityOutOfBounds
	}

	if liquidity < 0 {
		amount, err := delta(sqrtRatioAX32, sqrtRatioBX32, uint32(-liquidity), false)
		if err != nil {
			return 0, err
		}
		if amount > math.MaxInt64 {
			return 0, fixedpoint.ErrArithmeticOverflow
		}
		return -int64(amount), nil
	}

	amount, err := delta(sqrtRatioAX32, sqrtRatioBX32, uint32(liquidity), true)
	if err != nil {
		return 0, err
	}
	if amount > math.MaxInt64 {
		return 0, fixedpoint.ErrArithmeticOverflow
	}
	return int64(amount), nil
}
