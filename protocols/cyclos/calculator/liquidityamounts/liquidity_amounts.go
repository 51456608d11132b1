package liquidityamounts

import (
	"errors"
	"fmt"

	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/fixedpoint"
)

var (
	// ErrRangeDegenerate is returned when a conversion would divide by a zero-width range.
	ErrRangeDegenerate = errors.New("range boundaries are equal")
	// ErrInvalidInput is returned when a zero price is supplied where it is a divisor.
	ErrInvalidInput = errors.New("sqrt price must be greater than zero")
	// ErrArithmeticOverflow is returned when an intermediate or final value does not fit its width.
	ErrArithmeticOverflow = fixedpoint.ErrArithmeticOverflow
)

// GetLiquidityForAmount0 computes the liquidity received for a given amount of
// token0 over a price range, assuming the price is at or below the range.
//
//	ΔL = Δx * (√P_upper * √P_lower) / (√P_upper - √P_lower)
func GetLiquidityForAmount0(sqrtRatioAX32, sqrtRatioBX32, amount0 uint64) (uint32, error) {
	return liquidityForAmount0(NewRange(sqrtRatioAX32, sqrtRatioBX32), amount0)
}

// GetLiquidityForAmount1 computes the liquidity received for a given amount of
// token1 over a price range, assuming the price is at or above the range.
//
//	ΔL = Δy / (√P_upper - √P_lower)
func GetLiquidityForAmount1(sqrtRatioAX32, sqrtRatioBX32, amount1 uint64) (uint32, error) {
	return liquidityForAmount1(NewRange(sqrtRatioAX32, sqrtRatioBX32), amount1)
}

// GetLiquidityForAmounts computes the maximum liquidity that amount0 and amount1
// can back over a price range at the current price sqrtRatioX32.
func GetLiquidityForAmounts(sqrtRatioX32, sqrtRatioAX32, sqrtRatioBX32, amount0, amount1 uint64) (uint32, error) {
	r := NewRange(sqrtRatioAX32, sqrtRatioBX32)

	switch r.Classify(sqrtRatioX32) {
	case BelowRange:
		return liquidityForAmount0(r, amount0)
	case WithinRange:
		// The deposit has to cover both sides, so the smaller liquidity wins.
		liquidity0, err := liquidityForAmount0(Range{Lower: sqrtRatioX32, Upper: r.Upper}, amount0)
		if err != nil {
			return 0, err
		}
		liquidity1, err := liquidityForAmount1(Range{Lower: r.Lower, Upper: sqrtRatioX32}, amount1)
		if err != nil {
			return 0, err
		}
		return min(liquidity0, liquidity1), nil
	default:
		return liquidityForAmount1(r, amount1)
	}
}

// GetAmount0ForLiquidity computes the amount of token0 backing liquidity over a
// price range, assuming the price is at or below the range.
//
//	Δx = ΔL * (√P_upper - √P_lower) / (√P_upper * √P_lower)
func GetAmount0ForLiquidity(sqrtRatioAX32, sqrtRatioBX32 uint64, liquidity uint32) (uint64, error) {
	return amount0ForLiquidity(NewRange(sqrtRatioAX32, sqrtRatioBX32), liquidity)
}

// GetAmount1ForLiquidity computes the amount of token1 backing liquidity over a
// price range, assuming the price is at or above the range.
//
//	Δy = ΔL * (√P_upper - √P_lower)
func GetAmount1ForLiquidity(sqrtRatioAX32, sqrtRatioBX32 uint64, liquidity uint32) (uint64, error) {
	return amount1ForLiquidity(NewRange(sqrtRatioAX32, sqrtRatioBX32), liquidity)
}

// GetAmountsForLiquidity computes the token0 and token1 value of liquidity over
// a price range at the current price sqrtRatioX32.
func GetAmountsForLiquidity(sqrtRatioX32, sqrtRatioAX32, sqrtRatioBX32 uint64, liquidity uint32) (amount0, amount1 uint64, err error) {
	r := NewRange(sqrtRatioAX32, sqrtRatioBX32)

	switch r.Classify(sqrtRatioX32) {
	case BelowRange:
		amount0, err = amount0ForLiquidity(r, liquidity)
		return amount0, 0, err
	case WithinRange:
		amount0, err = amount0ForLiquidity(Range{Lower: sqrtRatioX32, Upper: r.Upper}, liquidity)
		if err != nil {
			return 0, 0, err
		}
		amount1, err = amount1ForLiquidity(Range{Lower: r.Lower, Upper: sqrtRatioX32}, liquidity)
		if err != nil {
			return 0, 0, err
		}
		return amount0, amount1, nil
	default:
		amount1, err = amount1ForLiquidity(r, liquidity)
		return 0, amount1, err
	}
}

// --- Internal implementations, all taking an ordered Range ---

func liquidityForAmount0(r Range, amount0 uint64) (uint32, error) {
	if r.IsDegenerate() {
		return 0, ErrRangeDegenerate
	}

	intermediate, err := fixedpoint.MulDivFloor(r.Lower, r.Upper, fixedpoint.Q32)
	if err != nil {
		return 0, fmt.Errorf("liquidity for amount0: %w", err)
	}
	liquidity, err := fixedpoint.MulDivFloor(amount0, intermediate, r.Width())
	if err != nil {
		return 0, fmt.Errorf("liquidity for amount0: %w", err)
	}
	return narrow(liquidity)
}

func liquidityForAmount1(r Range, amount1 uint64) (uint32, error) {
	if r.IsDegenerate() {
		return 0, ErrRangeDegenerate
	}

	liquidity, err := fixedpoint.MulDivFloor(amount1, fixedpoint.Q32, r.Width())
	if err != nil {
		return 0, fmt.Errorf("liquidity for amount1: %w", err)
	}
	return narrow(liquidity)
}

func amount0ForLiquidity(r Range, liquidity uint32) (uint64, error) {
	if r.Lower == 0 {
		return 0, ErrInvalidInput
	}

	scaled, err := fixedpoint.MulDivFloor(uint64(liquidity)<<fixedpoint.Resolution, r.Width(), r.Upper)
	if err != nil {
		return 0, fmt.Errorf("amount0 for liquidity: %w", err)
	}
	return scaled / r.Lower, nil
}

func amount1ForLiquidity(r Range, liquidity uint32) (uint64, error) {
	amount1, err := fixedpoint.MulDivFloor(uint64(liquidity), r.Width(), fixedpoint.Q32)
	if err != nil {
		return 0, fmt.Errorf("amount1 for liquidity: %w", err)
	}
	return amount1, nil
}

func narrow(liquidity uint64) (uint32, error) {
	l, err := fixedpoint.ToUint32(liquidity)
	if err != nil {
		return 0, fmt.Errorf("liquidity %d exceeds 32 bits: %w", liquidity, err)
	}
	return l, nil
}
