package liquiditymath

import (
	"errors"
	"math"
)

var (
	ErrLiquidityOverflow  = errors.New("liquidity overflow")
	ErrLiquidityUnderflow = errors.New("liquidity underflow")
)

// AddDelta adds a signed liquidity delta to an unsigned 32-bit liquidity value,
// returning an error if the result is negative or does not fit in 32 bits.
func AddDelta(x uint32, y int64) (uint32, error) {
	// int64 holds every uint32 plus any delta that could bring it back into range,
	// so the sum below only overflows for deltas that are out of range anyway.
	if y > math.MaxUint32 {
		return 0, ErrLiquidityOverflow
	}
	if y < -math.MaxUint32 {
		return 0, ErrLiquidityUnderflow
	}

	z := int64(x) + y
	if z < 0 {
		return 0, ErrLiquidityUnderflow
	}
	if z > math.MaxUint32 {
		return 0, ErrLiquidityOverflow
	}
	return uint32(z), nil
}
