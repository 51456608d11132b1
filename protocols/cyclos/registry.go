package cyclos

import (
	"errors"
	"fmt"

	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/tickmath"
)

var (
	// ErrInvalidTickRange is returned when a position's ticks do not describe a usable range.
	ErrInvalidTickRange = errors.New("invalid tick range")
)

// Pool is a view of a single pool's pricing state.
// Liquidity is the in-range liquidity and SqrtPriceX32 the current sqrt price in Q32.32.
type Pool struct {
	ID           uint64 `json:"id"`
	Token0       uint64 `json:"token0"`
	Token1       uint64 `json:"token1"`
	Fee          uint32 `json:"fee"`
	TickSpacing  uint16 `json:"tickSpacing"`
	Tick         int32  `json:"tick"`
	Liquidity    uint32 `json:"liquidity"`
	SqrtPriceX32 uint64 `json:"sqrtPriceX32"`
}

// Position is liquidity supplied to a pool over [TickLower, TickUpper).
type Position struct {
	ID        uint64 `json:"id"`
	PoolID    uint64 `json:"poolId"`
	TickLower int32  `json:"tickLower"`
	TickUpper int32  `json:"tickUpper"`
	Liquidity uint32 `json:"liquidity"`
}

// ValidateTicks checks that tickLower < tickUpper, both lie within the tick
// bounds and, when tickSpacing is non-zero, both are multiples of it.
func ValidateTicks(tickLower, tickUpper int32, tickSpacing uint16) error {
	if tickLower >= tickUpper {
		return fmt.Errorf("%w: lower %d must be below upper %d", ErrInvalidTickRange, tickLower, tickUpper)
	}
	if tickLower < tickmath.MIN_TICK {
		return fmt.Errorf("%w: lower %d below minimum %d", ErrInvalidTickRange, tickLower, tickmath.MIN_TICK)
	}
	if tickUpper > tickmath.MAX_TICK {
		return fmt.Errorf("%w: upper %d above maximum %d", ErrInvalidTickRange, tickUpper, tickmath.MAX_TICK)
	}
	if tickSpacing != 0 {
		spacing := int32(tickSpacing)
		if tickLower%spacing != 0 || tickUpper%spacing != 0 {
			return fmt.Errorf("%w: ticks %d, %d not multiples of spacing %d", ErrInvalidTickRange, tickLower, tickUpper, spacing)
		}
	}
	return nil
}

// Validate checks the position's ticks against the pool's tick spacing.
func (p Position) Validate(tickSpacing uint16) error {
	return ValidateTicks(p.TickLower, p.TickUpper, tickSpacing)
}
