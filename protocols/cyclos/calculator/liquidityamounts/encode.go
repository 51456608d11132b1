package liquidityamounts

import (
	"errors"
	"math"

	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/fixedpoint"
)

// ErrZeroReserve is returned by SqrtPriceFromReserves when either reserve is zero.
var ErrZeroReserve = errors.New("reserves must be greater than zero")

// SqrtPriceFromReserves encodes the price reserve1/reserve0 as a Q32 sqrt price,
// rounding to the nearest integer. It goes through float64 and is meant for
// building fixtures and configuration from human-readable ratios, not for
// settlement math.
func SqrtPriceFromReserves(reserve1, reserve0 uint64) (uint64, error) {
	if reserve0 == 0 || reserve1 == 0 {
		return 0, ErrZeroReserve
	}

	v := math.Round(math.Sqrt(float64(reserve1)/float64(reserve0)) * float64(fixedpoint.Q32))
	// float64(MaxUint64) rounds up to 2^64, so >= rejects everything that cannot be represented.
	if v >= float64(math.MaxUint64) {
		return 0, ErrArithmeticOverflow
	}
	return uint64(v), nil
}
