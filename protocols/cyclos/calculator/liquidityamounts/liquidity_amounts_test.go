package liquidityamounts

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/fixedpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePriceSqrt builds a Q32 sqrt price from a reserve ratio for fixtures.
func encodePriceSqrt(t testing.TB, reserve1, reserve0 uint64) uint64 {
	t.Helper()
	p, err := SqrtPriceFromReserves(reserve1, reserve0)
	require.NoError(t, err)
	return p
}

// randBetween returns a uniformly random value in [lo, hi].
func randBetween(lo, hi uint64) uint64 {
	n, err := rand.Int(rand.Reader, new(big.Int).SetUint64(hi-lo+1))
	if err != nil {
		panic(err)
	}
	return lo + n.Uint64()
}

func TestSqrtPriceFromReserves(t *testing.T) {
	tests := []struct {
		name               string
		reserve1, reserve0 uint64
		want               uint64
	}{
		{"1:1", 1, 1, fixedpoint.Q32},
		{"100:110", 100, 110, 4095090639},
		{"110:100", 110, 100, 4504599703},
		{"99:110", 99, 110, 4074563739},
		{"111:100", 111, 100, 4525028831},
		{"4:1", 4, 1, 2 * fixedpoint.Q32},
		{"1:4", 1, 4, fixedpoint.Q32 / 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, encodePriceSqrt(t, tc.reserve1, tc.reserve0))
		})
	}

	t.Run("zero reserve", func(t *testing.T) {
		_, err := SqrtPriceFromReserves(1, 0)
		assert.ErrorIs(t, err, ErrZeroReserve)
		_, err = SqrtPriceFromReserves(0, 1)
		assert.ErrorIs(t, err, ErrZeroReserve)
	})

	t.Run("does not fit in 64 bits", func(t *testing.T) {
		_, err := SqrtPriceFromReserves(1<<63, 1)
		require.NoError(t, err)
		// sqrt(2^64) * 2^32 = 2^64
		_, err = SqrtPriceFromReserves(^uint64(0), 1)
		assert.ErrorIs(t, err, ErrArithmeticOverflow)
	})
}

func TestNewRange(t *testing.T) {
	r := NewRange(20, 10)
	assert.Equal(t, Range{Lower: 10, Upper: 20}, r)
	assert.Equal(t, r, NewRange(10, 20))
	assert.Equal(t, uint64(10), r.Width())
	assert.False(t, r.IsDegenerate())
	assert.True(t, NewRange(7, 7).IsDegenerate())
}

func TestRange_Classify(t *testing.T) {
	r := NewRange(100, 200)
	tests := []struct {
		price uint64
		want  PricePosition
	}{
		{0, BelowRange},
		{99, BelowRange},
		{100, BelowRange},
		{101, WithinRange},
		{199, WithinRange},
		{200, AboveRange},
		{201, AboveRange},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, r.Classify(tc.price), "price %d", tc.price)
	}
	assert.Equal(t, "below", BelowRange.String())
	assert.Equal(t, "within", WithinRange.String())
	assert.Equal(t, "above", AboveRange.String())
}

func TestGetLiquidityForAmounts(t *testing.T) {
	sqrtPriceAX32 := encodePriceSqrt(t, 100, 110)
	sqrtPriceBX32 := encodePriceSqrt(t, 110, 100)

	tests := []struct {
		name         string
		sqrtPriceX32 uint64
		want         uint32
	}{
		{"price within range", encodePriceSqrt(t, 1, 1), 2148},
		{"price below range", encodePriceSqrt(t, 99, 110), 1048},
		{"price above range", encodePriceSqrt(t, 111, 100), 2097},
		{"price at lower boundary", sqrtPriceAX32, 1048},
		{"price at upper boundary", sqrtPriceBX32, 2097},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			liquidity, err := GetLiquidityForAmounts(tc.sqrtPriceX32, sqrtPriceAX32, sqrtPriceBX32, 100, 200)
			require.NoError(t, err)
			assert.Equal(t, tc.want, liquidity)

			swapped, err := GetLiquidityForAmounts(tc.sqrtPriceX32, sqrtPriceBX32, sqrtPriceAX32, 100, 200)
			require.NoError(t, err)
			assert.Equal(t, liquidity, swapped)
		})
	}

	t.Run("boundary ties resolve to the single-sided branches", func(t *testing.T) {
		atLower, err := GetLiquidityForAmounts(sqrtPriceAX32, sqrtPriceAX32, sqrtPriceBX32, 100, 200)
		require.NoError(t, err)
		only0, err := GetLiquidityForAmount0(sqrtPriceAX32, sqrtPriceBX32, 100)
		require.NoError(t, err)
		assert.Equal(t, only0, atLower)

		atUpper, err := GetLiquidityForAmounts(sqrtPriceBX32, sqrtPriceAX32, sqrtPriceBX32, 100, 200)
		require.NoError(t, err)
		only1, err := GetLiquidityForAmount1(sqrtPriceAX32, sqrtPriceBX32, 200)
		require.NoError(t, err)
		assert.Equal(t, only1, atUpper)
	})

	t.Run("degenerate range", func(t *testing.T) {
		_, err := GetLiquidityForAmounts(sqrtPriceAX32-1, sqrtPriceAX32, sqrtPriceAX32, 100, 200)
		assert.ErrorIs(t, err, ErrRangeDegenerate)
		_, err = GetLiquidityForAmounts(sqrtPriceAX32+1, sqrtPriceAX32, sqrtPriceAX32, 100, 200)
		assert.ErrorIs(t, err, ErrRangeDegenerate)
	})
}

func TestGetAmountsForLiquidity(t *testing.T) {
	sqrtPriceAX32 := encodePriceSqrt(t, 100, 110)
	sqrtPriceBX32 := encodePriceSqrt(t, 110, 100)

	tests := []struct {
		name             string
		sqrtPriceX32     uint64
		liquidity        uint32
		amount0, amount1 uint64
	}{
		{"price within range", encodePriceSqrt(t, 1, 1), 2148, 99, 99},
		{"price below range", encodePriceSqrt(t, 99, 110), 1048, 99, 0},
		{"price above range", encodePriceSqrt(t, 111, 100), 2097, 0, 199},
		{"price at lower boundary", sqrtPriceAX32, 1048, 99, 0},
		{"price at upper boundary", sqrtPriceBX32, 2097, 0, 199},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			amount0, amount1, err := GetAmountsForLiquidity(tc.sqrtPriceX32, sqrtPriceAX32, sqrtPriceBX32, tc.liquidity)
			require.NoError(t, err)
			assert.Equal(t, tc.amount0, amount0)
			assert.Equal(t, tc.amount1, amount1)

			swapped0, swapped1, err := GetAmountsForLiquidity(tc.sqrtPriceX32, sqrtPriceBX32, sqrtPriceAX32, tc.liquidity)
			require.NoError(t, err)
			assert.Equal(t, amount0, swapped0)
			assert.Equal(t, amount1, swapped1)
		})
	}

	t.Run("zero lower bound is rejected where it divides", func(t *testing.T) {
		_, _, err := GetAmountsForLiquidity(0, 0, sqrtPriceBX32, 1000)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("zero-width range holds no value", func(t *testing.T) {
		amount0, amount1, err := GetAmountsForLiquidity(fixedpoint.Q32, sqrtPriceAX32, sqrtPriceAX32, 1000)
		require.NoError(t, err)
		assert.Zero(t, amount0)
		assert.Zero(t, amount1)
	})
}

func TestSingleSidedConversions(t *testing.T) {
	sqrtPriceAX32 := encodePriceSqrt(t, 100, 110)
	sqrtPriceBX32 := encodePriceSqrt(t, 110, 100)

	t.Run("liquidity for amount0", func(t *testing.T) {
		liquidity, err := GetLiquidityForAmount0(sqrtPriceAX32, sqrtPriceBX32, 100)
		require.NoError(t, err)
		assert.Equal(t, uint32(1048), liquidity)
	})

	t.Run("liquidity for amount1", func(t *testing.T) {
		liquidity, err := GetLiquidityForAmount1(sqrtPriceAX32, sqrtPriceBX32, 200)
		require.NoError(t, err)
		assert.Equal(t, uint32(2097), liquidity)
	})

	t.Run("amount0 for liquidity", func(t *testing.T) {
		amount0, err := GetAmount0ForLiquidity(sqrtPriceBX32, sqrtPriceAX32, 1048)
		require.NoError(t, err)
		assert.Equal(t, uint64(99), amount0)
	})

	t.Run("amount1 for liquidity", func(t *testing.T) {
		amount1, err := GetAmount1ForLiquidity(sqrtPriceBX32, sqrtPriceAX32, 2097)
		require.NoError(t, err)
		assert.Equal(t, uint64(199), amount1)
	})

	t.Run("degenerate range", func(t *testing.T) {
		_, err := GetLiquidityForAmount0(sqrtPriceAX32, sqrtPriceAX32, 100)
		assert.ErrorIs(t, err, ErrRangeDegenerate)
		_, err = GetLiquidityForAmount1(sqrtPriceAX32, sqrtPriceAX32, 100)
		assert.ErrorIs(t, err, ErrRangeDegenerate)
	})

	t.Run("liquidity wider than 32 bits", func(t *testing.T) {
		_, err := GetLiquidityForAmount1(fixedpoint.Q32, 2*fixedpoint.Q32, 1<<33)
		assert.ErrorIs(t, err, ErrArithmeticOverflow)
	})

	t.Run("intermediate wider than 64 bits", func(t *testing.T) {
		_, err := GetLiquidityForAmount1(fixedpoint.Q32, fixedpoint.Q32+1, 1<<40)
		assert.ErrorIs(t, err, ErrArithmeticOverflow)
	})

	t.Run("amount0 with zero lower bound", func(t *testing.T) {
		_, err := GetAmount0ForLiquidity(0, sqrtPriceBX32, 1)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

// --- Invariant Tests ---

func TestInvariants_NormalizationSymmetry(t *testing.T) {
	for i := 0; i < 500; i++ {
		a := randBetween(1<<16, 1<<48)
		b := randBetween(1<<16, 1<<48)
		amount := randBetween(0, 1<<24)
		liquidity := uint32(randBetween(0, 1<<32-1))

		l0, err0 := GetLiquidityForAmount0(a, b, amount)
		l0s, err0s := GetLiquidityForAmount0(b, a, amount)
		assert.Equal(t, l0, l0s)
		assert.Equal(t, err0, err0s)

		l1, err1 := GetLiquidityForAmount1(a, b, amount)
		l1s, err1s := GetLiquidityForAmount1(b, a, amount)
		assert.Equal(t, l1, l1s)
		assert.Equal(t, err1, err1s)

		x, errx := GetAmount0ForLiquidity(a, b, liquidity)
		xs, errxs := GetAmount0ForLiquidity(b, a, liquidity)
		assert.Equal(t, x, xs)
		assert.Equal(t, errx, errxs)

		y, erry := GetAmount1ForLiquidity(a, b, liquidity)
		ys, errys := GetAmount1ForLiquidity(b, a, liquidity)
		assert.Equal(t, y, ys)
		assert.Equal(t, erry, errys)
	}
}

func TestInvariants_Monotonicity(t *testing.T) {
	sqrtPriceAX32 := encodePriceSqrt(t, 100, 110)
	sqrtPriceBX32 := encodePriceSqrt(t, 110, 100)

	for i := 0; i < 500; i++ {
		lo := randBetween(0, 1<<20)
		hi := randBetween(lo, 1<<20)

		l0Lo, err := GetLiquidityForAmount0(sqrtPriceAX32, sqrtPriceBX32, lo)
		require.NoError(t, err)
		l0Hi, err := GetLiquidityForAmount0(sqrtPriceAX32, sqrtPriceBX32, hi)
		require.NoError(t, err)
		assert.LessOrEqual(t, l0Lo, l0Hi)

		l1Lo, err := GetLiquidityForAmount1(sqrtPriceAX32, sqrtPriceBX32, lo)
		require.NoError(t, err)
		l1Hi, err := GetLiquidityForAmount1(sqrtPriceAX32, sqrtPriceBX32, hi)
		require.NoError(t, err)
		assert.LessOrEqual(t, l1Lo, l1Hi)
	}
}

func TestInvariants_RoundTripNeverExceedsDeposit(t *testing.T) {
	sqrtPriceAX32 := encodePriceSqrt(t, 100, 110)
	sqrtPriceBX32 := encodePriceSqrt(t, 110, 100)

	for i := 0; i < 1000; i++ {
		sqrtPriceX32 := randBetween(sqrtPriceAX32/2, 2*sqrtPriceBX32)
		amount0 := randBetween(0, 1<<24)
		amount1 := randBetween(0, 1<<24)

		liquidity, err := GetLiquidityForAmounts(sqrtPriceX32, sqrtPriceAX32, sqrtPriceBX32, amount0, amount1)
		if err != nil {
			// A price a few units from a boundary can push the one-sided liquidity past 32 bits.
			require.ErrorIs(t, err, ErrArithmeticOverflow)
			continue
		}

		got0, got1, err := GetAmountsForLiquidity(sqrtPriceX32, sqrtPriceAX32, sqrtPriceBX32, liquidity)
		require.NoError(t, err)
		assert.LessOrEqual(t, got0, amount0, "price %d liquidity %d", sqrtPriceX32, liquidity)
		assert.LessOrEqual(t, got1, amount1, "price %d liquidity %d", sqrtPriceX32, liquidity)
	}
}

func TestInvariants_WithinRangeHoldsValue(t *testing.T) {
	sqrtPriceAX32 := encodePriceSqrt(t, 100, 110)
	sqrtPriceBX32 := encodePriceSqrt(t, 110, 100)

	for i := 0; i < 1000; i++ {
		sqrtPriceX32 := randBetween(sqrtPriceAX32+1, sqrtPriceBX32-1)
		liquidity := uint32(randBetween(1000, 1<<32-1))

		amount0, amount1, err := GetAmountsForLiquidity(sqrtPriceX32, sqrtPriceAX32, sqrtPriceBX32, liquidity)
		require.NoError(t, err)
		assert.True(t, amount0 > 0 || amount1 > 0, "price %d liquidity %d", sqrtPriceX32, liquidity)
	}
}
