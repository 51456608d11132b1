package cyclos

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	cyclos "github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos"
	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/fixedpoint"
	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/liquidityamounts"
	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/liquiditymath"
	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/sqrtpricemath"
	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/tickmath"
)

var (
	ErrTokenMismatch = errors.New("token mismatch")
	ErrZeroLiquidity = errors.New("liquidity must be greater than zero")
	ErrSlippageCheck = errors.New("price slippage check")

	Q32F = new(big.Float).SetUint64(fixedpoint.Q32)
)

// MintParams describes a deposit into a new or existing position.
type MintParams struct {
	TickLower      int32  `json:"tickLower"`
	TickUpper      int32  `json:"tickUpper"`
	Amount0Desired uint64 `json:"amount0Desired"`
	Amount1Desired uint64 `json:"amount1Desired"`
	Amount0Min     uint64 `json:"amount0Min"`
	Amount1Min     uint64 `json:"amount1Min"`
}

// MintQuote is the liquidity a deposit buys and the token amounts the pool will pull for it.
type MintQuote struct {
	Liquidity uint32 `json:"liquidity"`
	Amount0   uint64 `json:"amount0"`
	Amount1   uint64 `json:"amount1"`
}

// BurnQuote is the liquidity left in a position after a burn and the token amounts released.
type BurnQuote struct {
	Liquidity uint32 `json:"liquidity"`
	Amount0   uint64 `json:"amount0"`
	Amount1   uint64 `json:"amount1"`
}

// PositionRange returns the sqrt price range covered by [tickLower, tickUpper).
func PositionRange(tickLower, tickUpper int32) (liquidityamounts.Range, error) {
	sqrtRatioLowerX32, err := tickmath.GetSqrtRatioAtTick(tickLower)
	if err != nil {
		return liquidityamounts.Range{}, fmt.Errorf("tick lower %d: %w", tickLower, err)
	}
	sqrtRatioUpperX32, err := tickmath.GetSqrtRatioAtTick(tickUpper)
	if err != nil {
		return liquidityamounts.Range{}, fmt.Errorf("tick upper %d: %w", tickUpper, err)
	}
	return liquidityamounts.NewRange(sqrtRatioLowerX32, sqrtRatioUpperX32), nil
}

// GetPositionAmounts values a position at the pool's current price, rounding down.
func GetPositionAmounts(pool cyclos.Pool, position cyclos.Position) (amount0, amount1 uint64, err error) {
	if err := position.Validate(pool.TickSpacing); err != nil {
		return 0, 0, err
	}
	r, err := PositionRange(position.TickLower, position.TickUpper)
	if err != nil {
		return 0, 0, err
	}
	return liquidityamounts.GetAmountsForLiquidity(pool.SqrtPriceX32, r.Lower, r.Upper, position.Liquidity)
}

// QuoteMint computes the liquidity a deposit supports at the pool's current
// price and the amounts the pool takes for it. Liquidity is rounded down and
// the owed amounts are rounded up, so the owed amounts never exceed the
// desired ones.
func QuoteMint(pool cyclos.Pool, params MintParams) (MintQuote, error) {
	if err := cyclos.ValidateTicks(params.TickLower, params.TickUpper, pool.TickSpacing); err != nil {
		return MintQuote{}, err
	}
	r, err := PositionRange(params.TickLower, params.TickUpper)
	if err != nil {
		return MintQuote{}, err
	}

	liquidity, err := liquidityamounts.GetLiquidityForAmounts(
		pool.SqrtPriceX32, r.Lower, r.Upper,
		params.Amount0Desired, params.Amount1Desired,
	)
	if err != nil {
		return MintQuote{}, err
	}
	if liquidity == 0 {
		return MintQuote{}, ErrZeroLiquidity
	}

	amount0, amount1, err := modifyPositionAmounts(pool.SqrtPriceX32, r, int64(liquidity))
	if err != nil {
		return MintQuote{}, err
	}

	quote := MintQuote{
		Liquidity: liquidity,
		Amount0:   uint64(amount0),
		Amount1:   uint64(amount1),
	}
	if quote.Amount0 < params.Amount0Min || quote.Amount1 < params.Amount1Min {
		return MintQuote{}, fmt.Errorf("%w: got (%d, %d), want at least (%d, %d)",
			ErrSlippageCheck, quote.Amount0, quote.Amount1, params.Amount0Min, params.Amount1Min)
	}
	return quote, nil
}

// QuoteBurn computes the amounts released by removing liquidity from a
// position at the pool's current price, rounding down.
func QuoteBurn(pool cyclos.Pool, position cyclos.Position, liquidity uint32) (BurnQuote, error) {
	if err := position.Validate(pool.TickSpacing); err != nil {
		return BurnQuote{}, err
	}

	remaining, err := liquiditymath.AddDelta(position.Liquidity, -int64(liquidity))
	if err != nil {
		return BurnQuote{}, err
	}

	r, err := PositionRange(position.TickLower, position.TickUpper)
	if err != nil {
		return BurnQuote{}, err
	}
	amount0, amount1, err := modifyPositionAmounts(pool.SqrtPriceX32, r, -int64(liquidity))
	if err != nil {
		return BurnQuote{}, err
	}

	return BurnQuote{
		Liquidity: remaining,
		Amount0:   uint64(-amount0),
		Amount1:   uint64(-amount1),
	}, nil
}

// modifyPositionAmounts returns the signed token deltas for changing a range's
// liquidity by liquidityDelta at sqrtPriceX32. Positive values are owed to the
// pool, negative values are owed by it.
func modifyPositionAmounts(sqrtPriceX32 uint64, r liquidityamounts.Range, liquidityDelta int64) (amount0, amount1 int64, err error) {
	switch r.Classify(sqrtPriceX32) {
	case liquidityamounts.BelowRange:
		amount0, err = sqrtpricemath.GetAmount0DeltaSigned(r.Lower, r.Upper, liquidityDelta)
		return amount0, 0, err
	case liquidityamounts.WithinRange:
		amount0, err = sqrtpricemath.GetAmount0DeltaSigned(sqrtPriceX32, r.Upper, liquidityDelta)
		if err != nil {
			return 0, 0, err
		}
		amount1, err = sqrtpricemath.GetAmount1DeltaSigned(r.Lower, sqrtPriceX32, liquidityDelta)
		if err != nil {
			return 0, 0, err
		}
		return amount0, amount1, nil
	default:
		amount1, err = sqrtpricemath.GetAmount1DeltaSigned(r.Lower, r.Upper, liquidityDelta)
		return 0, amount1, err
	}
}

// GetVirtualReserves calculates the virtual reserves of a pool based on its
// current liquidity and price.
func GetVirtualReserves(tokenInID, tokenOutID uint64, pool cyclos.Pool) (reserveIn, reserveOut uint64, err error) {
	if !((tokenInID == pool.Token0 && tokenOutID == pool.Token1) || (tokenInID == pool.Token1 && tokenOutID == pool.Token0)) {
		return 0, 0, fmt.Errorf("%w: provided tokens do not match pool tokens", ErrTokenMismatch)
	}
	if pool.SqrtPriceX32 == 0 {
		return 0, 0, liquidityamounts.ErrInvalidInput
	}

	// x = L / √P, y = L * √P
	reserve0 := (uint64(pool.Liquidity) << fixedpoint.Resolution) / pool.SqrtPriceX32
	reserve1, err := fixedpoint.MulDivFloor(uint64(pool.Liquidity), pool.SqrtPriceX32, fixedpoint.Q32)
	if err != nil {
		return 0, 0, err
	}

	if tokenInID == pool.Token0 {
		return reserve0, reserve1, nil
	}
	return reserve1, reserve0, nil
}

// GetSpotPrice calculates the spot price of tokenIn in terms of tokenOut,
// adjusted for token decimals. The returned big.Int represents the price
// with precision matching the decimals of tokenOut.
// For example, if tokenOut has 6 decimals, a return value of 3045123456
// represents a price of 3045.123456.
func GetSpotPrice(
	tokenInID, tokenOutID uint64,
	decimalsIn, decimalsOut uint8,
	pool cyclos.Pool,
) (*big.Int, error) {
	if !((tokenInID == pool.Token0 && tokenOutID == pool.Token1) || (tokenInID == pool.Token1 && tokenOutID == pool.Token0)) {
		return nil, fmt.Errorf("%w: provided tokens do not match pool tokens", ErrTokenMismatch)
	}
	if pool.SqrtPriceX32 == 0 {
		return nil, liquidityamounts.ErrInvalidInput
	}

	// SqrtPriceX32 is a Q32.32 number: sqrt(token1/token0) * 2^32
	decimalsInF := big.NewFloat(math.Pow(10, float64(decimalsIn)))
	decimalsOutF := big.NewFloat(math.Pow(10, float64(decimalsOut)))

	sqrtPriceX32F := new(big.Float).SetUint64(pool.SqrtPriceX32)
	intermediate := sqrtPriceX32F.Quo(sqrtPriceX32F, Q32F)
	price := new(big.Float).Mul(intermediate, intermediate)

	if tokenInID == pool.Token0 {
		spotPrice := new(big.Float).Quo(price, new(big.Float).Quo(decimalsOutF, decimalsInF))
		spotPrice.Mul(spotPrice, decimalsOutF)
		sp, _ := spotPrice.Int(nil)
		return sp, nil
	}

	spotPrice := new(big.Float).Quo(big.NewFloat(1), price)
	spotPrice.Quo(spotPrice, new(big.Float).Quo(decimalsOutF, decimalsInF))
	spotPrice.Mul(spotPrice, decimalsOutF)
	sp, _ := spotPrice.Int(nil)
	return sp, nil
}
