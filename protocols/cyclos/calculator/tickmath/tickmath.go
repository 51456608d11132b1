package tickmath

import (
	"errors"
	"sync"

	"github.com/holiman/uint256"
)

const (
	// MIN_TICK is the minimum tick that may be passed to GetSqrtRatioAtTick.
	// sqrt(1.0001^MIN_TICK) is roughly 2^-16.
	MIN_TICK = int32(-221818)
	// MAX_TICK is the maximum tick that may be passed to GetSqrtRatioAtTick.
	MAX_TICK = -MIN_TICK

	// MIN_SQRT_RATIO is the value returned by GetSqrtRatioAtTick(MIN_TICK).
	MIN_SQRT_RATIO = uint64(65537)
	// MAX_SQRT_RATIO is the value returned by GetSqrtRatioAtTick(MAX_TICK).
	MAX_SQRT_RATIO = uint64(281472331704915)
)

var (
	ErrTickOutOfBounds      = errors.New("tick out of bounds")
	ErrSqrtPriceOutOfBounds = errors.New("sqrt price out of bounds")

	maxUint256 = new(uint256.Int).SetAllOne()

	// ratioConstants are sqrt(1.0001^-2^i) in UQ128.128 for i in 0..17, preceded
	// by 1 in UQ128.128. Ticks are bounded by 2^18, so higher bits never occur.
	ratioConstants = [19]*uint256.Int{
		uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),  // sqrt(1.0001^-1)
		uint256.MustFromHex("0x100000000000000000000000000000000"), // 1
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),  // sqrt(1.0001^-2)
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),  // sqrt(1.0001^-4)
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),  // sqrt(1.0001^-8)
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),  // sqrt(1.0001^-16)
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),  // sqrt(1.0001^-32)
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),  // sqrt(1.0001^-64)
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),  // sqrt(1.0001^-128)
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),  // sqrt(1.0001^-256)
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),  // sqrt(1.0001^-512)
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),  // sqrt(1.0001^-1024)
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),  // sqrt(1.0001^-2048)
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),  // sqrt(1.0001^-4096)
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),  // sqrt(1.0001^-8192)
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),  // sqrt(1.0001^-16384)
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),  // sqrt(1.0001^-32768)
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),   // sqrt(1.0001^-65536)
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),    // sqrt(1.0001^-131072)
	}

	// q96Mask keeps the bits dropped when going from Q128 to Q32.
	q96Mask = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 96), 1)
)

// tickMath holds reusable uint256 objects to avoid memory allocations.
type tickMath struct {
	ratio *uint256.Int
	rem   *uint256.Int
}

// pool manages a pool of tickMath objects for safe concurrent use.
var pool = sync.Pool{
	New: func() any {
		return &tickMath{
			ratio: new(uint256.Int),
			rem:   new(uint256.Int),
		}
	},
}

// GetSqrtRatioAtTick calculates sqrt(1.0001^tick) * 2^32, rounded up.
func GetSqrtRatioAtTick(tick int32) (uint64, error) {
	if tick < MIN_TICK || tick > MAX_TICK {
		return 0, ErrTickOutOfBounds
	}

	tm := pool.Get().(*tickMath)
	defer pool.Put(tm)

	absTick := int64(tick)
	if absTick < 0 {
		absTick = -absTick
	}

	if (absTick & 0x1) != 0 {
		tm.ratio.Set(ratioConstants[0])
	} else {
		tm.ratio.Set(ratioConstants[1])
	}

	for i := 2; i < len(ratioConstants); i++ {
		if (absTick & (1 << (i - 1))) != 0 {
			tm.ratio.Mul(tm.ratio, ratioConstants[i]).Rsh(tm.ratio, 128)
		}
	}

	// The ladder yields the price for -|tick|; invert it for positive ticks.
	if tick > 0 {
		tm.ratio.Div(maxUint256, tm.ratio)
	}

	// Q128.128 -> Q32.32, rounding up so that GetTickAtSqrtRatio is consistent.
	tm.rem.And(tm.ratio, q96Mask)
	tm.ratio.Rsh(tm.ratio, 96)
	if !tm.rem.IsZero() {
		tm.ratio.AddUint64(tm.ratio, 1)
	}

	return tm.ratio.Uint64(), nil
}

// GetTickAtSqrtRatio calculates the greatest tick value such that GetSqrtRatioAtTick(tick) <= ratio.
// It uses a binary search over the valid tick range.
func GetTickAtSqrtRatio(sqrtPriceX32 uint64) (int32, error) {
	if sqrtPriceX32 < MIN_SQRT_RATIO || sqrtPriceX32 >= MAX_SQRT_RATIO {
		return 0, ErrSqrtPriceOutOfBounds
	}

	low := MIN_TICK
	high := MAX_TICK
	var tick int32

	for low <= high {
		mid := (low + high) / 2
		sqrtRatio, err := GetSqrtRatioAtTick(mid)
		if err != nil {
			return 0, err // Should not happen within the valid range
		}

		if sqrtRatio <= sqrtPriceX32 {
			// mid is a candidate; look for a larger one.
			tick = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	return tick, nil
}
