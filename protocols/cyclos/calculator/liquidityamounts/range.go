package liquidityamounts

// PricePosition locates a price relative to a Range.
type PricePosition uint8

const (
	// BelowRange means the price is at or below the lower bound; only token0 is active.
	BelowRange PricePosition = iota
	// WithinRange means lower < price < upper; both tokens are active.
	WithinRange
	// AboveRange means the price is at or above the upper bound; only token1 is active.
	AboveRange
)

func (p PricePosition) String() string {
	switch p {
	case BelowRange:
		return "below"
	case WithinRange:
		return "within"
	case AboveRange:
		return "above"
	default:
		return "unknown"
	}
}

// Range is a pair of Q32 sqrt prices with Lower <= Upper.
// Construct it with NewRange so the ordering holds regardless of argument order.
type Range struct {
	Lower uint64 `json:"lower"`
	Upper uint64 `json:"upper"`
}

// NewRange orders two range boundaries so the smaller one becomes Lower.
func NewRange(sqrtRatioAX32, sqrtRatioBX32 uint64) Range {
	if sqrtRatioAX32 > sqrtRatioBX32 {
		return Range{Lower: sqrtRatioBX32, Upper: sqrtRatioAX32}
	}
	return Range{Lower: sqrtRatioAX32, Upper: sqrtRatioBX32}
}

// Width returns Upper - Lower.
func (r Range) Width() uint64 {
	return r.Upper - r.Lower
}

// IsDegenerate reports whether the range has zero width.
func (r Range) IsDegenerate() bool {
	return r.Lower == r.Upper
}

// Classify places sqrtRatioX32 relative to the range. A price exactly on a
// boundary is single-sided: Lower maps to BelowRange and Upper to AboveRange.
func (r Range) Classify(sqrtRatioX32 uint64) PricePosition {
	switch {
	case sqrtRatioX32 <= r.Lower:
		return BelowRange
	case sqrtRatioX32 < r.Upper:
		return WithinRange
	default:
		return AboveRange
	}
}
