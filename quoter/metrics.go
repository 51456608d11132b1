package quoter

import (
	"errors"

	cyclos "github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos"
	calculator "github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator"
	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/liquidityamounts"
	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/liquiditymath"
	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/sqrtpricemath"
	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/tickmath"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opQuoteMint      = "quote_mint"
	opQuoteBurn      = "quote_burn"
	opValuePosition  = "value_position"
	opValuePortfolio = "value_portfolio"
)

// Metrics holds the quoter's Prometheus collectors.
type Metrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewMetrics creates the quoter collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cyclos",
			Subsystem: "quoter",
			Name:      "duration_seconds",
			Help:      "Time spent computing a quote.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyclos",
			Subsystem: "quoter",
			Name:      "failures_total",
			Help:      "Quotes that returned an error, by reason.",
		}, []string{"operation", "reason"}),
	}
	reg.MustRegister(m.duration, m.failures)
	return m
}

// failureReason maps an error to a low-cardinality label value.
func failureReason(err error) string {
	switch {
	case errors.Is(err, liquidityamounts.ErrArithmeticOverflow),
		errors.Is(err, liquiditymath.ErrLiquidityOverflow),
		errors.Is(err, liquiditymath.ErrLiquidityUnderflow),
		errors.Is(err, sqrtpricemath.ErrLiquidityOutOfBounds),
		errors.Is(err, ErrTotalOverflow):
		return "overflow"
	case errors.Is(err, liquidityamounts.ErrRangeDegenerate):
		return "degenerate_range"
	case errors.Is(err, liquidityamounts.ErrInvalidInput),
		errors.Is(err, sqrtpricemath.ErrSqrtPriceZero):
		return "invalid_input"
	case errors.Is(err, calculator.ErrZeroLiquidity):
		return "zero_liquidity"
	case errors.Is(err, calculator.ErrSlippageCheck):
		return "slippage"
	case errors.Is(err, cyclos.ErrInvalidTickRange),
		errors.Is(err, tickmath.ErrTickOutOfBounds):
		return "tick_range"
	default:
		return "other"
	}
}
