package quoter

import (
	"errors"
	"fmt"

	cyclos "github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos"
	calculator "github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrTotalOverflow = errors.New("portfolio total overflows 64 bits")
	ErrPoolMismatch  = errors.New("position does not belong to pool")
)

// Config holds the dependencies of a Quoter.
type Config struct {
	Registry prometheus.Registerer
	Logger   Logger
}

// validate checks if the configuration is valid, ensuring required dependencies are present.
func (c *Config) validate() error {
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// Quoter wraps the position calculator with metrics and logging.
// It holds no mutable state besides its collectors and is safe for concurrent use.
type Quoter struct {
	metrics *Metrics
	logger  Logger
}

// New constructs a Quoter from a configuration, returning an error if the config is invalid.
func New(cfg *Config) (*Quoter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Quoter{
		metrics: NewMetrics(cfg.Registry),
		logger:  cfg.Logger,
	}, nil
}

// QuoteMint quotes a deposit into pool.
func (q *Quoter) QuoteMint(pool cyclos.Pool, params calculator.MintParams) (calculator.MintQuote, error) {
	timer := prometheus.NewTimer(q.metrics.duration.WithLabelValues(opQuoteMint))
	defer timer.ObserveDuration()

	quote, err := calculator.QuoteMint(pool, params)
	if err != nil {
		q.fail(opQuoteMint, err, "pool", pool.ID, "tickLower", params.TickLower, "tickUpper", params.TickUpper)
		return calculator.MintQuote{}, err
	}
	q.logger.Debug("quoted mint", "pool", pool.ID, "liquidity", quote.Liquidity, "amount0", quote.Amount0, "amount1", quote.Amount1)
	return quote, nil
}

// QuoteBurn quotes removing liquidity from position.
func (q *Quoter) QuoteBurn(pool cyclos.Pool, position cyclos.Position, liquidity uint32) (calculator.BurnQuote, error) {
	timer := prometheus.NewTimer(q.metrics.duration.WithLabelValues(opQuoteBurn))
	defer timer.ObserveDuration()

	if err := checkPool(pool, position); err != nil {
		q.fail(opQuoteBurn, err, "pool", pool.ID, "position", position.ID)
		return calculator.BurnQuote{}, err
	}
	quote, err := calculator.QuoteBurn(pool, position, liquidity)
	if err != nil {
		q.fail(opQuoteBurn, err, "pool", pool.ID, "position", position.ID)
		return calculator.BurnQuote{}, err
	}
	q.logger.Debug("quoted burn", "pool", pool.ID, "position", position.ID, "amount0", quote.Amount0, "amount1", quote.Amount1)
	return quote, nil
}

// ValuePosition returns the amounts position is worth at the pool's current price.
func (q *Quoter) ValuePosition(pool cyclos.Pool, position cyclos.Position) (PositionValue, error) {
	timer := prometheus.NewTimer(q.metrics.duration.WithLabelValues(opValuePosition))
	defer timer.ObserveDuration()

	value, err := valuePosition(pool, position)
	if err != nil {
		q.fail(opValuePosition, err, "pool", pool.ID, "position", position.ID)
		return PositionValue{}, err
	}
	return value, nil
}

// ValuePortfolio values every position in pool and sums the amounts.
func (q *Quoter) ValuePortfolio(pool cyclos.Pool, positions []cyclos.Position) (values []PositionValue, total0, total1 uint64, err error) {
	timer := prometheus.NewTimer(q.metrics.duration.WithLabelValues(opValuePortfolio))
	defer timer.ObserveDuration()

	values = make([]PositionValue, 0, len(positions))
	for _, position := range positions {
		value, err := valuePosition(pool, position)
		if err != nil {
			q.fail(opValuePortfolio, err, "pool", pool.ID, "position", position.ID)
			return nil, 0, 0, fmt.Errorf("position %d: %w", position.ID, err)
		}

		var overflow0, overflow1 bool
		total0, overflow0 = math.SafeAdd(total0, value.Amount0)
		total1, overflow1 = math.SafeAdd(total1, value.Amount1)
		if overflow0 || overflow1 {
			err := fmt.Errorf("%w: at position %d", ErrTotalOverflow, position.ID)
			q.fail(opValuePortfolio, err, "pool", pool.ID)
			return nil, 0, 0, err
		}
		values = append(values, value)
	}

	q.logger.Info("valued portfolio", "pool", pool.ID, "positions", len(values), "total0", total0, "total1", total1)
	return values, total0, total1, nil
}

func (q *Quoter) fail(op string, err error, args ...any) {
	reason := failureReason(err)
	q.metrics.failures.WithLabelValues(op, reason).Inc()
	q.logger.Warn("quote failed", append([]any{"operation", op, "reason", reason, "error", err}, args...)...)
}

func valuePosition(pool cyclos.Pool, position cyclos.Position) (PositionValue, error) {
	if err := checkPool(pool, position); err != nil {
		return PositionValue{}, err
	}
	r, err := calculator.PositionRange(position.TickLower, position.TickUpper)
	if err != nil {
		return PositionValue{}, err
	}
	amount0, amount1, err := calculator.GetPositionAmounts(pool, position)
	if err != nil {
		return PositionValue{}, err
	}
	return PositionValue{
		PositionID: position.ID,
		PoolID:     pool.ID,
		Status:     r.Classify(pool.SqrtPriceX32).String(),
		Amount0:    amount0,
		Amount1:    amount1,
	}, nil
}

// checkPool rejects positions recorded against another pool. A zero PoolID is not checked.
func checkPool(pool cyclos.Pool, position cyclos.Position) error {
	if position.PoolID != 0 && position.PoolID != pool.ID {
		return fmt.Errorf("%w: position %d is in pool %d, not %d", ErrPoolMismatch, position.ID, position.PoolID, pool.ID)
	}
	return nil
}
