package quoter

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// PositionValue is a position's token amounts at the pool's current price.
type PositionValue struct {
	PositionID uint64 `json:"positionId" yaml:"positionId"`
	PoolID     uint64 `json:"poolId" yaml:"poolId"`
	// Status is "below", "within" or "above" the position's range.
	Status  string `json:"status" yaml:"status"`
	Amount0 uint64 `json:"amount0" yaml:"amount0"`
	Amount1 uint64 `json:"amount1" yaml:"amount1"`
}
