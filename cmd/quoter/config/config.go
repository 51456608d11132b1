package config

import (
	"errors"
	"fmt"
	"strings"

	cyclos "github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos"
	calculator "github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator"
	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/liquidityamounts"
	"github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator/tickmath"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrNoPrice = errors.New("pool needs either sqrt-price-x32 or both reserves")

// PoolConfig describes the pool to quote against. The price is taken from
// SqrtPriceX32 when set, otherwise it is encoded from Reserve1/Reserve0.
type PoolConfig struct {
	ID           uint64 `mapstructure:"id"`
	Token0       uint64 `mapstructure:"token0"`
	Token1       uint64 `mapstructure:"token1"`
	Decimals0    uint8  `mapstructure:"decimals0"`
	Decimals1    uint8  `mapstructure:"decimals1"`
	Fee          uint32 `mapstructure:"fee"`
	TickSpacing  uint16 `mapstructure:"tick-spacing"`
	Liquidity    uint32 `mapstructure:"liquidity"`
	SqrtPriceX32 uint64 `mapstructure:"sqrt-price-x32"`
	Reserve0     uint64 `mapstructure:"reserve0"`
	Reserve1     uint64 `mapstructure:"reserve1"`
}

type PositionConfig struct {
	ID        uint64 `mapstructure:"id"`
	TickLower int32  `mapstructure:"tick-lower"`
	TickUpper int32  `mapstructure:"tick-upper"`
	Liquidity uint32 `mapstructure:"liquidity"`
}

type MintConfig struct {
	TickLower      int32  `mapstructure:"tick-lower"`
	TickUpper      int32  `mapstructure:"tick-upper"`
	Amount0Desired uint64 `mapstructure:"amount0-desired"`
	Amount1Desired uint64 `mapstructure:"amount1-desired"`
	Amount0Min     uint64 `mapstructure:"amount0-min"`
	Amount1Min     uint64 `mapstructure:"amount1-min"`
}

type BurnConfig struct {
	PositionID uint64 `mapstructure:"position-id"`
	Liquidity  uint32 `mapstructure:"liquidity"`
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	LogLevel  string           `mapstructure:"log-level"`
	Output    string           `mapstructure:"output"`
	Pool      PoolConfig       `mapstructure:"pool"`
	Positions []PositionConfig `mapstructure:"positions"`
	Mints     []MintConfig     `mapstructure:"mints"`
	Burns     []BurnConfig     `mapstructure:"burns"`
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("QUOTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("output", "json")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("quoter")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Output {
	case "json", "yaml":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output)
	}
	if c.Pool.Token0 == c.Pool.Token1 {
		return fmt.Errorf("config: pool tokens must differ, both are %d", c.Pool.Token0)
	}
	return nil
}

// ToPool resolves the configured price and tick into a pool value.
func (c PoolConfig) ToPool() (cyclos.Pool, error) {
	sqrtPriceX32 := c.SqrtPriceX32
	if sqrtPriceX32 == 0 {
		if c.Reserve0 == 0 || c.Reserve1 == 0 {
			return cyclos.Pool{}, ErrNoPrice
		}
		var err error
		sqrtPriceX32, err = liquidityamounts.SqrtPriceFromReserves(c.Reserve1, c.Reserve0)
		if err != nil {
			return cyclos.Pool{}, fmt.Errorf("encode pool price: %w", err)
		}
	}

	tick, err := tickmath.GetTickAtSqrtRatio(sqrtPriceX32)
	if err != nil {
		return cyclos.Pool{}, fmt.Errorf("pool price %d: %w", sqrtPriceX32, err)
	}

	return cyclos.Pool{
		ID:           c.ID,
		Token0:       c.Token0,
		Token1:       c.Token1,
		Fee:          c.Fee,
		TickSpacing:  c.TickSpacing,
		Tick:         tick,
		Liquidity:    c.Liquidity,
		SqrtPriceX32: sqrtPriceX32,
	}, nil
}

// ToPositions returns the configured positions, all belonging to poolID.
func (c Config) ToPositions(poolID uint64) []cyclos.Position {
	positions := make([]cyclos.Position, 0, len(c.Positions))
	for _, p := range c.Positions {
		positions = append(positions, cyclos.Position{
			ID:        p.ID,
			PoolID:    poolID,
			TickLower: p.TickLower,
			TickUpper: p.TickUpper,
			Liquidity: p.Liquidity,
		})
	}
	return positions
}

func (m MintConfig) ToParams() calculator.MintParams {
	return calculator.MintParams{
		TickLower:      m.TickLower,
		TickUpper:      m.TickUpper,
		Amount0Desired: m.Amount0Desired,
		Amount1Desired: m.Amount1Desired,
		Amount0Min:     m.Amount0Min,
		Amount1Min:     m.Amount1Min,
	}
}
