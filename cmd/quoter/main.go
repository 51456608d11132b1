package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cyclos-io/cyclos-protocol-v2/cmd/quoter/config"
	cyclos "github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos"
	calculator "github.com/cyclos-io/cyclos-protocol-v2/protocols/cyclos/calculator"
	"github.com/cyclos-io/cyclos-protocol-v2/quoter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	root := &cobra.Command{
		Use:          "quoter",
		Short:        "Quote Cyclos liquidity positions",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file path")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Value positions and quote mints and burns for one pool",
		RunE:  runReport,
	}
	reportCmd.Flags().String("output", "json", "report format (json, yaml)")
	reportCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(reportCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type mintResult struct {
	Params calculator.MintParams `json:"params" yaml:"params"`
	Quote  *calculator.MintQuote `json:"quote,omitempty" yaml:"quote,omitempty"`
	Error  string                `json:"error,omitempty" yaml:"error,omitempty"`
}

type burnResult struct {
	PositionID uint64                `json:"positionId" yaml:"positionId"`
	Liquidity  uint32                `json:"liquidity" yaml:"liquidity"`
	Quote      *calculator.BurnQuote `json:"quote,omitempty" yaml:"quote,omitempty"`
	Error      string                `json:"error,omitempty" yaml:"error,omitempty"`
}

type report struct {
	Pool      cyclos.Pool            `json:"pool" yaml:"pool"`
	SpotPrice string                 `json:"spotPrice" yaml:"spotPrice"`
	Positions []quoter.PositionValue `json:"positions" yaml:"positions"`
	Total0    uint64                 `json:"total0" yaml:"total0"`
	Total1    uint64                 `json:"total1" yaml:"total1"`
	Mints     []mintResult           `json:"mints,omitempty" yaml:"mints,omitempty"`
	Burns     []burnResult           `json:"burns,omitempty" yaml:"burns,omitempty"`
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	q, err := quoter.New(&quoter.Config{
		Registry: prometheus.DefaultRegisterer,
		Logger:   logger.With("component", "quoter"),
	})
	if err != nil {
		return err
	}

	r, err := buildReport(q, cfg)
	if err != nil {
		logger.Error("Failed to build report", "error", err)
		return err
	}
	return writeReport(cmd.OutOrStdout(), cfg.Output, r)
}

func buildReport(q *quoter.Quoter, cfg config.Config) (*report, error) {
	pool, err := cfg.Pool.ToPool()
	if err != nil {
		return nil, err
	}

	spotPrice, err := calculator.GetSpotPrice(pool.Token0, pool.Token1, cfg.Pool.Decimals0, cfg.Pool.Decimals1, pool)
	if err != nil {
		return nil, err
	}

	positions := cfg.ToPositions(pool.ID)
	values, total0, total1, err := q.ValuePortfolio(pool, positions)
	if err != nil {
		return nil, err
	}

	r := &report{
		Pool:      pool,
		SpotPrice: spotPrice.String(),
		Positions: values,
		Total0:    total0,
		Total1:    total1,
	}

	// Individual mint and burn failures are reported, not fatal.
	for _, m := range cfg.Mints {
		res := mintResult{Params: m.ToParams()}
		if quote, err := q.QuoteMint(pool, res.Params); err != nil {
			res.Error = err.Error()
		} else {
			res.Quote = &quote
		}
		r.Mints = append(r.Mints, res)
	}

	byID := make(map[uint64]cyclos.Position, len(positions))
	for _, p := range positions {
		byID[p.ID] = p
	}
	for _, b := range cfg.Burns {
		res := burnResult{PositionID: b.PositionID, Liquidity: b.Liquidity}
		position, ok := byID[b.PositionID]
		if !ok {
			res.Error = fmt.Sprintf("unknown position %d", b.PositionID)
		} else if quote, err := q.QuoteBurn(pool, position, b.Liquidity); err != nil {
			res.Error = err.Error()
		} else {
			res.Quote = &quote
		}
		r.Burns = append(r.Burns, res)
	}

	return r, nil
}

func writeReport(w io.Writer, format string, r *report) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}
