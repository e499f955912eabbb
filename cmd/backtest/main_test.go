package main

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v3"

	"github.com/mankiwan/news-algo/internal/backtest"
)

type CommandTestSuite struct {
	suite.Suite
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}

// subcommand finds a subcommand by name and swaps its action for a capture
// function, so flag parsing can be exercised without touching data files.
func (suite *CommandTestSuite) subcommand(root *cli.Command, name string, action cli.ActionFunc) *cli.Command {
	for _, sub := range root.Commands {
		if sub.Name == name {
			sub.Action = action

			return sub
		}
	}

	suite.Require().FailNow("subcommand not found", name)

	return nil
}

func (suite *CommandTestSuite) TestRunFlagParsing() {
	root := newCommand()

	var (
		window    float64
		threshold float64
		tolerance int64
		cost      float64
		slippage  float64
		asset     string
	)

	suite.subcommand(root, "run", func(_ context.Context, cmd *cli.Command) error {
		window = cmd.Float("window")
		threshold = cmd.Float("threshold")
		tolerance = cmd.Int("tolerance")
		cost = cmd.Float("transaction-cost")
		slippage = cmd.Float("slippage")
		asset = cmd.String("asset")

		return nil
	})

	err := root.Run(context.Background(), []string{
		"backtest", "run",
		"--price", "prices.csv",
		"--news", "news.csv",
		"--window", "2.5",
		"--threshold", "15",
		"--tolerance", "90",
		"--transaction-cost", "0.001",
		"--slippage", "0.0005",
	})
	suite.Require().NoError(err)

	suite.InDelta(2.5, window, 1e-12)
	suite.InDelta(15.0, threshold, 1e-12)
	suite.Equal(int64(90), tolerance)
	suite.InDelta(0.001, cost, 1e-12)
	suite.InDelta(0.0005, slippage, 1e-12)
	suite.Equal("BTC", asset)
}

func (suite *CommandTestSuite) TestRunFlagDefaults() {
	root := newCommand()

	var (
		window    float64
		threshold float64
		tolerance int64
	)

	suite.subcommand(root, "run", func(_ context.Context, cmd *cli.Command) error {
		window = cmd.Float("window")
		threshold = cmd.Float("threshold")
		tolerance = cmd.Int("tolerance")

		return nil
	})

	err := root.Run(context.Background(), []string{
		"backtest", "run", "--price", "prices.csv", "--news", "news.csv",
	})
	suite.Require().NoError(err)

	suite.InDelta(1.0, window, 1e-12)
	suite.InDelta(10.0, threshold, 1e-12)
	suite.Equal(backtest.DefaultToleranceSeconds, tolerance)
}

func (suite *CommandTestSuite) TestOptimizeFlagParsing() {
	root := newCommand()

	var (
		parallel   int64
		tolerance  int64
		cost       float64
		windows    string
		thresholds string
		metric     string
	)

	suite.subcommand(root, "optimize", func(_ context.Context, cmd *cli.Command) error {
		parallel = cmd.Int("parallel")
		tolerance = cmd.Int("tolerance")
		cost = cmd.Float("transaction-cost")
		windows = cmd.String("windows")
		thresholds = cmd.String("thresholds")
		metric = cmd.String("metric")

		return nil
	})

	err := root.Run(context.Background(), []string{
		"backtest", "optimize",
		"--price", "prices.csv",
		"--news", "news.csv",
		"--parallel", "4",
		"--tolerance", "60",
		"--transaction-cost", "0.002",
		"--windows", "1,2,3",
		"--metric", "sharpe_ratio",
	})
	suite.Require().NoError(err)

	suite.Equal(int64(4), parallel)
	suite.Equal(int64(60), tolerance)
	suite.InDelta(0.002, cost, 1e-12)
	suite.Equal("1,2,3", windows)
	suite.Equal("5:60:5", thresholds)
	suite.Equal("sharpe_ratio", metric)
}

func (suite *CommandTestSuite) TestOptimizeParallelDefault() {
	root := newCommand()

	var parallel int64

	suite.subcommand(root, "optimize", func(_ context.Context, cmd *cli.Command) error {
		parallel = cmd.Int("parallel")

		return nil
	})

	err := root.Run(context.Background(), []string{
		"backtest", "optimize", "--price", "prices.csv", "--news", "news.csv",
	})
	suite.Require().NoError(err)

	suite.Equal(int64(runtime.NumCPU()), parallel)
}

func (suite *CommandTestSuite) TestParseValues() {
	tests := []struct {
		name     string
		raw      string
		expected []float64
		wantErr  bool
	}{
		{name: "comma list", raw: "1, 2.5, 5", expected: []float64{1, 2.5, 5}},
		{name: "inclusive range", raw: "5:15:5", expected: []float64{5, 10, 15}},
		{name: "fractional range", raw: "0.5:2.5:1", expected: []float64{0.5, 1.5, 2.5}},
		{name: "empty", raw: "", wantErr: true},
		{name: "bad step", raw: "1:10:0", wantErr: true},
		{name: "bad number", raw: "1,foo", wantErr: true},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			values, err := parseValues(tt.raw)
			if tt.wantErr {
				suite.Error(err)

				return
			}

			suite.Require().NoError(err)
			suite.Require().Len(values, len(tt.expected))

			for i, expected := range tt.expected {
				suite.InDelta(expected, values[i], 1e-9)
			}
		})
	}
}
