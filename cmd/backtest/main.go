package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/mankiwan/news-algo/internal/backtest"
	"github.com/mankiwan/news-algo/internal/datasource"
	"github.com/mankiwan/news-algo/internal/logger"
	"github.com/mankiwan/news-algo/internal/optimizer"
	"github.com/mankiwan/news-algo/internal/performance"
	"github.com/mankiwan/news-algo/internal/types"
	"github.com/mankiwan/news-algo/internal/writer"
)

// dataFlags select the input CSV files and their column names.
func dataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "price",
			Aliases:  []string{"p"},
			Usage:    "Path to the price CSV",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "news",
			Aliases:  []string{"n"},
			Usage:    "Path to the news CSV",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "time-column",
			Usage: "Price CSV column holding bar open times",
			Value: "open_time",
		},
		&cli.StringFlag{
			Name:  "price-column",
			Usage: "Price CSV column holding prices",
			Value: "close",
		},
		&cli.StringFlag{
			Name:  "news-date-column",
			Usage: "News CSV column holding the event date or datetime",
			Value: "date",
		},
		&cli.StringFlag{
			Name:  "news-time-column",
			Usage: "Optional news CSV column holding a separate time of day",
		},
		&cli.StringFlag{
			Name:  "token-column",
			Usage: "News CSV column holding the token/asset text",
			Value: "token",
		},
	}
}

// strategyFlags select the asset, tolerance and cost model.
func strategyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "asset",
			Aliases: []string{"a"},
			Usage:   "Asset whose news events are traded (btc or eth)",
			Value:   string(types.AssetBTC),
		},
		&cli.IntFlag{
			Name:  "tolerance",
			Usage: "Maximum gap in seconds for nearest-price lookups",
			Value: backtest.DefaultToleranceSeconds,
		},
		&cli.FloatFlag{
			Name:  "transaction-cost",
			Usage: "Per-trade transaction cost as a fraction",
		},
		&cli.FloatFlag{
			Name:  "slippage",
			Usage: "Per-trade slippage as a fraction",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Base directory for run outputs",
			Value:   "results",
		},
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	config := backtest.DefaultConfig()

	if configPath := cmd.String("config"); configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		config, err = backtest.ParseConfig(data)
		if err != nil {
			return err
		}
	}

	// Flags override the config file.
	if cmd.IsSet("asset") || config.Asset == "" {
		asset, err := types.ParseAsset(cmd.String("asset"))
		if err != nil {
			return err
		}

		config.Asset = asset
	}

	if cmd.IsSet("window") {
		config.WindowMinutes = cmd.Float("window")
	}

	if cmd.IsSet("threshold") {
		config.ThresholdMinutes = cmd.Float("threshold")
	}

	if cmd.IsSet("tolerance") {
		config.ToleranceSeconds = cmd.Int("tolerance")
	}

	if cmd.IsSet("transaction-cost") {
		config.Costs.TransactionCost = cmd.Float("transaction-cost")
	}

	if cmd.IsSet("slippage") {
		config.Costs.Slippage = cmd.Float("slippage")
	}

	engine, err := backtest.NewEngine(config, log)
	if err != nil {
		return err
	}

	series, events, err := loadInputs(cmd, log)
	if err != nil {
		return err
	}

	result, err := engine.Run(series, events)
	if err != nil {
		return err
	}

	fmt.Printf("Backtest %s: %d events, %d trades\n",
		config.Combination().String(), result.NumEvents, len(result.Trades))

	performance.WriteReport(os.Stdout, result.Metrics)

	assessment := performance.Assess(result.Metrics)
	for _, criterion := range assessment.Criteria {
		fmt.Println(criterion)
	}

	fmt.Println(assessment.Summary)

	return persistRun(cmd, log, config, result.Trades, result.Metrics, "")
}

func optimizeAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	asset, err := types.ParseAsset(cmd.String("asset"))
	if err != nil {
		return err
	}

	objective, err := types.ParseObjectiveMetric(cmd.String("metric"))
	if err != nil {
		return err
	}

	windows, err := parseValues(cmd.String("windows"))
	if err != nil {
		return fmt.Errorf("invalid --windows: %w", err)
	}

	thresholds, err := parseValues(cmd.String("thresholds"))
	if err != nil {
		return fmt.Errorf("invalid --thresholds: %w", err)
	}

	series, events, err := loadInputs(cmd, log)
	if err != nil {
		return err
	}

	total := len(optimizer.EnumerateCombinations(windows, thresholds))
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Evaluating combinations"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	results, err := optimizer.New(log).Run(series, events, asset, optimizer.Options{
		Windows:    windows,
		Thresholds: thresholds,
		Objective:  objective,
		Costs: types.TradingCosts{
			TransactionCost: cmd.Float("transaction-cost"),
			Slippage:        cmd.Float("slippage"),
		},
		ToleranceSeconds: cmd.Int("tolerance"),
		Parallelism:      int(cmd.Int("parallel")),
		OnProgress: func(completed, _ int) {
			_ = bar.Set(completed)
		},
	})
	if err != nil {
		return err
	}

	_ = bar.Finish()

	printRanking(os.Stdout, results, objective)

	best := results[0]
	fmt.Printf("\nBest combination: %s (%s = %s)\n",
		best.Combination.String(), objective.DisplayName(), strconv.FormatFloat(best.ObjectiveValue, 'g', 6, 64))

	performance.WriteReport(os.Stdout, best.Metrics)

	return persistOptimization(cmd, log, asset, results, objective)
}

// loadInputs reads the price and news CSVs through the DuckDB data source.
func loadInputs(cmd *cli.Command, log *logger.Logger) (types.PriceSeries, []types.NewsEvent, error) {
	db, err := datasource.NewDuckDB(log)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close() //nolint:errcheck

	series, err := db.LoadPriceSeries(cmd.String("price"), datasource.PriceQuery{
		TimeColumn:  cmd.String("time-column"),
		PriceColumn: cmd.String("price-column"),
	})
	if err != nil {
		return nil, nil, err
	}

	events, err := db.LoadNewsEvents(cmd.String("news"), datasource.NewsQuery{
		DateColumn:  cmd.String("news-date-column"),
		TimeColumn:  cmd.String("news-time-column"),
		TokenColumn: cmd.String("token-column"),
	})
	if err != nil {
		return nil, nil, err
	}

	return series, events, nil
}

func persistRun(cmd *cli.Command, log *logger.Logger, config backtest.Config, trades []types.Trade, metrics types.PerformanceMetrics, objective string) error {
	w, err := writer.NewResultWriter(cmd.String("output"), log)
	if err != nil {
		return err
	}

	if _, err := w.WriteTrades(trades); err != nil {
		return err
	}

	if _, err := w.WriteMetrics(metrics); err != nil {
		return err
	}

	if _, err := w.WriteSummary(writer.RunSummary{
		ID:          w.RunID(),
		Timestamp:   nowUTC(),
		Asset:       config.Asset,
		Combination: config.Combination(),
		NumTrades:   len(trades),
		Objective:   objective,
	}); err != nil {
		return err
	}

	fmt.Printf("Results written to %s\n", w.RunDir())

	return nil
}

func persistOptimization(cmd *cli.Command, log *logger.Logger, asset types.Asset, results []types.OptimizationResult, objective types.ObjectiveMetric) error {
	w, err := writer.NewResultWriter(cmd.String("output"), log)
	if err != nil {
		return err
	}

	if _, err := w.WriteOptimizationResults(results, objective); err != nil {
		return err
	}

	best := results[0]

	if _, err := w.WriteTrades(best.Trades); err != nil {
		return err
	}

	if _, err := w.WriteMetrics(best.Metrics); err != nil {
		return err
	}

	if _, err := w.WriteSummary(writer.RunSummary{
		ID:          w.RunID(),
		Timestamp:   nowUTC(),
		Asset:       asset,
		Combination: best.Combination,
		NumTrades:   len(best.Trades),
		Objective:   string(objective),
	}); err != nil {
		return err
	}

	fmt.Printf("Results written to %s\n", w.RunDir())

	return nil
}

// printRanking renders the top combinations as a table.
func printRanking(out *os.File, results []types.OptimizationResult, objective types.ObjectiveMetric) {
	top := results
	if len(top) > 10 {
		top = top[:10]
	}

	fmt.Fprintf(out, "\nTop %d combinations by %s:\n", len(top), objective.DisplayName())

	table := tablewriter.NewWriter(out)
	table.Header("#", "Window", "Threshold", objective.DisplayName(), "Trades", "Total Ret", "Sharpe", "Max DD", "Win Rate")

	for i, r := range top {
		table.Append(
			strconv.Itoa(i+1),
			fmt.Sprintf("%.1fm", r.Combination.WindowMinutes),
			fmt.Sprintf("%.1fm", r.Combination.ThresholdMinutes),
			formatCell(r.ObjectiveValue),
			strconv.Itoa(r.Metrics.NumTrades),
			fmt.Sprintf("%.2f%%", r.Metrics.TotalReturn*100),
			formatCell(r.Metrics.SharpeRatio),
			fmt.Sprintf("%.2f%%", r.Metrics.MaxDrawdown*100),
			fmt.Sprintf("%.1f%%", r.Metrics.WinRate*100),
		)
	}

	table.Render() //nolint:errcheck
}

func formatCell(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// parseValues parses either a comma separated list ("1,2.5,5") or an
// inclusive range "start:stop:step".
func parseValues(raw string) ([]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty value list")
	}

	if strings.Contains(raw, ":") {
		parts := strings.Split(raw, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("range must be start:stop:step, got %q", raw)
		}

		start, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad range start %q", parts[0])
		}

		stop, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad range stop %q", parts[1])
		}

		step, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil || step <= 0 {
			return nil, fmt.Errorf("bad range step %q", parts[2])
		}

		var values []float64
		for v := start; v <= stop+1e-9; v += step {
			values = append(values, v)
		}

		return values, nil
	}

	var values []float64

	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q", part)
		}

		values = append(values, v)
	}

	return values, nil
}

// newCommand assembles the CLI command tree.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "backtest",
		Usage: "News-driven trading backtests over CSV price and news data",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a single backtest for one (window, threshold) pair",
				Flags: append(append(dataFlags(), strategyFlags()...),
					&cli.FloatFlag{
						Name:    "window",
						Aliases: []string{"w"},
						Usage:   "Signal window in minutes",
						Value:   1,
					},
					&cli.FloatFlag{
						Name:    "threshold",
						Aliases: []string{"t"},
						Usage:   "Exit threshold in minutes, must exceed the window",
						Value:   10,
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Optional YAML config file; flags override it",
					},
				),
				Action: runAction,
			},
			{
				Name:  "optimize",
				Usage: "Sweep (window, threshold) combinations and rank them",
				Flags: append(append(dataFlags(), strategyFlags()...),
					&cli.StringFlag{
						Name:  "windows",
						Usage: "Candidate windows in minutes, comma list or start:stop:step",
						Value: "0.5:19.5:1",
					},
					&cli.StringFlag{
						Name:  "thresholds",
						Usage: "Candidate thresholds in minutes, comma list or start:stop:step",
						Value: "5:60:5",
					},
					&cli.StringFlag{
						Name:    "metric",
						Aliases: []string{"m"},
						Usage:   "Objective metric (total_return, sharpe_ratio, calmar_ratio, win_rate, profit_factor)",
						Value:   string(types.ObjectiveTotalReturn),
					},
					&cli.IntFlag{
						Name:  "parallel",
						Usage: "Number of combinations evaluated concurrently",
						Value: int64(runtime.NumCPU()),
					},
				),
				Action: optimizeAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
