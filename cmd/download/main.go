package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/mankiwan/news-algo/internal/logger"
	"github.com/mankiwan/news-algo/pkg/marketdata"
)

// downloadAction fetches historical klines from Binance and writes them to a
// CSV file the backtest command can read with its default price columns.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	symbol := cmd.String("symbol")
	interval := marketdata.Interval(cmd.String("interval"))
	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")
	outDir := cmd.String("output")

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	outPath := filepath.Join(outDir, fmt.Sprintf("%s_%s_%s_%s.csv",
		symbol, interval, startDate.Format("20060102"), endDate.Format("20060102")))

	client := marketdata.NewClient(marketdata.NewCSVWriter(outPath), log)

	bar := progressbar.NewOptions64(endDate.UnixMilli()-startDate.UnixMilli(),
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s %s klines", symbol, interval)),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	path, err := client.Download(ctx, marketdata.DownloadParams{
		Symbol:    symbol,
		Interval:  interval,
		StartDate: startDate,
		EndDate:   endDate,
	}, func(current, total int64, _ string) {
		_ = bar.Set64(current)
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	_ = bar.Finish()
	fmt.Printf("Saved %s klines to %s\n", symbol, path)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical candles from Binance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Trading pair symbol (e.g. BTCUSDT)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "interval",
				Aliases:  []string{"i"},
				Usage:    "Kline interval (e.g. 1m, 5m, 1h, 1d)",
				Value:    string(marketdata.Interval1m),
				Required: false,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: false,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Output directory for the price CSV",
				Value:    "data",
				Required: false,
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
