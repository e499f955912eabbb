// Package marketdata downloads historical candles from Binance into price
// files the backtest data loader can read.
package marketdata

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mankiwan/news-algo/internal/logger"
	"github.com/mankiwan/news-algo/pkg/errors"
)

// Interval is a Binance kline interval.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval6h  Interval = "6h"
	Interval8h  Interval = "8h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
)

var supportedIntervals = map[Interval]bool{
	Interval1m:  true,
	Interval3m:  true,
	Interval5m:  true,
	Interval15m: true,
	Interval30m: true,
	Interval1h:  true,
	Interval2h:  true,
	Interval4h:  true,
	Interval6h:  true,
	Interval8h:  true,
	Interval12h: true,
	Interval1d:  true,
}

// IsValid reports whether the interval is one Binance accepts.
func (i Interval) IsValid() bool {
	return supportedIntervals[i]
}

// DownloadParams describes one kline download request.
type DownloadParams struct {
	Symbol    string    `validate:"required"`
	Interval  Interval  `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

// OnProgress reports download progress. The current and total values are
// millisecond timestamps within the requested range.
type OnProgress func(current, total int64, message string)

// klineFetcher is the slice of the Binance API the client needs. It exists so
// pagination can be tested without the network.
type klineFetcher interface {
	Fetch(ctx context.Context, symbol string, interval Interval, startTime, endTime int64, limit int) ([]*binance.Kline, error)
}

type binanceFetcher struct {
	client *binance.Client
}

func (f *binanceFetcher) Fetch(ctx context.Context, symbol string, interval Interval, startTime, endTime int64, limit int) ([]*binance.Kline, error) {
	return f.client.NewKlinesService().
		Symbol(symbol).
		Interval(string(interval)).
		StartTime(startTime).
		EndTime(endTime).
		Limit(limit).
		Do(ctx)
}

// pageSize is the maximum number of klines Binance returns per request.
const pageSize = 1000

// Client downloads klines from Binance page by page, throttled to stay under
// the exchange's request weight limits.
type Client struct {
	fetcher  klineFetcher
	limiter  *rate.Limiter
	validate *validator.Validate
	writer   Writer
	log      *logger.Logger
}

// NewClient creates a download client writing through w. Public kline
// endpoints need no API credentials.
func NewClient(w Writer, log *logger.Logger) *Client {
	return &Client{
		fetcher:  &binanceFetcher{client: binance.NewClient("", "")},
		limiter:  rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		validate: validator.New(),
		writer:   w,
		log:      log,
	}
}

// Download fetches all klines for the requested range and writes them through
// the configured writer. It returns the path reported by the writer's
// Finalize. onProgress may be nil.
func (c *Client) Download(ctx context.Context, params DownloadParams, onProgress OnProgress) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	if !params.Interval.IsValid() {
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", params.Interval)
	}

	if err := c.writer.Initialize(); err != nil {
		return "", err
	}

	startMillis := params.StartDate.UnixMilli()
	endMillis := params.EndDate.UnixMilli()
	current := startMillis

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			c.finalizeQuietly()

			return "", errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download cancelled", err)
		}

		klines, err := c.fetcher.Fetch(ctx, params.Symbol, params.Interval, current, endMillis, pageSize)
		if err != nil {
			c.finalizeQuietly()

			return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s klines", params.Symbol)
		}

		if err := c.writePage(klines); err != nil {
			c.finalizeQuietly()

			return "", err
		}

		if onProgress != nil {
			onProgress(current-startMillis, endMillis-startMillis, "downloading "+params.Symbol+" klines")
		}

		// A short page means Binance has no more data in the range.
		if len(klines) < pageSize {
			break
		}

		// Resume just past the last candle to avoid duplicates.
		current = klines[len(klines)-1].CloseTime + 1
		if current >= endMillis {
			break
		}
	}

	path, err := c.writer.Finalize()
	if err != nil {
		return "", err
	}

	c.log.Info("market data download complete",
		zap.String("symbol", params.Symbol),
		zap.String("interval", string(params.Interval)),
		zap.String("path", path),
	)

	return path, nil
}

func (c *Client) writePage(klines []*binance.Kline) error {
	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePrice, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		bar := Bar{
			OpenTime: time.UnixMilli(k.OpenTime),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume,
		}

		if err := c.writer.WriteBar(bar); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) finalizeQuietly() {
	if _, err := c.writer.Finalize(); err != nil {
		c.log.Warn("failed to finalize writer after download error", zap.Error(err))
	}
}
