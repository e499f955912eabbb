package marketdata

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/mankiwan/news-algo/pkg/errors"
)

// Bar is one OHLCV candle.
type Bar struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Writer stores downloaded bars. Initialize is called before the first bar and
// Finalize after the last one; Finalize returns the output path.
type Writer interface {
	Initialize() error
	WriteBar(bar Bar) error
	Finalize() (string, error)
}

// CSVWriter writes bars to a CSV file in the layout the backtest price loader
// reads by default: open_time,open,high,low,close,volume with datetimes in UTC.
type CSVWriter struct {
	path string
	file *os.File
	csv  *csv.Writer
}

// NewCSVWriter creates a writer targeting the given file path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{
		path: path,
		file: nil,
		csv:  nil,
	}
}

// Initialize implements Writer.
func (w *CSVWriter) Initialize() error {
	file, err := os.Create(w.path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create %s", w.path)
	}

	w.file = file
	w.csv = csv.NewWriter(file)

	header := []string{"open_time", "open", "high", "low", "close", "volume"}
	if err := w.csv.Write(header); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write header", err)
	}

	return nil
}

// WriteBar implements Writer.
func (w *CSVWriter) WriteBar(bar Bar) error {
	record := []string{
		bar.OpenTime.UTC().Format("2006-01-02 15:04:05"),
		strconv.FormatFloat(bar.Open, 'g', -1, 64),
		strconv.FormatFloat(bar.High, 'g', -1, 64),
		strconv.FormatFloat(bar.Low, 'g', -1, 64),
		strconv.FormatFloat(bar.Close, 'g', -1, 64),
		strconv.FormatFloat(bar.Volume, 'g', -1, 64),
	}

	if err := w.csv.Write(record); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write bar", err)
	}

	return nil
}

// Finalize implements Writer.
func (w *CSVWriter) Finalize() (string, error) {
	if w.csv != nil {
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to flush bars", err)
		}
	}

	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to close %s", w.path)
		}
	}

	return w.path, nil
}
