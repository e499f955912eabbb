package writer

import (
	"encoding/csv"
	"math"
	"os"
	"testing"
	"time"

	"github.com/mankiwan/news-algo/internal/logger"
	"github.com/mankiwan/news-algo/internal/types"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type WriterTestSuite struct {
	suite.Suite

	writer *ResultWriter
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

func (suite *WriterTestSuite) SetupTest() {
	w, err := NewResultWriter(suite.T().TempDir(), logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.writer = w
}

func (suite *WriterTestSuite) readCSV(path string) [][]string {
	file, err := os.Open(path)
	suite.Require().NoError(err)

	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	suite.Require().NoError(err)

	return records
}

func (suite *WriterTestSuite) TestWriteTrades() {
	trades := []types.Trade{
		{
			Timestamp:            1704067200,
			Token:                "BTCUSDT",
			PriceCurrent:         100,
			PriceWindow:          101,
			PriceThreshold:       103,
			PriceChangeWindow:    0.01,
			Position:             1,
			PriceChangeThreshold: 0.03,
			Return:               0.03,
		},
		{
			Timestamp: 1704070800,
			Token:     "BTC",
			Position:  -1,
			Return:    -0.01,
		},
	}

	path, err := suite.writer.WriteTrades(trades)
	suite.Require().NoError(err)

	records := suite.readCSV(path)
	suite.Require().Len(records, 3)
	suite.Equal("unix_timestamp", records[0][0])
	suite.Equal("1704067200", records[1][0])
	suite.Equal("BTCUSDT", records[1][1])
	suite.Equal("1", records[1][6])
	suite.Equal("-1", records[2][6])
}

func (suite *WriterTestSuite) TestWriteOptimizationResults() {
	results := []types.OptimizationResult{
		{
			Combination:    types.ParameterCombination{WindowMinutes: 1, ThresholdMinutes: 10},
			Metrics:        types.PerformanceMetrics{NumTrades: 5, TotalReturn: 0.1, ProfitFactor: math.Inf(1)},
			ObjectiveValue: 0.1,
		},
	}

	path, err := suite.writer.WriteOptimizationResults(results, types.ObjectiveTotalReturn)
	suite.Require().NoError(err)
	suite.Contains(path, "optimization_total_return.csv")

	records := suite.readCSV(path)
	suite.Require().Len(records, 2)
	suite.Equal("window_minutes", records[0][0])
	suite.Equal("1", records[1][0])
	suite.Equal("10", records[1][1])
	suite.Equal("5", records[1][2])
	suite.Equal("inf", records[1][12])
}

func (suite *WriterTestSuite) TestWriteMetricsAndSummary() {
	metricsPath, err := suite.writer.WriteMetrics(types.PerformanceMetrics{NumTrades: 2, TotalReturn: 0.05})
	suite.Require().NoError(err)

	data, err := os.ReadFile(metricsPath)
	suite.Require().NoError(err)

	var metrics types.PerformanceMetrics
	suite.Require().NoError(yaml.Unmarshal(data, &metrics))
	suite.Equal(2, metrics.NumTrades)
	suite.InDelta(0.05, metrics.TotalReturn, 1e-12)

	summaryPath, err := suite.writer.WriteSummary(RunSummary{
		Timestamp:   time.Now(),
		Asset:       types.AssetBTC,
		Combination: types.ParameterCombination{WindowMinutes: 1, ThresholdMinutes: 10},
		NumTrades:   2,
	})
	suite.Require().NoError(err)

	data, err = os.ReadFile(summaryPath)
	suite.Require().NoError(err)

	var summary RunSummary
	suite.Require().NoError(yaml.Unmarshal(data, &summary))
	suite.Equal(suite.writer.RunID(), summary.ID)
	suite.Equal(types.AssetBTC, summary.Asset)
}
