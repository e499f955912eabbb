package datasource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mankiwan/news-algo/internal/logger"
	"github.com/mankiwan/news-algo/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBTestSuite struct {
	suite.Suite

	ds  *DuckDB
	dir string
}

func TestDuckDBSuite(t *testing.T) {
	suite.Run(t, new(DuckDBTestSuite))
}

func (suite *DuckDBTestSuite) SetupTest() {
	ds, err := NewDuckDB(logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.ds = ds
	suite.dir = suite.T().TempDir()
}

func (suite *DuckDBTestSuite) TearDownTest() {
	suite.NoError(suite.ds.Close())
}

func (suite *DuckDBTestSuite) writeFile(name, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *DuckDBTestSuite) TestLoadPriceSeriesFromDatetimes() {
	path := suite.writeFile("prices.csv", `open_time,open,high,low,close,volume
2024-01-01 00:01:00,100,101,99,100.5,10
2024-01-01 00:00:00,99,100,98,99.5,12
2024-01-01 00:02:00,101,102,100,101.5,8
`)

	series, err := suite.ds.LoadPriceSeries(path, DefaultPriceQuery())
	suite.Require().NoError(err)
	suite.Require().Len(series, 3)

	// Sorted ascending regardless of file order; 2024-01-01 00:00:00 UTC.
	suite.Equal(int64(1704067200), series[0].Timestamp)
	suite.Equal(99.5, series[0].Price)
	suite.Equal(int64(1704067260), series[1].Timestamp)
	suite.Equal(int64(1704067320), series[2].Timestamp)
	suite.True(series.IsSorted())
}

func (suite *DuckDBTestSuite) TestLoadPriceSeriesFromEpochSeconds() {
	path := suite.writeFile("prices.csv", `open_time,close
1704067200,99.5
1704067260,100.5
`)

	series, err := suite.ds.LoadPriceSeries(path, DefaultPriceQuery())
	suite.Require().NoError(err)
	suite.Require().Len(series, 2)
	suite.Equal(int64(1704067200), series[0].Timestamp)
	suite.Equal(99.5, series[0].Price)
}

func (suite *DuckDBTestSuite) TestLoadPriceSeriesCustomColumns() {
	path := suite.writeFile("prices.csv", `ts,mid
1704067200,42.0
`)

	series, err := suite.ds.LoadPriceSeries(path, PriceQuery{TimeColumn: "ts", PriceColumn: "mid"})
	suite.Require().NoError(err)
	suite.Require().Len(series, 1)
	suite.Equal(42.0, series[0].Price)
}

func (suite *DuckDBTestSuite) TestLoadPriceSeriesMissingFile() {
	_, err := suite.ds.LoadPriceSeries(filepath.Join(suite.dir, "absent.csv"), DefaultPriceQuery())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodePriceLoadFailed))
}

func (suite *DuckDBTestSuite) TestLoadNewsEvents() {
	path := suite.writeFile("news.csv", `date,headline,token
2024-01-01 00:00:30,Exchange listing,BTCUSDT
not-a-date,Broken row,BTC
2024-01-01 01:00:00,Upgrade shipped,ETH
`)

	events, err := suite.ds.LoadNewsEvents(path, NewsQuery{
		DateColumn:  "date",
		TokenColumn: "token",
	})
	suite.Require().NoError(err)
	suite.Require().Len(events, 3)

	suite.Equal(int64(1704067230), events[0].Timestamp.Unwrap())
	suite.Equal("BTCUSDT", events[0].Token)
	suite.Equal("Exchange listing", events[0].Fields["headline"])

	// Unparseable dates are carried through with an absent timestamp.
	suite.True(events[1].Timestamp.IsNone())
	suite.Equal("BTC", events[1].Token)

	suite.Equal("ETH", events[2].Token)
}

func (suite *DuckDBTestSuite) TestLoadNewsEventsSeparateTimeColumn() {
	path := suite.writeFile("news.csv", `date,time,token
2024-01-01,00:00:30,BTC
`)

	events, err := suite.ds.LoadNewsEvents(path, NewsQuery{
		DateColumn:  "date",
		TimeColumn:  "time",
		TokenColumn: "token",
	})
	suite.Require().NoError(err)
	suite.Require().Len(events, 1)
	suite.Equal(int64(1704067230), events[0].Timestamp.Unwrap())
}

func (suite *DuckDBTestSuite) TestLoadNewsEventsTokenColumnMissing() {
	path := suite.writeFile("news.csv", `date,headline
2024-01-01,Something
`)

	_, err := suite.ds.LoadNewsEvents(path, NewsQuery{
		DateColumn:  "date",
		TokenColumn: "token",
	})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeColumnNotFound))
}
