package backtest

import (
	"testing"

	"github.com/mankiwan/news-algo/internal/types"
	"github.com/stretchr/testify/suite"
)

type BuilderTestSuite struct {
	suite.Suite

	combination types.ParameterCombination
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderTestSuite))
}

func (suite *BuilderTestSuite) SetupTest() {
	suite.combination = types.ParameterCombination{WindowMinutes: 1, ThresholdMinutes: 10}
}

func (suite *BuilderTestSuite) TestLongTrade() {
	series := types.PriceSeries{
		{Timestamp: 0, Price: 100},
		{Timestamp: 60, Price: 101},
		{Timestamp: 600, Price: 103},
	}
	events := []types.NewsEvent{event(0, "btc listing")}

	trades := BuildTrades(series, events, suite.combination, types.TradingCosts{}, DefaultToleranceSeconds)
	suite.Require().Len(trades, 1)

	trade := trades[0]
	suite.Equal(int64(0), trade.Timestamp)
	suite.Equal("BTC LISTING", trade.Token)
	suite.Equal(100.0, trade.PriceCurrent)
	suite.Equal(101.0, trade.PriceWindow)
	suite.Equal(103.0, trade.PriceThreshold)
	suite.InDelta(0.01, trade.PriceChangeWindow, 1e-12)
	suite.Equal(1, trade.Position)
	suite.InDelta(0.03, trade.PriceChangeThreshold, 1e-12)
	suite.InDelta(0.03, trade.Return, 1e-12)
}

func (suite *BuilderTestSuite) TestShortTrade() {
	series := types.PriceSeries{
		{Timestamp: 0, Price: 100},
		{Timestamp: 60, Price: 99},
		{Timestamp: 600, Price: 95},
	}
	events := []types.NewsEvent{event(0, "BTC")}

	trades := BuildTrades(series, events, suite.combination, types.TradingCosts{}, DefaultToleranceSeconds)
	suite.Require().Len(trades, 1)

	trade := trades[0]
	suite.Equal(-1, trade.Position)
	suite.InDelta(-0.05, trade.PriceChangeThreshold, 1e-12)
	suite.InDelta(0.05, trade.Return, 1e-12)
}

func (suite *BuilderTestSuite) TestZeroWindowChangeOpensShort() {
	series := types.PriceSeries{
		{Timestamp: 0, Price: 100},
		{Timestamp: 60, Price: 100},
		{Timestamp: 600, Price: 102},
	}
	events := []types.NewsEvent{event(0, "BTC")}

	trades := BuildTrades(series, events, suite.combination, types.TradingCosts{}, DefaultToleranceSeconds)
	suite.Require().Len(trades, 1)
	suite.Equal(-1, trades[0].Position)
	suite.InDelta(-0.02, trades[0].Return, 1e-12)
}

func (suite *BuilderTestSuite) TestCostAdjustment() {
	series := types.PriceSeries{
		{Timestamp: 0, Price: 100},
		{Timestamp: 60, Price: 101},
		{Timestamp: 600, Price: 103},
	}
	events := []types.NewsEvent{event(0, "BTC")}
	costs := types.TradingCosts{TransactionCost: 0.001, Slippage: 0}

	gross := BuildTrades(series, events, suite.combination, types.TradingCosts{}, DefaultToleranceSeconds)
	net := BuildTrades(series, events, suite.combination, costs, DefaultToleranceSeconds)
	suite.Require().Len(gross, 1)
	suite.Require().Len(net, 1)

	// 2 * (0.001 + 0) * |position| = 0.002 deducted from the gross return.
	suite.InDelta(gross[0].Return-0.002, net[0].Return, 1e-12)
}

func (suite *BuilderTestSuite) TestMissingPriceDropsEvent() {
	// No observation near the 10 minute exit for the second event.
	series := types.PriceSeries{
		{Timestamp: 0, Price: 100},
		{Timestamp: 60, Price: 101},
		{Timestamp: 600, Price: 103},
		{Timestamp: 5000, Price: 104},
		{Timestamp: 5060, Price: 105},
	}
	events := []types.NewsEvent{
		event(0, "BTC kept"),
		event(5000, "BTC dropped"),
	}

	trades := BuildTrades(series, events, suite.combination, types.TradingCosts{}, DefaultToleranceSeconds)
	suite.Require().Len(trades, 1)
	suite.Equal("BTC KEPT", trades[0].Token)
}

func (suite *BuilderTestSuite) TestZeroBasePriceDropsEvent() {
	series := types.PriceSeries{
		{Timestamp: 0, Price: 0},
		{Timestamp: 60, Price: 101},
		{Timestamp: 600, Price: 103},
	}
	events := []types.NewsEvent{event(0, "BTC")}

	trades := BuildTrades(series, events, suite.combination, types.TradingCosts{}, DefaultToleranceSeconds)
	suite.Empty(trades)
}

func (suite *BuilderTestSuite) TestEmptyEvents() {
	series := types.PriceSeries{{Timestamp: 0, Price: 100}}
	suite.Empty(BuildTrades(series, nil, suite.combination, types.TradingCosts{}, DefaultToleranceSeconds))
}

func (suite *BuilderTestSuite) TestDeterministic() {
	series := types.PriceSeries{
		{Timestamp: 0, Price: 100},
		{Timestamp: 60, Price: 101},
		{Timestamp: 120, Price: 99},
		{Timestamp: 600, Price: 103},
		{Timestamp: 660, Price: 98},
	}
	events := []types.NewsEvent{
		event(0, "BTC"),
		event(60, "BTC"),
	}

	first := BuildTrades(series, events, suite.combination, types.TradingCosts{}, DefaultToleranceSeconds)
	second := BuildTrades(series, events, suite.combination, types.TradingCosts{}, DefaultToleranceSeconds)
	suite.Equal(first, second)
}

func (suite *BuilderTestSuite) TestReturns() {
	trades := []types.Trade{
		{Return: 0.01},
		{Return: -0.02},
	}
	suite.Equal([]float64{0.01, -0.02}, Returns(trades))
}
