package performance

import (
	"strings"
	"testing"

	"github.com/mankiwan/news-algo/internal/types"
	"github.com/stretchr/testify/suite"
)

type ReportTestSuite struct {
	suite.Suite
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func (suite *ReportTestSuite) TestWriteReport() {
	metrics := Compute([]float64{0.01, -0.02, 0.015})

	var sb strings.Builder
	WriteReport(&sb, metrics)

	output := sb.String()
	suite.Contains(output, "PERFORMANCE METRICS")
	suite.Contains(output, "Number of Trades: 3")
	suite.Contains(output, "Profit Factor: 1.2500")
}

func (suite *ReportTestSuite) TestWriteReportEmpty() {
	var sb strings.Builder
	WriteReport(&sb, types.PerformanceMetrics{})
	suite.Contains(sb.String(), "No performance metrics to display!")
}

func (suite *ReportTestSuite) TestWriteReportInfiniteProfitFactor() {
	metrics := Compute([]float64{0.01, 0.02})

	var sb strings.Builder
	WriteReport(&sb, metrics)
	suite.Contains(sb.String(), "Profit Factor: INF")
}

func (suite *ReportTestSuite) TestAssessProfitable() {
	assessment := Assess(types.PerformanceMetrics{
		NumTrades:   50,
		TotalReturn: 0.3,
		SharpeRatio: 1.5,
		MaxDrawdown: -0.05,
		WinRate:     0.65,
	})

	suite.True(assessment.Profitable)
	suite.Equal("Strategy appears profitable", assessment.Summary)
	suite.Len(assessment.Criteria, 4)
}

func (suite *ReportTestSuite) TestAssessNeedsImprovement() {
	assessment := Assess(types.PerformanceMetrics{
		NumTrades:   50,
		TotalReturn: -0.3,
		SharpeRatio: 0.1,
		MaxDrawdown: -0.4,
		WinRate:     0.3,
	})

	suite.False(assessment.Profitable)
	suite.Equal("Strategy needs improvement", assessment.Summary)
}

func (suite *ReportTestSuite) TestAssessNoMetrics() {
	assessment := Assess(types.PerformanceMetrics{})
	suite.False(assessment.Profitable)
	suite.Equal("No metrics available", assessment.Summary)
	suite.Empty(assessment.Criteria)
}
