package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"compliance-insights-go/internal/classifier"
	"compliance-insights-go/internal/types"
)

func sampleMetrics() []types.CustomerMetrics {
	return []types.CustomerMetrics{
		{
			CustomerID: "C1",
			Metrics: []types.Metric{
				{Name: classifier.MetricNegativeAccum, Value: 3},
				{Name: classifier.MetricMatchRate, Value: 90},
				{Name: classifier.MetricReferralCapture, Value: 55},
			},
		},
		{
			CustomerID: "C2",
			Metrics: []types.Metric{
				{Name: classifier.MetricNegativeAccum, Value: 20},
				{Name: classifier.MetricMatchRate, Value: 60},
				{Name: classifier.MetricReferralCapture, Value: 30},
			},
		},
	}
}

func TestAggregateRollupScenario(t *testing.T) {
	evals, reports := Aggregate(sampleMetrics()[:1])
	require.Len(t, evals, 3)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, "C1", r.CustomerID)
	assert.Equal(t, 2, r.LowRiskCount)
	assert.Equal(t, 1, r.MediumRiskCount)
	assert.Equal(t, 0, r.HighRiskCount)
	assert.Len(t, r.Risks, 3)
}

func TestAggregateCountsMatchEvaluations(t *testing.T) {
	_, reports := Aggregate(sampleMetrics())
	for _, r := range reports {
		high, medium, low := 0, 0, 0
		for _, e := range r.Risks {
			switch e.RiskLevel {
			case types.RiskHigh:
				high++
			case types.RiskMedium:
				medium++
			case types.RiskLow:
				low++
			}
		}
		assert.Equal(t, high, r.HighRiskCount, r.CustomerID)
		assert.Equal(t, medium, r.MediumRiskCount, r.CustomerID)
		assert.Equal(t, low, r.LowRiskCount, r.CustomerID)
		assert.Equal(t, len(r.Risks), high+medium+low, r.CustomerID)
	}
}

func TestAggregateAllHighRisk(t *testing.T) {
	_, reports := Aggregate(sampleMetrics()[1:])
	require.Len(t, reports, 1)
	assert.Equal(t, 3, reports[0].HighRiskCount)
	assert.Equal(t, 0, reports[0].MediumRiskCount)
	assert.Equal(t, 0, reports[0].LowRiskCount)
}

func TestAggregateIsIdempotent(t *testing.T) {
	in := sampleMetrics()
	evals1, reports1 := Aggregate(in)
	evals2, reports2 := Aggregate(in)
	assert.Equal(t, evals1, evals2)
	assert.Equal(t, reports1, reports2)
}

func TestAggregatePreservesInputOrder(t *testing.T) {
	evals, reports := Aggregate(sampleMetrics())
	require.Len(t, reports, 2)
	assert.Equal(t, "C1", reports[0].CustomerID)
	assert.Equal(t, "C2", reports[1].CustomerID)

	require.Len(t, evals, 6)
	assert.Equal(t, "Negative Accum Count", evals[0].MetricName)
	assert.Equal(t, "Match Rate Percent", evals[1].MetricName)
	assert.Equal(t, "Referral Capture Rate Percent", evals[2].MetricName)
	assert.Equal(t, "C2", evals[3].CustomerID)
}

func TestAggregateUnknownMetricSentinel(t *testing.T) {
	in := []types.CustomerMetrics{{
		CustomerID: "C9",
		Metrics:    []types.Metric{{Name: "days_since_audit", Value: 12}},
	}}
	evals, reports := Aggregate(in)
	require.Len(t, evals, 1)
	assert.Equal(t, types.RiskUnknown, evals[0].RiskLevel)
	assert.Equal(t, "Unknown", evals[0].ThresholdRange)
	// unknown tiers do not count toward any rollup bucket
	r := reports[0]
	assert.Equal(t, 0, r.HighRiskCount+r.MediumRiskCount+r.LowRiskCount)
	assert.Len(t, r.Risks, 1)
}

func TestAggregateEmptyInput(t *testing.T) {
	evals, reports := Aggregate(nil)
	assert.Empty(t, evals)
	assert.Empty(t, reports)
}
