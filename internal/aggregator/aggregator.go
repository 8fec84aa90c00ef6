package aggregator

import (
	"compliance-insights-go/internal/classifier"
	"compliance-insights-go/internal/types"
)

// Aggregate classifies every metric of every customer and builds the
// per-customer rollups. It is a pure fold over the input: iteration
// follows input order, so the same metrics always produce identical
// output sequences. No external services are consulted.
func Aggregate(customers []types.CustomerMetrics) ([]types.RiskEvaluation, []types.CustomerRiskReport) {
	var evaluations []types.RiskEvaluation
	var reports []types.CustomerRiskReport

	for _, c := range customers {
		report := types.CustomerRiskReport{CustomerID: c.CustomerID}
		for _, m := range c.Metrics {
			level, band := classifier.Classify(m.Name, m.Value)
			eval := types.RiskEvaluation{
				MetricName:     classifier.DisplayName(m.Name),
				CustomerID:     c.CustomerID,
				Value:          m.Value,
				RiskLevel:      level,
				ThresholdRange: band,
				Explanation:    classifier.Explain(m.Name),
			}
			evaluations = append(evaluations, eval)
			report.Risks = append(report.Risks, eval)
			switch level {
			case types.RiskHigh:
				report.HighRiskCount++
			case types.RiskMedium:
				report.MediumRiskCount++
			case types.RiskLow:
				report.LowRiskCount++
			}
		}
		reports = append(reports, report)
	}
	return evaluations, reports
}
