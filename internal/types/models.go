package types

// RiskLevel is the classification outcome for one metric value.
type RiskLevel string

const (
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
	RiskUnknown RiskLevel = "Unknown"
)

// Metric is one named compliance observation for a customer.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// CustomerMetrics holds one customer's metrics in parse order, so that
// aggregation and report output stay reproducible across runs.
type CustomerMetrics struct {
	CustomerID string   `json:"customer_id"`
	Metrics    []Metric `json:"metrics"`
}

// RiskEvaluation is the classification of a single (customer, metric) pair.
// Never mutated after the aggregator creates it.
type RiskEvaluation struct {
	MetricName     string    `json:"metric_name"`
	CustomerID     string    `json:"customer_id"`
	Value          float64   `json:"value"`
	RiskLevel      RiskLevel `json:"risk_level"`
	ThresholdRange string    `json:"threshold_range"`
	Explanation    string    `json:"explanation"`
}

// CustomerRiskReport rolls up all evaluations for one customer.
// Counts always tally the contained evaluations by level.
type CustomerRiskReport struct {
	CustomerID      string           `json:"customer_id"`
	Risks           []RiskEvaluation `json:"risks"`
	HighRiskCount   int              `json:"high_risk_count"`
	MediumRiskCount int              `json:"medium_risk_count"`
	LowRiskCount    int              `json:"low_risk_count"`
}
