package classifier

import (
	"strings"

	"compliance-insights-go/internal/types"
)

// Known metric names. Values for the two *_percent metrics have inverse
// polarity: higher is better, so low values escalate risk.
const (
	MetricNegativeAccum   = "negative_accum_count"
	MetricMatchRate       = "match_rate_percent"
	MetricReferralCapture = "referral_capture_rate_percent"
)

var explanations = map[string]string{
	MetricNegativeAccum:   "Ordering drugs while accumulations are negative may indicate inventory control weaknesses.",
	MetricMatchRate:       "Low match rates may indicate incomplete documentation or eligibility classification issues.",
	MetricReferralCapture: "Low referral capture may indicate operational inefficiencies or missed program opportunities.",
}

// Classify maps one metric value onto a risk tier and the threshold band
// that produced it. Boundary values belong to the lower-severity tier:
// exactly 5 is Low for negative accumulation, exactly 70 is Medium for
// match rate. Unrecognized metric names yield the Unknown sentinel rather
// than an error.
func Classify(metricName string, value float64) (types.RiskLevel, string) {
	switch metricName {
	case MetricNegativeAccum:
		switch {
		case value <= 5:
			return types.RiskLow, "0–5"
		case value <= 15:
			return types.RiskMedium, "6–15"
		default:
			return types.RiskHigh, ">15"
		}
	case MetricMatchRate:
		switch {
		case value < 70:
			return types.RiskHigh, "<70"
		case value <= 85:
			return types.RiskMedium, "70–85"
		default:
			return types.RiskLow, ">85"
		}
	case MetricReferralCapture:
		switch {
		case value < 40:
			return types.RiskHigh, "<40"
		case value <= 60:
			return types.RiskMedium, "40–60"
		default:
			return types.RiskLow, ">60"
		}
	}
	return types.RiskUnknown, "Unknown"
}

// Explain returns the fixed narrative for a metric's risk, or "" for
// unknown metrics.
func Explain(metricName string) string {
	return explanations[metricName]
}

// DisplayName converts a snake_case metric name into its report form,
// e.g. "negative_accum_count" -> "Negative Accum Count".
func DisplayName(metricName string) string {
	parts := strings.Split(metricName, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
