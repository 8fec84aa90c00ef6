package metrics

import (
	"strconv"
	"strings"

	"compliance-insights-go/internal/classifier"
	"compliance-insights-go/internal/logger"
	"compliance-insights-go/internal/types"
)

const headerToken = "customer_id"

// metricOrder is the positional order of the numeric fields in each CSV
// record, and the order metrics are reported per customer.
var metricOrder = []string{
	classifier.MetricNegativeAccum,
	classifier.MetricMatchRate,
	classifier.MetricReferralCapture,
}

// ParseCSV turns a delimited-text reply from the knowledge base into
// per-customer metrics. The reply is often wrapped in a markdown fence;
// the first fenced region is used when present. Malformed lines are
// skipped and logged, never abort the parse. Empty input and fully
// malformed input both yield an empty result.
func ParseCSV(raw string) []types.CustomerMetrics {
	log := logger.New().WithField("component", "metrics.parser")

	content := stripFence(raw)

	var out []types.CustomerMetrics
	index := map[string]int{}

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if strings.TrimSpace(fields[0]) == headerToken {
			continue
		}
		if len(fields) < 4 {
			log.WithField("line", line).Warn("skipping invalid metric line: too few fields")
			continue
		}
		customerID := strings.TrimSpace(fields[0])
		values := make([]float64, 0, len(metricOrder))
		ok := true
		for i := range metricOrder {
			v, err := strconv.Atoi(strings.TrimSpace(fields[i+1]))
			if err != nil {
				log.WithField("line", line).Warn("skipping invalid metric line: non-integer value")
				ok = false
				break
			}
			values = append(values, float64(v))
		}
		if !ok {
			continue
		}
		cm := types.CustomerMetrics{CustomerID: customerID}
		for i, name := range metricOrder {
			cm.Metrics = append(cm.Metrics, types.Metric{Name: name, Value: values[i]})
		}
		// duplicate customer ids: last record wins, position kept
		if at, seen := index[customerID]; seen {
			out[at] = cm
			continue
		}
		index[customerID] = len(out)
		out = append(out, cm)
	}
	return out
}

// stripFence returns the content of the first markdown code fence, or the
// whole input when no fence is present.
func stripFence(s string) string {
	if i := strings.Index(s, "```csv"); i >= 0 {
		rest := s[i+len("```csv"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return rest[:j]
		}
		return rest
	}
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+len("```"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return rest[:j]
		}
		return rest
	}
	return s
}
