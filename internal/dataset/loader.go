package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"compliance-insights-go/internal/classifier"
	"compliance-insights-go/internal/logger"
	"compliance-insights-go/internal/types"
)

// Load reads customer metrics from a local workbook. The metric source of
// record is the knowledge-base gateway; this loader serves offline runs
// against the same spreadsheets that back it. Columns are detected by
// header heuristics; rows with missing or non-numeric cells are skipped.
func Load(path string) ([]types.CustomerMetrics, error) {
	log := logger.New().WithField("component", "dataset.loader").WithField("path", path)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	customerIdx := -1
	negAccumIdx := -1
	matchRateIdx := -1
	referralIdx := -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "customer") || strings.Contains(l, "entity"):
			if customerIdx == -1 {
				customerIdx = i
			}
		case strings.Contains(l, "negative") || strings.Contains(l, "accum"):
			if negAccumIdx == -1 {
				negAccumIdx = i
			}
		case strings.Contains(l, "match"):
			if matchRateIdx == -1 {
				matchRateIdx = i
			}
		case strings.Contains(l, "referral") || strings.Contains(l, "capture"):
			if referralIdx == -1 {
				referralIdx = i
			}
		}
	}
	// fallback heuristics: positional layout customer_id + 3 metrics
	if customerIdx == -1 {
		customerIdx = 0
	}
	if negAccumIdx == -1 && len(header) > 1 {
		negAccumIdx = 1
	}
	if matchRateIdx == -1 && len(header) > 2 {
		matchRateIdx = 2
	}
	if referralIdx == -1 && len(header) > 3 {
		referralIdx = 3
	}

	metricIdx := []struct {
		name string
		col  int
	}{
		{classifier.MetricNegativeAccum, negAccumIdx},
		{classifier.MetricMatchRate, matchRateIdx},
		{classifier.MetricReferralCapture, referralIdx},
	}

	var out []types.CustomerMetrics
	for i, r := range rows {
		if i == 0 {
			continue
		}
		if customerIdx >= len(r) {
			continue
		}
		customerID := strings.TrimSpace(r[customerIdx])
		if customerID == "" {
			continue
		}
		cm := types.CustomerMetrics{CustomerID: customerID}
		ok := true
		for _, m := range metricIdx {
			if m.col < 0 || m.col >= len(r) {
				ok = false
				break
			}
			v, err := strconv.Atoi(strings.TrimSpace(r[m.col]))
			if err != nil {
				ok = false
				break
			}
			cm.Metrics = append(cm.Metrics, types.Metric{Name: m.name, Value: float64(v)})
		}
		if !ok {
			log.WithField("row", i+1).Warn("skipping row with missing or non-numeric metric cells")
			continue
		}
		out = append(out, cm)
	}
	log.WithField("customers", len(out)).Info("workbook metrics loaded")
	return out, nil
}
