package report

import (
	"fmt"
	"strings"
	"time"

	"compliance-insights-go/internal/summarizer"
	"compliance-insights-go/internal/types"
)

// RegulatoryAppendixCap bounds the regulatory-context appendix embedded
// in the report body (larger than the prompt cap).
const RegulatoryAppendixCap = 1000

var (
	banner  = strings.Repeat("=", 80)
	divider = strings.Repeat("-", 80)
)

// Synthesize renders the final report text. Section order is fixed:
// title banner, executive summary, per-customer risk analysis,
// regulatory-context appendix, generation timestamp. The summary argument
// may be a narrative or a descriptive error string; either way the report
// is produced in full.
func Synthesize(reports []types.CustomerRiskReport, summary, regulatory string, now time.Time) string {
	lines := []string{
		banner,
		"340B PROGRAM COMPLIANCE RISK DETECTION REPORT",
		banner,
		"",
		"EXECUTIVE SUMMARY",
		divider,
		summary,
		"",
		"CUSTOMER RISK ANALYSIS",
		divider,
	}

	for _, r := range reports {
		lines = append(lines,
			fmt.Sprintf("\nCustomer: %s", r.CustomerID),
			fmt.Sprintf("  High Risk Issues: %d", r.HighRiskCount),
			fmt.Sprintf("  Medium Risk Issues: %d", r.MediumRiskCount),
			fmt.Sprintf("  Low Risk Issues: %d", r.LowRiskCount),
		)
		for _, risk := range r.Risks {
			lines = append(lines,
				fmt.Sprintf("\n  • %s", risk.MetricName),
				fmt.Sprintf("    Value: %g", risk.Value),
				fmt.Sprintf("    Risk Level: %s", risk.RiskLevel),
				fmt.Sprintf("    Threshold: %s", risk.ThresholdRange),
				fmt.Sprintf("    Description: %s", risk.Explanation),
			)
		}
	}

	lines = append(lines,
		"",
		banner,
		"REGULATORY CONTEXT",
		banner,
		summarizer.Truncate(regulatory, RegulatoryAppendixCap),
		"",
		fmt.Sprintf("Report Generated: %s", now.UTC().Format(time.RFC1123)),
		banner,
	)

	return strings.Join(lines, "\n")
}
