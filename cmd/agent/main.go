package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"compliance-insights-go/internal/logger"
	"compliance-insights-go/internal/pipeline"
	"compliance-insights-go/internal/retrieval"
	"compliance-insights-go/internal/search"
	"compliance-insights-go/internal/summarizer"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "compliance-insights-go").Info("starting compliance risk detection run")

	p := pipeline.New(
		retrieval.NewGatewayClient(),
		search.NewFallbackSearcher(),
		summarizer.NewGatewayClient(),
		pipeline.WithDatasetPath(os.Getenv("METRICS_DATASET_PATH")),
	)

	st := p.Run(context.Background())
	runLog := log.WithRun(st.RunID)
	runLog.WithField("customers", len(st.CustomerReports)).Info("pipeline complete")

	outPath := envOr("REPORT_OUTPUT_PATH", "compliance_output/risk_report.txt")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		runLog.WithError(err).Fatal("failed to create output directory")
	}
	if err := os.WriteFile(outPath, []byte(st.FinalReport), 0o644); err != nil {
		runLog.WithError(err).Fatal("failed to persist report")
	}
	runLog.WithField("report_path", outPath).Info("report saved")
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
