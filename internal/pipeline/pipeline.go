package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"compliance-insights-go/internal/aggregator"
	"compliance-insights-go/internal/dataset"
	"compliance-insights-go/internal/logger"
	"compliance-insights-go/internal/metrics"
	"compliance-insights-go/internal/report"
	"compliance-insights-go/internal/retrieval"
	"compliance-insights-go/internal/search"
	"compliance-insights-go/internal/summarizer"
	"compliance-insights-go/internal/types"
)

// State is threaded through the stages. Each field is written by exactly
// one stage and read-only downstream. One instance per run.
type State struct {
	RunID             string
	CustomerMetrics   []types.CustomerMetrics
	KnowledgeBase     string
	RiskEvaluations   []types.RiskEvaluation
	CustomerReports   []types.CustomerRiskReport
	RegulatoryUpdates string
	FinalReport       string
}

// Pipeline runs the fixed five-stage compliance evaluation sequence.
// External failures degrade the owning stage's field to an empty default;
// the run always reaches the terminal stage and yields a report.
type Pipeline struct {
	kb          retrieval.Client
	searcher    search.Searcher
	llm         summarizer.Summarizer
	datasetPath string
	now         func() time.Time
}

// Option adjusts pipeline construction.
type Option func(*Pipeline)

// WithDatasetPath makes stage one read metrics from a local workbook
// instead of the knowledge-base gateway.
func WithDatasetPath(path string) Option {
	return func(p *Pipeline) { p.datasetPath = path }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(kb retrieval.Client, searcher search.Searcher, llm summarizer.Summarizer, opts ...Option) *Pipeline {
	p := &Pipeline{kb: kb, searcher: searcher, llm: llm, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

type stage struct {
	name string
	run  func(ctx context.Context, st *State, log *logrus.Entry)
}

// Run executes the stages strictly in sequence and returns the final
// state. Only core-logic defects escape; collaborator errors are logged
// and defaulted inside their owning stage.
func (p *Pipeline) Run(ctx context.Context) *State {
	st := &State{RunID: logger.NewRunID()}
	log := logger.New().WithRun(st.RunID).WithField("component", "pipeline")

	stages := []stage{
		{"retrieve_metrics", p.retrieveMetrics},
		{"retrieve_kb", p.retrieveKnowledgeBase},
		{"evaluate_risks", p.evaluateRisks},
		{"search_regulations", p.searchRegulatoryUpdates},
		{"generate_report", p.generateReport},
	}
	for _, s := range stages {
		stageLog := log.WithField("stage", s.name)
		stageLog.Info("stage started")
		start := time.Now()
		s.run(ctx, st, stageLog)
		stageLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("stage finished")
	}
	return st
}

// retrieveMetrics owns State.CustomerMetrics. Any retrieval error means
// an empty metric set, never an abort.
func (p *Pipeline) retrieveMetrics(ctx context.Context, st *State, log *logrus.Entry) {
	if p.datasetPath != "" {
		records, err := dataset.Load(p.datasetPath)
		if err != nil {
			log.WithError(err).Warn("workbook metric load failed, continuing with no metrics")
			st.CustomerMetrics = nil
			return
		}
		st.CustomerMetrics = records
		log.WithField("customers", len(records)).Info("metrics loaded from workbook")
		return
	}

	raw, err := p.kb.Retrieve(ctx, retrieval.MetricsQuery)
	if err != nil {
		log.WithError(err).Warn("metric retrieval failed, continuing with no metrics")
		st.CustomerMetrics = nil
		return
	}
	st.CustomerMetrics = metrics.ParseCSV(raw)
	log.WithField("customers", len(st.CustomerMetrics)).Info("metrics retrieved")
}

// retrieveKnowledgeBase owns State.KnowledgeBase. Failure means an empty
// string.
func (p *Pipeline) retrieveKnowledgeBase(ctx context.Context, st *State, log *logrus.Entry) {
	text, err := p.kb.Retrieve(ctx, retrieval.IndicatorsQuery)
	if err != nil {
		log.WithError(err).Warn("knowledge base retrieval failed, continuing with empty context")
		st.KnowledgeBase = ""
		return
	}
	st.KnowledgeBase = text
	log.WithField("chars", len(text)).Info("knowledge base retrieved")
}

// evaluateRisks owns State.RiskEvaluations and State.CustomerReports.
// Pure core logic: a defect here is fatal by design, nothing is recovered.
func (p *Pipeline) evaluateRisks(_ context.Context, st *State, log *logrus.Entry) {
	st.RiskEvaluations, st.CustomerReports = aggregator.Aggregate(st.CustomerMetrics)
	for _, e := range st.RiskEvaluations {
		log.WithFields(logrus.Fields{
			"customer": e.CustomerID,
			"metric":   e.MetricName,
			"value":    e.Value,
			"risk":     e.RiskLevel,
		}).Debug("metric classified")
	}
	log.WithField("evaluations", len(st.RiskEvaluations)).Info("risk evaluation complete")
}

// searchRegulatoryUpdates owns State.RegulatoryUpdates. Each query fails
// independently: a placeholder replaces a failed query, the batch never
// aborts.
func (p *Pipeline) searchRegulatoryUpdates(ctx context.Context, st *State, log *logrus.Entry) {
	var blocks []string
	for _, q := range search.Queries {
		result := p.searchOne(ctx, q, log)
		blocks = append(blocks, fmt.Sprintf("Query: %s\n%s\n", q, result))
	}
	st.RegulatoryUpdates = strings.Join(blocks, "\n")
}

// searchOne isolates a single query so a misbehaving searcher cannot take
// down the batch.
func (p *Pipeline) searchOne(ctx context.Context, query string, log *logrus.Entry) (result string) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("query", query).WithField("panic", r).Warn("search query panicked")
			result = fmt.Sprintf("Search failed: %v", r)
		}
	}()
	result = p.searcher.Search(ctx, query)
	log.WithField("query", query).Info("regulatory search completed")
	return result
}

// generateReport owns State.FinalReport. A narrative failure substitutes
// a descriptive error string; the report is still produced in full.
func (p *Pipeline) generateReport(ctx context.Context, st *State, log *logrus.Entry) {
	prompt := summarizer.BuildSummaryPrompt(st.KnowledgeBase, st.CustomerReports, st.RegulatoryUpdates)
	summary, err := p.llm.Summarize(ctx, prompt)
	if err != nil {
		log.WithError(err).Warn("narrative generation failed, embedding error text")
		summary = fmt.Sprintf("Error generating summary: %v", err)
	}
	st.FinalReport = report.Synthesize(st.CustomerReports, summary, st.RegulatoryUpdates, p.now())
	log.WithField("customers", len(st.CustomerReports)).Info("report generated")
}
