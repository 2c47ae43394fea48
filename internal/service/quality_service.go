package service

import (
	"context"
	"fmt"
	"time"

	"diaries-qc/internal/aggregator"
	"diaries-qc/internal/builder"
	"diaries-qc/internal/config"
	"diaries-qc/internal/evaluator"
	"diaries-qc/internal/metrics"
	"diaries-qc/internal/models"
	"diaries-qc/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QualityService runs the rule catalog over one window and produces the three report shapes
type QualityService interface {
	Run(ctx context.Context, window config.Window) (*models.Report, error)
}

// ReportPublisher sink for finished reports (Redis for the dashboard)
type ReportPublisher interface {
	Publish(ctx context.Context, report *models.Report) error
}

// Options run parameters taken from config.Config
type Options struct {
	ProjectID   int64
	Workers     int
	HistoryDays int
}

// OptionsFromConfig picks the QC section of the process configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ProjectID:   cfg.QC.ProjectID,
		Workers:     cfg.QC.Workers,
		HistoryDays: cfg.QC.HistoryDays,
	}
}

type qualityService struct {
	source    repository.Source
	ref       *config.Reference
	opts      Options
	metrics   *metrics.Metrics
	publisher ReportPublisher // nil disables publishing
	logger    *zap.Logger
	now       func() time.Time
}

// NewQualityService creates a QualityService; m and publisher may be nil
func NewQualityService(source repository.Source, ref *config.Reference, opts Options, m *metrics.Metrics, publisher ReportPublisher, logger *zap.Logger) QualityService {
	return &qualityService{
		source:    source,
		ref:       ref,
		opts:      opts,
		metrics:   m,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Run loads the window, evaluates every interview and aggregates the results.
// Source failures are returned wrapping repository.ErrSourceUnavailable; a window without
// interviews yields an empty report. A publishing failure is logged and does not fail the run.
func (s *qualityService) Run(ctx context.Context, window config.Window) (report *models.Report, err error) {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))
	started := s.now()
	defer func() {
		s.metrics.ObserveRun(s.now().Sub(started), err)
	}()

	logger.Info("Evaluation started",
		zap.String("window", window.String()),
		zap.Int64("project_id", s.opts.ProjectID),
		zap.Int("workers", s.opts.Workers),
	)

	// 1. load
	q := repository.Query{
		ProjectID:          s.opts.ProjectID,
		Start:              window.Start,
		End:                window.End,
		HistoryStart:       window.Start.AddDate(0, 0, -s.opts.HistoryDays),
		TestPatterns:       s.ref.TestHouseholdPatterns,
		ExcludedHouseholds: s.ref.Exclusions.HouseholdCodes,
	}
	loadStart := s.now()
	ds, err := s.source.Load(ctx, q)
	if err != nil {
		logger.Error("Failed to load source data", zap.Error(err))
		return nil, fmt.Errorf("load window %s: %w", window, err)
	}
	s.metrics.ObserveLoadLatency(s.now().Sub(loadStart))
	logger.Info("Source data loaded",
		zap.Int("households", len(ds.Households)),
		zap.Int("interviews", len(ds.Interviews)),
		zap.Int("answers", len(ds.Answers)),
	)

	// 2. build contexts
	contexts := builder.NewBuilder(ds, s.ref, logger).BuildAll()

	// 3. evaluate
	results, err := evaluator.NewEvaluator(s.ref, s.opts.Workers, logger).Evaluate(ctx, contexts)
	if err != nil {
		return nil, err
	}
	s.record(results)

	// 4. aggregate
	scorecard := aggregator.Scorecard(results)
	report = &models.Report{
		RunID:       runID,
		WindowStart: window.Start,
		WindowEnd:   window.End,
		GeneratedAt: s.now().UTC(),
		Scorecard:   scorecard,
		Issues:      aggregator.Issues(results),
		RASummary:   aggregator.RASummary(scorecard, s.ref),
	}
	logger.Info("Evaluation finished",
		zap.Int("interviews", len(report.Scorecard)),
		zap.Int("issues", len(report.Issues)),
		zap.Int("ras", len(report.RASummary)),
		zap.Duration("elapsed", s.now().Sub(started)),
	)

	// 5. publish
	if s.publisher != nil {
		if perr := s.publisher.Publish(ctx, report); perr != nil {
			logger.Error("Failed to publish report", zap.Error(perr))
		}
	}
	return report, nil
}

func (s *qualityService) record(results []evaluator.Result) {
	if s.metrics == nil {
		return
	}
	s.metrics.AddInterviews(len(results))
	for _, res := range results {
		for _, c := range res.Checks {
			if c.Flag > 0 {
				s.metrics.IncrementFinding(c.Code, evaluator.ShapeCompletion.String())
			}
		}
		for _, is := range res.Issues {
			s.metrics.IncrementFinding(is.RuleCode, evaluator.ShapeQuality.String())
		}
	}
}
