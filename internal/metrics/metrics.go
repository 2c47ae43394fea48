package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics observability for one evaluation run. The batch job does not expose an endpoint,
// so everything lives in a private registry that is pushed to a Pushgateway at the end.
type Metrics struct {
	registry *prometheus.Registry

	// Interviews evaluated
	Interviews prometheus.Counter

	// Findings by rule code and shape (completion, quality)
	Findings *prometheus.CounterVec

	// Source load latency
	LoadLatency prometheus.Histogram

	// Full run latency, load through aggregation
	RunLatency prometheus.Histogram

	// Runs by outcome (ok, error)
	Runs *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,

		Interviews: factory.NewCounter(prometheus.CounterOpts{
			Name: "diaries_qc_interviews_evaluated_total",
			Help: "Interviews evaluated against the rule catalog",
		}),

		Findings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "diaries_qc_findings_total",
			Help: "Rule findings by rule code and shape",
		}, []string{"rule", "shape"}),

		LoadLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "diaries_qc_source_load_duration_seconds",
			Help:    "Duration of loading the window from the source database",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		RunLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "diaries_qc_run_duration_seconds",
			Help:    "Duration of a full evaluation run",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),

		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "diaries_qc_runs_total",
			Help: "Evaluation runs by outcome",
		}, []string{"outcome"}),
	}
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// AddInterviews records n evaluated interviews.
func (m *Metrics) AddInterviews(n int) {
	if m != nil {
		m.Interviews.Add(float64(n))
	}
}

// IncrementFinding records one finding for a rule.
func (m *Metrics) IncrementFinding(rule, shape string) {
	if m != nil {
		m.Findings.WithLabelValues(rule, shape).Inc()
	}
}

// ObserveLoadLatency records the source load duration.
func (m *Metrics) ObserveLoadLatency(d time.Duration) {
	if m != nil {
		m.LoadLatency.Observe(d.Seconds())
	}
}

// ObserveRun records the run duration and outcome.
func (m *Metrics) ObserveRun(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.RunLatency.Observe(d.Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Runs.WithLabelValues(outcome).Inc()
}

// Push sends the registry to a Pushgateway under job, grouped by instance
func (m *Metrics) Push(ctx context.Context, url, job, instance string) error {
	if m == nil || url == "" {
		return nil
	}
	pusher := push.New(url, job).Gatherer(m.registry)
	if instance != "" {
		pusher = pusher.Grouping("instance", instance)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
