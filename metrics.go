package textops

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels used by Metrics.
const (
	OutcomeOK           = "ok"
	OutcomeArgumentErr  = "argument_error"
	OutcomeUnavailable  = "unavailable"
	OutcomeSystemErr    = "system_error"
	OutcomeEvaluatorErr = "evaluator_error"
)

// Metrics exposes Prometheus collectors for tool executions and pipeline runs.
type Metrics struct {
	toolExecutions *prometheus.CounterVec
	toolDuration   *prometheus.HistogramVec
	requests       *prometheus.CounterVec
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns a Metrics instance registered with the global Prometheus
// registry. Collectors are created once so repeated calls do not panic.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs Metrics using the provided registerer. Registration
// errors panic; pass a fresh prometheus.NewRegistry() in tests.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		toolExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "textops",
				Subsystem: "tools",
				Name:      "executions_total",
				Help:      "Tool executions by tool and outcome.",
			},
			[]string{"tool", "outcome"},
		),
		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "textops",
				Subsystem: "tools",
				Name:      "execution_duration_seconds",
				Help:      "Time spent inside a tool.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "textops",
				Subsystem: "pipeline",
				Name:      "requests_total",
				Help:      "Pipeline runs by selected tool and outcome.",
			},
			[]string{"tool", "outcome"},
		),
	}
	reg.MustRegister(m.toolExecutions, m.toolDuration, m.requests)
	return m
}

// WithMetrics returns a middleware that counts executions and observes their duration.
func WithMetrics(m *Metrics) Middleware {
	return func(next Tool) Tool {
		if m == nil {
			return next
		}
		return &metricsTool{toolBase: toolBase{next: next}, metrics: m}
	}
}

type metricsTool struct {
	toolBase
	metrics *Metrics
}

func (t *metricsTool) Execute(ctx context.Context, args []string) (string, error) {
	start := time.Now()
	res, err := t.next.Execute(ctx, args)
	name := t.next.Name()
	t.metrics.toolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	t.metrics.toolExecutions.WithLabelValues(name, outcomeOf(res, err)).Inc()
	return res, err
}

// observeRequest records one pipeline run. Safe on a nil receiver.
func (m *Metrics) observeRequest(res ConversionResult, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = outcomeOf("", err)
	case res.Failed():
		outcome = OutcomeSystemErr
	case IsToolArgumentError(res.ConvertedText):
		outcome = OutcomeArgumentErr
	}
	m.requests.WithLabelValues(res.ToolUsed, outcome).Inc()
}

func outcomeOf(res string, err error) string {
	switch {
	case err == nil && IsToolArgumentError(res):
		return OutcomeArgumentErr
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrToolNotAvailable):
		return OutcomeUnavailable
	case IsEvaluationError(err):
		return OutcomeEvaluatorErr
	default:
		return OutcomeSystemErr
	}
}
