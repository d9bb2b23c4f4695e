// Package metrics exports fit activity to Prometheus and serves a small
// status endpoint for long batch runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/katalvlaran/liifit/fit"
)

// Recorder implements fit.Recorder with Prometheus collectors.
type Recorder struct {
	problemsStarted  *prometheus.CounterVec
	problemsFinished *prometheus.CounterVec
	problemDuration  *prometheus.HistogramVec
	inFlight         prometheus.Gauge
	iterations       prometheus.Counter
	chiSquare        prometheus.Histogram
	evaluations      prometheus.Counter
	runs             *prometheus.CounterVec
}

var _ fit.Recorder = (*Recorder)(nil)

// New registers the collectors on reg under namespace.
func New(reg prometheus.Registerer, namespace string) *Recorder {
	f := promauto.With(reg)

	return &Recorder{
		problemsStarted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "problems_started_total",
				Help:      "Fit problems started, by mode",
			},
			[]string{"mode"},
		),
		problemsFinished: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "problems_finished_total",
				Help:      "Fit problems finished, by final status",
			},
			[]string{"status"},
		),
		problemDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "problem_duration_seconds",
				Help:      "Wall time of one problem fit",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"status"},
		),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "problems_in_flight",
			Help:      "Problems currently being fitted",
		}),
		iterations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Recorded solver iterations",
		}),
		chiSquare: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "iteration_chi_square",
			Help:      "χ² of recorded iterations",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 16),
		}),
		evaluations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_evaluations_total",
			Help:      "Heat-model integrations requested by the solver",
		}),
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Finished FitAll calls, by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ProblemStarted implements fit.Recorder.
func (r *Recorder) ProblemStarted(mode string) {
	r.problemsStarted.WithLabelValues(mode).Inc()
	r.inFlight.Inc()
}

// ProblemFinished implements fit.Recorder.
func (r *Recorder) ProblemFinished(status string, seconds float64) {
	r.problemsFinished.WithLabelValues(status).Inc()
	r.problemDuration.WithLabelValues(status).Observe(seconds)
	r.inFlight.Dec()
}

// Iteration implements fit.Recorder.
func (r *Recorder) Iteration(chi2 float64) {
	r.iterations.Inc()
	r.chiSquare.Observe(chi2)
}

// Evaluation implements fit.Recorder.
func (r *Recorder) Evaluation() { r.evaluations.Inc() }

// RunFinished implements fit.Recorder.
func (r *Recorder) RunFinished(canceled bool) {
	outcome := "complete"
	if canceled {
		outcome = "incomplete"
	}
	r.runs.WithLabelValues(outcome).Inc()
}
