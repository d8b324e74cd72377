// Package metrics exports run telemetry in Prometheus format.
//
// A Recorder owns its own registry so several pipelines (or tests) never
// collide on the global default registry.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "turtleshot"

// Recorder collects counters and histograms about runs.
type Recorder struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	moves    *prometheus.CounterVec
	runTime  *prometheus.HistogramVec
	cycles   prometheus.Histogram
	perRun   prometheus.Histogram
	stackMax prometheus.Gauge

	mu   sync.Mutex
	peak float64
}

// New returns a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of settled runs",
			},
			[]string{"outcome"},
		),
		moves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "moves_total",
				Help:      "Total number of move notifications",
			},
			[]string{"pen"},
		),
		runTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of program execution",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"outcome"},
		),
		cycles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_cycles",
			Help:      "Interpreter cycles of completed runs",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
		perRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_moves",
			Help:      "Move notifications per run",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		stackMax: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stack_peak_max",
			Help:      "Deepest stack seen by any completed run",
		}),
	}
	r.registry.MustRegister(r.runs, r.moves, r.runTime, r.cycles, r.perRun, r.stackMax)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Hooks returns lifecycle hooks that feed the recorder. Combine them with
// other hooks through domain.ChainHooks.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunSettle: func(_ context.Context, e *domain.RunEvent) {
			r.Observe(e.Outcome, e.Details)
		},
		OnMove: func(_ context.Context, e *domain.MoveEvent) {
			pen := "up"
			if e.PenDown {
				pen = "down"
			}
			r.moves.WithLabelValues(pen).Inc()
		},
	}
}

// Observe records one settled run. Counters are only trusted from completed
// runs.
func (r *Recorder) Observe(outcome domain.Outcome, details *domain.ExecutionDetails) {
	r.runs.WithLabelValues(string(outcome)).Inc()
	if details == nil {
		return
	}
	r.runTime.WithLabelValues(string(outcome)).Observe(details.RunTime.Seconds())
	r.perRun.Observe(float64(details.MoveCount))
	if outcome == domain.OutcomeCompleted {
		r.cycles.Observe(float64(details.Cycles))
		r.raiseStackMax(float64(details.StackPeak))
	}
}

func (r *Recorder) raiseStackMax(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v > r.peak {
		r.peak = v
		r.stackMax.Set(v)
	}
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteFile writes the registry in the text exposition format, atomically.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
