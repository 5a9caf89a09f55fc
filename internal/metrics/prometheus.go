package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus is an Observer backed by client_golang collectors on a private
// registry.
type Prometheus struct {
	reg *prometheus.Registry

	stepCounter  *prometheus.CounterVec   // arcaneflow_step_total
	stepDuration *prometheus.HistogramVec // arcaneflow_step_duration_seconds
	runCounter   *prometheus.CounterVec   // arcaneflow_runs_total
	pruned       prometheus.Counter       // arcaneflow_steps_pruned_total
	runsActive   prometheus.Gauge         // arcaneflow_runs_in_progress
}

// NewPrometheus creates the collectors and registers them on a fresh registry.
func NewPrometheus() (*Prometheus, error) {
	p := &Prometheus{
		reg: prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arcaneflow_step_total",
				Help: "Total number of step executions, partitioned by step and status.",
			},
			[]string{"step", "status"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arcaneflow_step_duration_seconds",
				Help:    "Duration of step executions in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"step", "status"},
		),
		runCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arcaneflow_runs_total",
				Help: "Total number of pipeline runs, partitioned by final state.",
			},
			[]string{"state"},
		),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arcaneflow_steps_pruned_total",
			Help: "Total number of steps removed by the optimizer.",
		}),
		runsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arcaneflow_runs_in_progress",
			Help: "Number of pipeline runs currently executing.",
		}),
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":   p.stepCounter,
		"step histogram": p.stepDuration,
		"run counter":    p.runCounter,
		"pruned counter": p.pruned,
		"runs gauge":     p.runsActive,
	} {
		if err := p.reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register %s: %w", name, err)
		}
	}
	return p, nil
}

func (p *Prometheus) RunStarted(string) {
	p.runsActive.Inc()
}

func (p *Prometheus) StepFinished(stepID string, d time.Duration, err error) {
	status := StatusOf(err)
	p.stepCounter.WithLabelValues(stepID, status).Inc()
	p.stepDuration.WithLabelValues(stepID, status).Observe(d.Seconds())
}

func (p *Prometheus) RunFinished(state string, _ time.Duration) {
	p.runsActive.Dec()
	p.runCounter.WithLabelValues(state).Inc()
}

func (p *Prometheus) StepsPruned(n int) {
	if n > 0 {
		p.pruned.Add(float64(n))
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{Registry: p.reg})
}
