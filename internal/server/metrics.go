package server

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics defines the counters the server emits.
type Metrics interface {
	IncRequest(route, status string)
	IncPublishStepFailed(step string)
	IncGeneration(kind, status string)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) IncRequest(string, string)    {}
func (Noop) IncPublishStepFailed(string)  {}
func (Noop) IncGeneration(string, string) {}

// Prom implements Metrics backed by Prometheus counters.
type Prom struct {
	requests    *prometheus.CounterVec
	stepsFailed *prometheus.CounterVec
	generations *prometheus.CounterVec
	once        sync.Once
}

func NewProm(namespace string) *Prom {
	p := &Prom{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests handled by route and status",
		}, []string{"route", "status"}),
		stepsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_steps_failed_total",
			Help:      "Publish workflow failures by step",
		}, []string{"step"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Content generations by kind and status",
		}, []string{"kind", "status"}),
	}
	p.register()
	return p
}

func (p *Prom) register() {
	p.once.Do(func() {
		prometheus.MustRegister(p.requests, p.stepsFailed, p.generations)
	})
}

func (p *Prom) IncRequest(route, status string) {
	p.requests.WithLabelValues(route, status).Inc()
}

func (p *Prom) IncPublishStepFailed(step string) {
	p.stepsFailed.WithLabelValues(step).Inc()
}

func (p *Prom) IncGeneration(kind, status string) {
	p.generations.WithLabelValues(kind, status).Inc()
}

// MetricsHandler returns the HTTP handler for /metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
