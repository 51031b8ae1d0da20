// Package telemetry tracks request, phase, and model-call metrics for the
// debate service and exposes them in Prometheus format.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roomai/agora/config"
)

type Telemetry struct {
	enabled  bool
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	cacheHits       prometheus.Counter
	modelCalls      *prometheus.CounterVec
	phaseDuration   *prometheus.HistogramVec
	requestDuration prometheus.Histogram
}

func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	registry := prometheus.NewRegistry()

	t := &Telemetry{
		enabled:  cfg.Enabled,
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_debate_requests_total",
			Help: "Debate requests by outcome.",
		}, []string{"status"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agora_debate_cache_hits_total",
			Help: "Requests served from the response cache.",
		}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_model_calls_total",
			Help: "Completion calls by model and outcome.",
		}, []string{"model", "status"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agora_phase_duration_seconds",
			Help:    "Wall time per debate phase.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"phase"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agora_debate_duration_seconds",
			Help:    "End-to-end debate wall time.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}

	registry.MustRegister(t.requests, t.cacheHits, t.modelCalls, t.phaseDuration, t.requestDuration)
	return t
}

// Handler serves the metrics endpoint for this telemetry instance.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

func (t *Telemetry) RecordRequest(success bool, elapsed time.Duration) {
	if !t.enabled {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	t.requests.WithLabelValues(status).Inc()
	t.requestDuration.Observe(elapsed.Seconds())
}

func (t *Telemetry) RecordCacheHit() {
	if !t.enabled {
		return
	}
	t.cacheHits.Inc()
}

func (t *Telemetry) RecordModelCall(model string, err error) {
	if !t.enabled {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	t.modelCalls.WithLabelValues(model, status).Inc()
}

func (t *Telemetry) RecordPhase(phase string, elapsed time.Duration) {
	if !t.enabled {
		return
	}
	t.phaseDuration.WithLabelValues(phase).Observe(elapsed.Seconds())
}
