// Package metrics exposes Prometheus metrics for providers, analyses and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all ChainCheck metrics on a private Prometheus registry
type Registry struct {
	reg *prometheus.Registry

	// Provider calls
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec

	// Analyses
	Analyses          *prometheus.CounterVec
	AnalysisDuration  prometheus.Histogram
	CategoryFallbacks *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec

	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaincheck_provider_requests_total",
				Help: "Upstream provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chaincheck_provider_latency_seconds",
				Help:    "Upstream provider call latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
			},
			[]string{"provider"},
		),

		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaincheck_analyses_total",
				Help: "Completed token analyses by risk level and confidence",
			},
			[]string{"risk_level", "confidence"},
		),

		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chaincheck_analysis_duration_seconds",
				Help:    "Wall time of a full token analysis in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
			},
		),

		CategoryFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaincheck_category_fallbacks_total",
				Help: "Category scores replaced by their default after a scorer panic",
			},
			[]string{"category"},
		),

		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaincheck_cache_lookups_total",
				Help: "Analysis cache lookups by result",
			},
			[]string{"result"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaincheck_http_requests_total",
				Help: "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chaincheck_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	r.reg.MustRegister(
		r.ProviderRequests,
		r.ProviderLatency,
		r.Analyses,
		r.AnalysisDuration,
		r.CategoryFallbacks,
		r.CacheLookups,
		r.HTTPRequests,
		r.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Registry) ObserveProvider(provider, outcome string, elapsed time.Duration) {
	r.ProviderRequests.WithLabelValues(provider, outcome).Inc()
	r.ProviderLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (r *Registry) ObserveAnalysis(riskLevel, confidence string, elapsed time.Duration) {
	r.Analyses.WithLabelValues(riskLevel, confidence).Inc()
	r.AnalysisDuration.Observe(elapsed.Seconds())
}

func (r *Registry) CategoryFallback(category string) {
	r.CategoryFallbacks.WithLabelValues(category).Inc()
}

func (r *Registry) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheLookups.WithLabelValues(result).Inc()
}

func (r *Registry) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	r.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
