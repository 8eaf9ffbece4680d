package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one server. Each instance owns its registry so tests can
// build as many servers as they like.
//
//   - phrasebook_glyph_generations_total{purpose,result}
//   - phrasebook_login_links_total{result}
//   - phrasebook_link_verifications_total{result}
//   - phrasebook_store_writes_total{kind,result}
//   - phrasebook_http_request_duration_seconds{method,status}
type Metrics struct {
	registry *prometheus.Registry

	GlyphGenerations  *prometheus.CounterVec
	LoginLinks        *prometheus.CounterVec
	LinkVerifications *prometheus.CounterVec
	StoreWrites       *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		GlyphGenerations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phrasebook_glyph_generations_total",
				Help: "Glyph generations by purpose and result",
			},
			[]string{"purpose", "result"}, // purpose: "category" or "demo"
		),
		LoginLinks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phrasebook_login_links_total",
				Help: "Sign-in links requested",
			},
			[]string{"result"},
		),
		LinkVerifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phrasebook_link_verifications_total",
				Help: "Sign-in link verifications",
			},
			[]string{"result"},
		),
		StoreWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phrasebook_store_writes_total",
				Help: "Phrase store writes by kind and result",
			},
			[]string{"kind", "result"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "phrasebook_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
