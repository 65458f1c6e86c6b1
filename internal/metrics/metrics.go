package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported on /metrics. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal     *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	CatalogHouses  prometheus.Gauge
	TraitMutations *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
	WSClients      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "houseboard",
			Name:      "catalog_fetch_total",
			Help:      "Upstream house catalog fetches by outcome.",
		}, []string{"status"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "houseboard",
			Name:      "catalog_fetch_duration_seconds",
			Help:      "Duration of upstream house catalog fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		CatalogHouses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "houseboard",
			Name:      "catalog_houses",
			Help:      "Number of houses in the loaded catalog.",
		}),
		TraitMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "houseboard",
			Name:      "trait_mutations_total",
			Help:      "Trait add/remove operations that changed a house.",
		}, []string{"action"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "houseboard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status class.",
		}, []string{"method", "code"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "houseboard",
			Name:      "sessions_active",
			Help:      "Browser sessions holding in-memory house state.",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "houseboard",
			Name:      "websocket_clients",
			Help:      "Connected websocket clients.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.FetchTotal,
		m.FetchDuration,
		m.CatalogHouses,
		m.TraitMutations,
		m.HTTPRequests,
		m.ActiveSessions,
		m.WSClients,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
