package basicseo

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors on a private
// registry.
type Metrics struct {
	registry *prom.Registry

	sitemapRequests *prom.CounterVec
	headEmissions   *prom.CounterVec
	overrideSaves   *prom.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prom.NewRegistry(),
		sitemapRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "basicseo", Name: "sitemap_requests_total",
			Help: "Sitemap requests handled, by document kind and status code",
		}, []string{"kind", "status"}),
		headEmissions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "basicseo", Name: "head_emissions_total",
			Help: "SEO head blocks written, by view",
		}, []string{"view"}),
		overrideSaves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "basicseo", Name: "override_saves_total",
			Help: "Override save attempts, by entity kind and result",
		}, []string{"kind", "result"}),
	}
	m.registry.MustRegister(m.sitemapRequests, m.headEmissions, m.overrideSaves)
	m.registry.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
