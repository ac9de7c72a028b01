// Package metrics concentra os coletores Prometheus do serviço num registry próprio.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics coletores expostos em /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
	EventsPublished *prometheus.CounterVec
	EventsDropped   *prometheus.CounterVec
}

// New cria e registra os coletores. Cada chamada usa um registry novo, o que permite
// instâncias independentes em testes.
func New(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total de requisições HTTP por método, rota e status",
			},
			[]string{"method", "route", "status"},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duração das requisições HTTP em segundos",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Eventos de mudança enviados aos destinos",
			},
			[]string{"event"},
		),
		EventsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_dropped_total",
				Help:      "Eventos de mudança que não chegaram ao destino",
			},
			[]string{"sink"},
		),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestLatency,
		m.EventsPublished,
		m.EventsDropped,
	)
	return m
}

// Dropped incrementa o contador de perdas do destino sink; aceita receptor nil.
func (m *Metrics) Dropped(sink string) {
	if m == nil {
		return
	}
	m.EventsDropped.WithLabelValues(sink).Inc()
}
