// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Checkins           *prometheus.CounterVec
	EventCacheRequests *prometheus.CounterVec
	EventCacheSize     prometheus.Gauge
	TransferRequests   *prometheus.CounterVec
	EventRewardRuns    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers every collector on reg. Pass prometheus.NewRegistry()
// in tests so repeated construction does not collide.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "checkpoint_rewards"
	}
	factory := promauto.With(reg)

	return &Metrics{
		Checkins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkin",
			Name:      "requests_total",
			Help:      "Check-in attempts by chain and outcome",
		}, []string{"chain", "result"}),
		EventCacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "event_cache",
			Name:      "requests_total",
			Help:      "Event cache lookups by result (hit, miss, refresh, error)",
		}, []string{"result"}),
		EventCacheSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "event_cache",
			Name:      "events",
			Help:      "Number of CheckIn events currently cached",
		}),
		TransferRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "requests_total",
			Help:      "Transfer requests by outcome",
		}, []string{"result"}),
		EventRewardRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "event_reward",
			Name:      "runs_total",
			Help:      "Bulk event reward runs by outcome",
		}, []string{"result"}),
		gatherer: reg,
	}
}

func (m *Metrics) ObserveCheckin(chain, result string) {
	if m == nil {
		return
	}
	m.Checkins.WithLabelValues(chain, result).Inc()
}

func (m *Metrics) ObserveEventCache(result string, size int) {
	if m == nil {
		return
	}
	m.EventCacheRequests.WithLabelValues(result).Inc()
	if size >= 0 {
		m.EventCacheSize.Set(float64(size))
	}
}

func (m *Metrics) ObserveTransfer(result string) {
	if m == nil {
		return
	}
	m.TransferRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveEventReward(result string) {
	if m == nil {
		return
	}
	m.EventRewardRuns.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
