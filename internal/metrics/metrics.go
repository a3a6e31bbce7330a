package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Исходы операций для меток счётчиков.
const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeDiscarded = "discarded"
	OutcomeFallback  = "fallback"
)

// Metrics счётчики рабочего места с собственным реестром
type Metrics struct {
	Detections      *prometheus.CounterVec
	Summaries       *prometheus.CounterVec
	Reports         *prometheus.CounterVec
	ObjectInfo      *prometheus.CounterVec
	HistoryEntries  prometheus.Gauge
	ActiveDetecting prometheus.Gauge

	registry *prometheus.Registry
}

// New создаёт метрики и регистрирует их в новом реестре
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spacesight",
			Name:      "detections_total",
			Help:      "Detection runs by outcome",
		}, []string{"outcome"}),
		Summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spacesight",
			Name:      "summaries_total",
			Help:      "Summary generations by outcome",
		}, []string{"outcome"}),
		Reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spacesight",
			Name:      "reports_total",
			Help:      "Report exports by outcome",
		}, []string{"outcome"}),
		ObjectInfo: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spacesight",
			Name:      "object_info_lookups_total",
			Help:      "Object info lookups by label",
		}, []string{"label"}),
		HistoryEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spacesight",
			Name:      "history_entries",
			Help:      "History entries across all sessions",
		}),
		ActiveDetecting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spacesight",
			Name:      "detections_in_flight",
			Help:      "Detection runs currently waiting on the detector",
		}),
	}

	m.registry.MustRegister(
		m.Detections,
		m.Summaries,
		m.Reports,
		m.ObjectInfo,
		m.HistoryEntries,
		m.ActiveDetecting,
	)
	return m
}

// Registry реестр для тестов и внешней регистрации
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдаёт метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
