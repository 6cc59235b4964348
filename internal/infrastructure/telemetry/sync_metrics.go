package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

const metricsNamespace = "supplier_sync"

// SyncMetrics holds the Prometheus collectors for the sync engine on a
// private registry, so tests and multiple engines never collide.
type SyncMetrics struct {
	reg *prometheus.Registry

	SyncRuns       *prometheus.CounterVec
	SyncDuration   *prometheus.HistogramVec
	SyncInFlight   *prometheus.GaugeVec
	VariantsSynced *prometheus.CounterVec
	Changes        *prometheus.CounterVec
	Retries        *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
	WebhookUpdates *prometheus.CounterVec
}

// NewSyncMetrics creates and registers all sync collectors.
func NewSyncMetrics() *SyncMetrics {
	r := prometheus.NewRegistry()
	m := &SyncMetrics{
		reg: r,
		SyncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_total",
			Help:      "Completed sync runs by supplier and final status.",
		}, []string{"supplier", "status"}),
		SyncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a supplier sync run.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 180, 600},
		}, []string{"supplier"}),
		SyncInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "runs_in_flight",
			Help:      "Sync runs currently executing per supplier.",
		}, []string{"supplier"}),
		VariantsSynced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "variants_synced_total",
			Help:      "Variants written by sync runs.",
		}, []string{"supplier"}),
		Changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "inventory_changes_total",
			Help:      "Inventory changes detected by supplier and change type.",
		}, []string{"supplier", "type"}),
		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connector_retries_total",
			Help:      "Retried supplier API calls.",
		}, []string{"supplier"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_lookups_total",
			Help:      "Supplier response cache lookups by result.",
		}, []string{"supplier", "result"}),
		WebhookUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "webhook_updates_total",
			Help:      "Inventory updates received by webhook, by outcome.",
		}, []string{"supplier", "result"}),
	}
	r.MustRegister(
		m.SyncRuns, m.SyncDuration, m.SyncInFlight, m.VariantsSynced,
		m.Changes, m.Retries, m.CacheLookups, m.WebhookUpdates,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *SyncMetrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *SyncMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// SyncStarted marks a run as in flight.
func (m *SyncMetrics) SyncStarted(supplier string) {
	m.SyncInFlight.WithLabelValues(supplier).Inc()
}

// SyncFinished records the outcome of a run started with SyncStarted.
func (m *SyncMetrics) SyncFinished(supplier, status string, variants int, elapsed time.Duration) {
	m.SyncInFlight.WithLabelValues(supplier).Dec()
	m.SyncRuns.WithLabelValues(supplier, status).Inc()
	m.SyncDuration.WithLabelValues(supplier).Observe(elapsed.Seconds())
	m.VariantsSynced.WithLabelValues(supplier).Add(float64(variants))
}

// ChangeDetected counts one detected inventory change.
func (m *SyncMetrics) ChangeDetected(supplier, changeType string) {
	m.Changes.WithLabelValues(supplier, changeType).Inc()
}

// WebhookUpdate counts one webhook-delivered update.
func (m *SyncMetrics) WebhookUpdate(supplier, result string) {
	m.WebhookUpdates.WithLabelValues(supplier, result).Inc()
}

// CacheLookup satisfies cache.LookupRecorder.
func (m *SyncMetrics) CacheLookup(supplier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(supplier, result).Inc()
}

// ConnectorRetry has the shape of supplier.RetryObserver.
func (m *SyncMetrics) ConnectorRetry(supplier integration.SupplierID, _ int, _ time.Duration, _ error) {
	m.Retries.WithLabelValues(supplier.String()).Inc()
}
