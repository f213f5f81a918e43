// Package metrics colectores Prometheus del núcleo de inventario.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa los colectores. Se registran en un Registry propio para que
// los tests puedan crear instancias independientes.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SellOutcomes      *prometheus.CounterVec
	ReceiveOutcomes   *prometheus.CounterVec
	SideEffectFailure *prometheus.CounterVec
	ScopeResolutions  *prometheus.CounterVec
	LockWait          prometheus.Histogram
}

// New crea y registra los colectores con el prefijo dado.
func New(prefix string) *Metrics {
	if prefix == "" {
		prefix = "stock_core"
	}
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		SellOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_sell_outcomes_total",
			Help: "Sell attempts by classification code",
		}, []string{"code"}),
		ReceiveOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_receive_outcomes_total",
			Help: "Receive calls by outcome (created, refreshed)",
		}, []string{"outcome"}),
		SideEffectFailure: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_side_effect_failures_total",
			Help: "Best-effort side effects that failed (audit, commission, notify, session)",
		}, []string{"side_effect"}),
		ScopeResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_scope_resolutions_total",
			Help: "Scope resolutions by winning rule",
		}, []string{"source"}),
		LockWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    prefix + "_sell_lock_wait_seconds",
			Help:    "Time spent acquiring the item row lock",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
	}
}

// SellOutcome incrementa el contador del código de venta.
func (m *Metrics) SellOutcome(code string) {
	if m == nil {
		return
	}
	m.SellOutcomes.WithLabelValues(code).Inc()
}

// ReceiveOutcome incrementa created/refreshed.
func (m *Metrics) ReceiveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.ReceiveOutcomes.WithLabelValues(outcome).Inc()
}

// SideEffectFailed registra un efecto colateral best-effort fallido.
func (m *Metrics) SideEffectFailed(name string) {
	if m == nil {
		return
	}
	m.SideEffectFailure.WithLabelValues(name).Inc()
}

// ScopeResolved registra la regla que resolvió el scope.
func (m *Metrics) ScopeResolved(source string) {
	if m == nil {
		return
	}
	m.ScopeResolutions.WithLabelValues(source).Inc()
}

// ObserveLockWait duración de la adquisición del lock desde start.
func (m *Metrics) ObserveLockWait(start time.Time) {
	if m == nil {
		return
	}
	m.LockWait.Observe(time.Since(start).Seconds())
}
