package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tenant-stock-api/pkg/metrics"
)

func TestSellOutcome_IncrementaPorCodigo(t *testing.T) {
	m := metrics.New("test")
	m.SellOutcome("OK")
	m.SellOutcome("OK")
	m.SellOutcome("ITEM_ALREADY_SOLD")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SellOutcomes.WithLabelValues("OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SellOutcomes.WithLabelValues("ITEM_ALREADY_SOLD")))
}

func TestNilMetrics_NoPanica(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.SellOutcome("OK")
		m.SideEffectFailed("audit")
		m.ScopeResolved("session")
	})
}

func TestRegistriesIndependientes(t *testing.T) {
	a := metrics.New("dup")
	b := metrics.New("dup")
	a.SideEffectFailed("commission")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.SideEffectFailure.WithLabelValues("commission")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SideEffectFailure.WithLabelValues("commission")))
}
